package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendMovement(id string, fail error) func(ctx context.Context, repos inventory.TxRepos) error {
	return func(ctx context.Context, repos inventory.TxRepos) error {
		if err := repos.Movements.Create(ctx, &entity.Movement{ID: id, Type: entity.MovementIngreso, WarehouseID: "A"}); err != nil {
			return err
		}
		if err := repos.Stocks.SetStock(ctx, "p", "A", 9); err != nil {
			return err
		}
		return fail
	}
}

func TestTxRunner_RollbackRestauraLibroYStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	boom := errors.New("falla")

	require.NoError(t, tx.Run(ctx, appendMovement("m1", nil)))
	require.NoError(t, store.Stocks().SetStock(ctx, "p", "A", 1))

	assert.ErrorIs(t, tx.Run(ctx, appendMovement("m2", boom)), boom)
	require.NoError(t, tx.Run(ctx, appendMovement("m3", nil)))
	assert.ErrorIs(t, tx.Run(ctx, appendMovement("m4", boom)), boom)

	list, err := store.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"m1", "m3"}, ids)

	m2, err := store.Movements().GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Nil(t, m2)

	lvl, err := store.Stocks().Get(ctx, "p", "A")
	require.NoError(t, err)
	assert.Equal(t, 9, lvl.Stock)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewTxRunner(memory.NewStore()).Run(ctx, func(context.Context, inventory.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
