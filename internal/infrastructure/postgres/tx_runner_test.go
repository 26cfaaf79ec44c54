package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoff(int) time.Duration { return 0 }

func serializationFailure() error {
	return fmt.Errorf("commit transaction: %w", &pgconn.PgError{Code: "40001"})
}

func TestRetryPolicy_ReintentaConflictos(t *testing.T) {
	var retries []int
	p := retryPolicy{maxRetries: 3, backoff: noBackoff, onRetry: func(n int, _ error) { retries = append(retries, n) }}

	calls := 0
	err := p.do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestRetryPolicy_AgotadosDevuelveTransitorio(t *testing.T) {
	p := retryPolicy{maxRetries: 2, backoff: noBackoff}

	calls := 0
	err := p.do(context.Background(), func() error {
		calls++
		return fmt.Errorf("lock: %w", &pgconn.PgError{Code: "40P01"})
	})
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, domain.ErrTransient)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "40P01", pgErr.Code)
}

func TestRetryPolicy_ErrorNoReintentable(t *testing.T) {
	p := retryPolicy{maxRetries: 5, backoff: noBackoff}

	calls := 0
	err := p.do(context.Background(), func() error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, errors.Is(err, domain.ErrTransient))
}

func TestRetryPolicy_SinReintentos(t *testing.T) {
	p := retryPolicy{maxRetries: 0, backoff: noBackoff}

	calls := 0
	err := p.do(context.Background(), func() error {
		calls++
		return serializationFailure()
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestRetryPolicy_RespetaCancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retryPolicy{maxRetries: 3, backoff: func(int) time.Duration { return time.Hour }, onRetry: func(int, error) { cancel() }}

	calls := 0
	err := p.do(ctx, func() error {
		calls++
		return serializationFailure()
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuadraticBackoff(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, quadraticBackoff(1))
	assert.Equal(t, 90*time.Millisecond, quadraticBackoff(3))
}
