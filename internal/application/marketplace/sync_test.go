package marketplace_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
)

type pagedSource struct {
	items []entity.Listing
	calls int
	fail  bool
}

func (s *pagedSource) FetchListings(_ context.Context, _ string, offset, limit int) (*marketplace.ListingPage, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("HTTP 503")
	}
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	if offset > end {
		offset = end
	}
	return &marketplace.ListingPage{Listings: s.items[offset:end], Total: len(s.items)}, nil
}

func listings(n int) []entity.Listing {
	out := make([]entity.Listing, n)
	for i := range out {
		out[i] = entity.Listing{ID: fmt.Sprintf("MLC%03d", i), Title: fmt.Sprintf("item %d", i), Price: decimal.NewFromInt(int64(1000 + i))}
	}
	return out
}

func TestSync_RecorreTodasLasPaginas(t *testing.T) {
	store := memory.NewStore()
	src := &pagedSource{items: listings(5)}
	uc := marketplace.NewSyncUseCase(src, store.Listings(), "seller-1", 2, nil)

	res, err := uc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Fetched)
	assert.Equal(t, 5, res.Upserted)
	assert.Equal(t, 3, src.calls)

	got, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "seller-1", got[0].SellerID)
	assert.False(t, got[0].SyncedAt.IsZero())
}

func TestSync_EsIdempotente(t *testing.T) {
	store := memory.NewStore()
	uc := marketplace.NewSyncUseCase(&pagedSource{items: listings(3)}, store.Listings(), "seller-1", 10, nil)

	_, err := uc.Sync(context.Background())
	require.NoError(t, err)
	_, err = uc.Sync(context.Background())
	require.NoError(t, err)

	got, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSync_ErrorDelProveedor(t *testing.T) {
	store := memory.NewStore()
	uc := marketplace.NewSyncUseCase(&pagedSource{fail: true}, store.Listings(), "seller-1", 10, nil)
	_, err := uc.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSync_SinSeller(t *testing.T) {
	uc := marketplace.NewSyncUseCase(&pagedSource{}, memory.NewStore().Listings(), "", 10, nil)
	_, err := uc.Sync(context.Background())
	require.Error(t, err)
}
