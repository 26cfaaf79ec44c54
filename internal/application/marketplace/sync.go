// Package marketplace espeja las publicaciones del vendedor en una colección aparte.
// El núcleo de inventario no lee ni escribe esta colección.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

// ListingPage una página de publicaciones del proveedor externo.
type ListingPage struct {
	Listings []entity.Listing
	Total    int
}

// ListingSource puerto hacia la API del marketplace.
type ListingSource interface {
	FetchListings(ctx context.Context, sellerID string, offset, limit int) (*ListingPage, error)
}

// SyncResult resumen de una corrida.
type SyncResult struct {
	Fetched  int
	Upserted int
}

// SyncUseCase sincronización de publicaciones.
type SyncUseCase struct {
	source   ListingSource
	repo     repository.ListingRepository
	sellerID string
	pageSize int
	log      *logger.Logger
	now      func() time.Time
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(source ListingSource, repo repository.ListingRepository, sellerID string, pageSize int, log *logger.Logger) *SyncUseCase {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SyncUseCase{
		source:   source,
		repo:     repo,
		sellerID: sellerID,
		pageSize: pageSize,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// Sync recorre todas las páginas y reemplaza la instantánea de cada publicación.
func (uc *SyncUseCase) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if uc.sellerID == "" {
		return res, errors.New("marketplace: seller id no configurado")
	}
	syncedAt := uc.now().UTC()
	for offset := 0; ; {
		page, err := uc.source.FetchListings(ctx, uc.sellerID, offset, uc.pageSize)
		if err != nil {
			return res, fmt.Errorf("marketplace: página offset=%d: %w", offset, err)
		}
		if page == nil || len(page.Listings) == 0 {
			break
		}
		res.Fetched += len(page.Listings)
		for i := range page.Listings {
			l := page.Listings[i]
			l.SellerID = uc.sellerID
			l.SyncedAt = syncedAt
			if err := uc.repo.Upsert(ctx, &l); err != nil {
				return res, err
			}
			res.Upserted++
		}
		offset += len(page.Listings)
		if offset >= page.Total {
			break
		}
	}
	uc.log.Info().
		Str("seller_id", uc.sellerID).
		Int("fetched", res.Fetched).
		Int("upserted", res.Upserted).
		Msg("publicaciones sincronizadas")
	return res, nil
}

// List lee la colección espejada.
func (uc *SyncUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Listing, error) {
	return uc.repo.List(ctx, uc.sellerID, limit, offset)
}
