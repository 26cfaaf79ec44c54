package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// ListingRepository colección de publicaciones espejadas del marketplace.
type ListingRepository interface {
	Upsert(ctx context.Context, listing *entity.Listing) error
	List(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Listing, error)
}
