package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

// WarehouseUseCase registro de bodegas.
type WarehouseUseCase struct {
	repo     repository.WarehouseRepository
	txRunner inventory.TxRunner
	log      *logger.Logger
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository, txRunner inventory.TxRunner, log *logger.Logger) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, txRunner: txRunner, log: logger.OrNop(log)}
}

// Create crea una nueva bodega. El orden de creación lo asigna el almacenamiento.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", nil)
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	uc.log.Info().Str("warehouse_id", warehouse.ID).Str("name", name).Msg("bodega creada")
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return toWarehouseResponse(warehouse), nil
}

// Update renombra una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", nil)
		}
		warehouse.Name = name
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista las bodegas en orden de creación.
func (uc *WarehouseUseCase) List(ctx context.Context) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{Items: items}, nil
}

// Delete borrado administrativo. Se rechaza mientras algún producto tenga stock o tránsito en la bodega
// o alguna transferencia abierta la involucre. Todo corre en una transacción: las filas de stock quedan
// bloqueadas desde la verificación hasta el borrado, y sólo se eliminan las que están en cero.
func (uc *WarehouseUseCase) Delete(ctx context.Context, id string) error {
	var name string
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		warehouse, err := repos.Warehouses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.ErrNotFound
		}
		name = warehouse.Name
		busy, err := repos.Stocks.LockByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrReferenced
		}
		open, err := repos.Transfers.CountOpenByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrReferenced
		}
		if err := repos.Stocks.DeleteEmptyByWarehouse(ctx, id); err != nil {
			return err
		}
		// Falla con ErrReferenced si quedó alguna fila con existencias.
		return repos.Warehouses.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Warn().Str("warehouse_id", id).Str("name", name).Msg("bodega eliminada")
	return nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:            w.ID,
		Name:          w.Name,
		CreationOrder: w.CreationOrder,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}
