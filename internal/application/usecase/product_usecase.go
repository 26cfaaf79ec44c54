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

// ProductUseCase catálogo de productos. Stock y tránsito se manejan vía movimientos y transferencias.
type ProductUseCase struct {
	repo          repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRepository
	txRunner      inventory.TxRunner
	log           *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRepository,
	txRunner inventory.TxRunner,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repo:          repo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		txRunner:      txRunner,
		log:           logger.OrNop(log),
	}
}

// Create crea un producto con filas de stock en cero para cada bodega conocida.
// El código es único sin distinguir mayúsculas ni espacios.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.Invalid("code", nil)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", nil)
	}
	existing, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Invalid("code", domain.ErrDuplicate)
	}
	whIDs, err := uc.warehouseIDs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(whIDs))
	for _, id := range whIDs {
		known[id] = true
	}
	for w, q := range in.Stocks {
		if !known[w] {
			return nil, domain.Invalid("stocks."+w, domain.ErrNotFound)
		}
		if q < 0 {
			return nil, domain.Invalid("stocks."+w, nil)
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		Barcode:     strings.TrimSpace(in.Barcode),
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Stocks:      in.Stocks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.stockRepo.EnsureRows(ctx, product.ID, whIDs); err != nil {
		return nil, err
	}
	product.ZeroFill(whIDs)
	uc.log.Info().Str("product_id", product.ID).Str("code", code).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	return uc.single(ctx, product, err)
}

// FindByCode busca por código (sin espacios, sin distinguir mayúsculas).
func (uc *ProductUseCase) FindByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.Invalid("code", nil)
	}
	product, err := uc.repo.FindByCode(ctx, code)
	return uc.single(ctx, product, err)
}

// FindByBarcode busca por código de barras.
func (uc *ProductUseCase) FindByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, domain.Invalid("barcode", nil)
	}
	product, err := uc.repo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	return uc.single(ctx, product, err)
}

func (uc *ProductUseCase) single(ctx context.Context, product *entity.Product, err error) (*dto.ProductResponse, error) {
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	whIDs, err := uc.warehouseIDs(ctx)
	if err != nil {
		return nil, err
	}
	product.ZeroFill(whIDs)
	return toProductResponse(product), nil
}

// Update actualiza metadatos. No permite modificar stock ni tránsito.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Invalid("name", nil)
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Subcategory != nil {
		product.Subcategory = *in.Subcategory
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.single(ctx, product, nil)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	whIDs, err := uc.warehouseIDs(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		p.ZeroFill(whIDs)
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete se rechaza mientras quede stock o tránsito o una transferencia abierta lo incluya.
// Verificación y borrado corren en la misma transacción con las filas de stock bloqueadas.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	var code string
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		code = product.Code
		busy, err := repos.Stocks.LockByProduct(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrReferenced
		}
		open, err := repos.Transfers.CountOpenByProduct(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrReferenced
		}
		if err := repos.Stocks.DeleteEmptyByProduct(ctx, id); err != nil {
			return err
		}
		return repos.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Warn().Str("product_id", id).Str("code", code).Msg("producto eliminado")
	return nil
}

func (uc *ProductUseCase) warehouseIDs(ctx context.Context) ([]string, error) {
	list, err := uc.warehouseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(list))
	for i, w := range list {
		ids[i] = w.ID
	}
	return ids, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	stocks := p.Stocks
	if stocks == nil {
		stocks = map[string]int{}
	}
	transitos := p.Transitos
	if transitos == nil {
		transitos = map[string]int{}
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Barcode:     p.Barcode,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Stocks:      stocks,
		Transitos:   transitos,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
