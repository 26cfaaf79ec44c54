package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

// Config opciones del motor de inventario.
type Config struct {
	UnderflowPolicy inventory.UnderflowPolicy
}

// MovementUseCase registra movimientos de inventario (Ingreso, Egreso, Ajuste) de forma transaccional,
// con bloqueo de la fila (producto, bodega) y Commit/Rollback.
type MovementUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	movementRepo  repository.MovementRepository
	policy        inventory.UnderflowPolicy
	publisher     Publisher
	log           *logger.Logger
	now           func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	movementRepo repository.MovementRepository,
	cfg Config,
	publisher Publisher,
	log *logger.Logger,
) *MovementUseCase {
	policy := cfg.UnderflowPolicy
	if policy == "" {
		policy = inventory.UnderflowClamp
	}
	return &MovementUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		movementRepo:  movementRepo,
		policy:        policy,
		publisher:     publisher,
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

// MovementLine línea de entrada: código de producto y cantidad (para Ajuste, el valor absoluto).
type MovementLine struct {
	ProductCode string
	Quantity    int
}

// MovementInput entrada para registrar un movimiento manual o importado.
type MovementInput struct {
	Type         entity.MovementType
	WarehouseID  string
	Items        []MovementLine
	Counterparty string
	ReceiptRef   string
	Operator     string
	Comment      string
}

// MovementResult resultado de un movimiento: líneas aplicadas y errores por línea.
// MovementID siempre identifica la entrada del libro, aun sin líneas aplicadas.
type MovementResult struct {
	MovementID string
	Applied    []entity.MovementItem
	LineErrors []domain.LineError
}

// BatchResult resultado de un comando dentro de un lote de importación.
type BatchResult struct {
	Index  int
	Result *MovementResult
	Err    error
}

// resolvedLine línea con producto resuelto, en la posición original de la entrada.
type resolvedLine struct {
	pos     int
	product *entity.Product
	qty     int
}

// RecordMovement valida la cabecera, resuelve cada línea por código y aplica applyStockDelta
// dentro de una transacción. Las líneas no resueltas se omiten y se reportan; el movimiento se
// guarda una sola vez con las líneas aplicadas, aunque no quede ninguna.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := uc.validate(ctx, input); err != nil {
		return nil, err
	}

	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		// Se reinicia en cada intento de la transacción.
		result = &MovementResult{}
		if err := requireWarehouses(ctx, repos.Warehouses, input.WarehouseID); err != nil {
			return err
		}
		applied := make([]*entity.MovementItem, len(input.Items))

		var lines []resolvedLine
		for i, line := range input.Items {
			if strings.TrimSpace(line.ProductCode) == "" {
				result.LineErrors = append(result.LineErrors, domain.LineError{Index: i, Err: domain.ErrInvalidInput})
				continue
			}
			if line.Quantity < 0 || (line.Quantity == 0 && input.Type != entity.MovementAjuste) {
				result.LineErrors = append(result.LineErrors, domain.LineError{Index: i, Code: line.ProductCode, Err: domain.ErrInvalidInput})
				continue
			}
			product, err := repos.Products.FindByCode(ctx, line.ProductCode)
			if err != nil {
				return err
			}
			if product == nil {
				result.LineErrors = append(result.LineErrors, domain.LineError{Index: i, Code: line.ProductCode, Err: domain.ErrNotFound})
				continue
			}
			lines = append(lines, resolvedLine{pos: i, product: product, qty: line.Quantity})
		}

		// Orden de bloqueo estable por producto para no cruzarse con otros lotes concurrentes.
		sort.SliceStable(lines, func(a, b int) bool { return lines[a].product.ID < lines[b].product.ID })

		for _, l := range lines {
			level, err := repos.Stocks.GetForUpdate(ctx, l.product.ID, input.WarehouseID)
			if err != nil {
				return err
			}
			next, err := inventory.ApplyStockDelta(level.Stock, l.qty, input.Type, uc.policy)
			if err != nil {
				result.LineErrors = append(result.LineErrors, domain.LineError{Index: l.pos, Code: l.product.Code, Err: err})
				continue
			}
			if err := repos.Stocks.SetStock(ctx, l.product.ID, input.WarehouseID, next); err != nil {
				return err
			}
			applied[l.pos] = &entity.MovementItem{ProductCode: l.product.Code, ProductName: l.product.Name, Quantity: l.qty}
		}

		for _, it := range applied {
			if it != nil {
				result.Applied = append(result.Applied, *it)
			}
		}
		sort.SliceStable(result.LineErrors, func(a, b int) bool { return result.LineErrors[a].Index < result.LineErrors[b].Index })

		// El lote queda en el libro aunque todas sus líneas fallen.
		mov := &entity.Movement{
			ID:           uuid.New().String(),
			Timestamp:    uc.now(),
			Type:         input.Type,
			WarehouseID:  input.WarehouseID,
			Items:        append([]entity.MovementItem{}, result.Applied...),
			Counterparty: input.Counterparty,
			ReceiptRef:   input.ReceiptRef,
			Operator:     input.Operator,
			Comment:      input.Comment,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return err
		}
		result.MovementID = mov.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info()
	if len(result.LineErrors) > 0 {
		ev = uc.log.Warn()
	}
	ev.Str("movement_id", result.MovementID).
		Str("type", string(input.Type)).
		Str("warehouse_id", input.WarehouseID).
		Int("applied_lines", len(result.Applied)).
		Int("skipped_lines", len(result.LineErrors)).
		Msg("movimiento registrado")

	publish(uc.publisher, ChangeEvent{Type: EventMovement, Action: "created", ID: result.MovementID, Data: result.Applied})
	return result, nil
}

// RecordBatch procesa un lote de importación: cada comando es independiente y un fallo no aborta el resto.
func (uc *MovementUseCase) RecordBatch(ctx context.Context, inputs []MovementInput) []BatchResult {
	results := make([]BatchResult, 0, len(inputs))
	for i, in := range inputs {
		res, err := uc.RecordMovement(ctx, in)
		results = append(results, BatchResult{Index: i, Result: res, Err: err})
	}
	return results
}

// GetMovement obtiene un movimiento por ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	mov, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// ListMovements lista movimientos con filtros; los más recientes primero.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.movementRepo.List(ctx, filter)
}

// requireWarehouses confirma dentro de la transacción que las bodegas siguen existiendo.
func requireWarehouses(ctx context.Context, repo repository.WarehouseRepository, ids ...string) error {
	for _, id := range ids {
		wh, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.Invalid("warehouse_id", domain.ErrNotFound)
		}
	}
	return nil
}

func (uc *MovementUseCase) validate(ctx context.Context, input MovementInput) error {
	switch input.Type {
	case entity.MovementIngreso, entity.MovementEgreso, entity.MovementAjuste:
	case entity.MovementRecepcionTransferencia:
		// Sólo la recepción de una transferencia puede producir este tipo.
		return domain.Invalid("type", fmt.Errorf("%w: use la recepción de la transferencia", domain.ErrInvalidInput))
	default:
		return domain.Invalid("type", nil)
	}
	if strings.TrimSpace(input.WarehouseID) == "" {
		return domain.Invalid("warehouse_id", nil)
	}
	if len(input.Items) == 0 {
		return domain.Invalid("items", domain.ErrEmptyItems)
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.Invalid("warehouse_id", domain.ErrNotFound)
	}
	return nil
}
