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

// TransferUseCase crea transferencias entre bodegas y concilia sus recepciones parciales.
type TransferUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	transferRepo  repository.TransferRepository
	publisher     Publisher
	log           *logger.Logger
	now           func() time.Time
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	transferRepo repository.TransferRepository,
	publisher Publisher,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		transferRepo:  transferRepo,
		publisher:     publisher,
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

// TransferLine línea solicitada; el producto se identifica por ProductID o, si está vacío, por ProductCode.
type TransferLine struct {
	ProductID   string
	ProductCode string
	Quantity    int
}

// CreateTransferInput entrada para crear una transferencia.
type CreateTransferInput struct {
	OriginWarehouseID      string
	DestinationWarehouseID string
	Items                  []TransferLine
	ReceiptNumber          string
	Operator               string
	Notes                  string
}

// ReceiveTransferInput recepción: por línea, el acumulado total recibido hasta ahora (no un delta).
type ReceiveTransferInput struct {
	TransferID string
	Lines      []inventory.ReceiptLine
	Operator   string
	Comment    string
}

// CreateTransfer valida la solicitud, y en una sola transacción verifica el stock de origen sobre la fila
// bloqueada, lo debita y acredita el tránsito del destino. No genera movimiento en el libro.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*entity.Transfer, error) {
	if err := uc.validateCreate(ctx, input); err != nil {
		return nil, err
	}

	now := uc.now()
	var created *entity.Transfer
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		if err := requireWarehouses(ctx, repos.Warehouses, input.OriginWarehouseID, input.DestinationWarehouseID); err != nil {
			return err
		}
		items, err := resolveTransferLines(ctx, repos.Products, input.Items)
		if err != nil {
			return err
		}

		levels, err := lockStockRows(ctx, repos.Stocks, items, input.OriginWarehouseID, input.DestinationWarehouseID)
		if err != nil {
			return err
		}
		for _, it := range items {
			origin := levels[stockRow{it.ProductID, input.OriginWarehouseID}]
			if origin.Stock < it.Quantity {
				return fmt.Errorf("%w: %s (disponible %d, solicitado %d)", domain.ErrInsufficientStock, it.ProductCode, origin.Stock, it.Quantity)
			}
		}
		for _, it := range items {
			origin := levels[stockRow{it.ProductID, input.OriginWarehouseID}]
			dest := levels[stockRow{it.ProductID, input.DestinationWarehouseID}]
			if err := repos.Stocks.SetStock(ctx, it.ProductID, input.OriginWarehouseID, inventory.Floor(origin.Stock-it.Quantity)); err != nil {
				return err
			}
			if err := repos.Stocks.SetTransit(ctx, it.ProductID, input.DestinationWarehouseID, dest.Transit+it.Quantity); err != nil {
				return err
			}
		}

		receipt := strings.TrimSpace(input.ReceiptNumber)
		if receipt == "" {
			receipt = newReceiptNumber(now)
		}
		created = &entity.Transfer{
			ID:                     uuid.New().String(),
			ReceiptNumber:          receipt,
			CreatedAt:              now,
			UpdatedAt:              now,
			State:                  entity.TransferPendingReceipt,
			OriginWarehouseID:      input.OriginWarehouseID,
			DestinationWarehouseID: input.DestinationWarehouseID,
			Items:                  items,
			Operator:               input.Operator,
			Notes:                  input.Notes,
		}
		return repos.Transfers.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", created.ID).
		Str("receipt_number", created.ReceiptNumber).
		Str("origin_id", created.OriginWarehouseID).
		Str("destination_id", created.DestinationWarehouseID).
		Int("lines", len(created.Items)).
		Msg("transferencia creada")
	publish(uc.publisher, ChangeEvent{Type: EventTransfer, Action: "created", ID: created.ID, Data: created.State})
	return created, nil
}

type stockRow struct {
	productID   string
	warehouseID string
}

// lockStockRows bloquea las filas de origen y destino de todas las líneas en orden global
// (producto, bodega), el mismo que siguen las transferencias en sentido contrario.
func lockStockRows(ctx context.Context, stocks repository.StockRepository, items []entity.TransferItem, originID, destID string) (map[stockRow]entity.StockLevel, error) {
	rows := make([]stockRow, 0, 2*len(items))
	for _, it := range items {
		rows = append(rows, stockRow{it.ProductID, originID}, stockRow{it.ProductID, destID})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].productID != rows[b].productID {
			return rows[a].productID < rows[b].productID
		}
		return rows[a].warehouseID < rows[b].warehouseID
	})
	levels := make(map[stockRow]entity.StockLevel, len(rows))
	for _, row := range rows {
		if _, ok := levels[row]; ok {
			continue
		}
		level, err := stocks.GetForUpdate(ctx, row.productID, row.warehouseID)
		if err != nil {
			return nil, err
		}
		levels[row] = *level
	}
	return levels, nil
}

// ReceiveTransfer aplica una recepción. Valida todas las líneas antes de mutar (todo o nada por llamada);
// acredita stock y descuenta tránsito sólo por el incremento, y registra un único movimiento
// "Recepción de transferencia" con los incrementos. Reportar el mismo acumulado dos veces no cambia nada.
func (uc *TransferUseCase) ReceiveTransfer(ctx context.Context, input ReceiveTransferInput) (*entity.Transfer, error) {
	if strings.TrimSpace(input.TransferID) == "" {
		return nil, domain.Invalid("transfer_id", nil)
	}

	var (
		updated  *entity.Transfer
		movement *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		movement = nil
		t, err := repos.Transfers.GetForUpdate(ctx, input.TransferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		plan, err := inventory.PlanReceipt(t, input.Lines)
		if err != nil {
			return err
		}
		updated = t
		if !plan.Changed() {
			return nil
		}

		incs := make([]inventory.ReceiptIncrement, len(plan.Increments))
		copy(incs, plan.Increments)
		sort.Slice(incs, func(a, b int) bool { return incs[a].Item.ProductID < incs[b].Item.ProductID })

		dest := t.DestinationWarehouseID
		for _, inc := range incs {
			level, err := repos.Stocks.GetForUpdate(ctx, inc.Item.ProductID, dest)
			if err != nil {
				return err
			}
			stock, err := inventory.ApplyStockDelta(level.Stock, inc.Increment, entity.MovementRecepcionTransferencia, inventory.UnderflowClamp)
			if err != nil {
				return err
			}
			if err := repos.Stocks.SetStock(ctx, inc.Item.ProductID, dest, stock); err != nil {
				return err
			}
			if err := repos.Stocks.SetTransit(ctx, inc.Item.ProductID, dest, inventory.Floor(level.Transit-inc.Increment)); err != nil {
				return err
			}
		}

		now := uc.now()
		t.ReceivedItems = plan.Received
		t.State = plan.State
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}

		operator := input.Operator
		if operator == "" {
			operator = t.Operator
		}
		movement = &entity.Movement{
			ID:           uuid.New().String(),
			Timestamp:    now,
			Type:         entity.MovementRecepcionTransferencia,
			WarehouseID:  dest,
			Items:        plan.MovementItems(),
			Counterparty: t.OriginWarehouseID,
			ReceiptRef:   t.ReceiptNumber,
			Operator:     operator,
			Comment:      input.Comment,
			TransferID:   t.ID,
		}
		return repos.Movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	if movement == nil {
		uc.log.Debug().Str("transfer_id", updated.ID).Msg("recepción sin unidades nuevas")
		return updated, nil
	}
	uc.log.Info().
		Str("transfer_id", updated.ID).
		Str("state", string(updated.State)).
		Str("movement_id", movement.ID).
		Int("lines", len(movement.Items)).
		Msg("recepción de transferencia registrada")
	publish(uc.publisher, ChangeEvent{Type: EventTransfer, Action: "received", ID: updated.ID, Data: updated.State})
	publish(uc.publisher, ChangeEvent{Type: EventMovement, Action: "created", ID: movement.ID, Data: movement.Items})
	return updated, nil
}

// GetTransfer obtiene una transferencia por ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ListTransfers lista transferencias por estado y/o bodega.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.transferRepo.List(ctx, filter)
}

// DeleteTransfer borrado administrativo. No revierte los efectos sobre stock ni tránsito.
func (uc *TransferUseCase) DeleteTransfer(ctx context.Context, id string) error {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	if err := uc.transferRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Warn().
		Str("transfer_id", id).
		Str("state", string(t.State)).
		Interface("outstanding", t.Outstanding()).
		Msg("transferencia eliminada sin revertir stock ni tránsito")
	publish(uc.publisher, ChangeEvent{Type: EventTransfer, Action: "deleted", ID: id})
	return nil
}

func (uc *TransferUseCase) validateCreate(ctx context.Context, input CreateTransferInput) error {
	if strings.TrimSpace(input.OriginWarehouseID) == "" {
		return domain.Invalid("origin_warehouse_id", nil)
	}
	if strings.TrimSpace(input.DestinationWarehouseID) == "" {
		return domain.Invalid("destination_warehouse_id", nil)
	}
	if input.OriginWarehouseID == input.DestinationWarehouseID {
		return domain.Invalid("destination_warehouse_id", domain.ErrSameWarehouse)
	}
	if len(input.Items) == 0 {
		return domain.Invalid("items", domain.ErrEmptyItems)
	}
	for i, it := range input.Items {
		if it.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), nil)
		}
		if strings.TrimSpace(it.ProductID) == "" && strings.TrimSpace(it.ProductCode) == "" {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), nil)
		}
	}
	for _, ref := range [][2]string{
		{"origin_warehouse_id", input.OriginWarehouseID},
		{"destination_warehouse_id", input.DestinationWarehouseID},
	} {
		wh, err := uc.warehouseRepo.GetByID(ctx, ref[1])
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.Invalid(ref[0], domain.ErrNotFound)
		}
	}
	return nil
}

// resolveTransferLines resuelve productos y fusiona líneas repetidas del mismo producto, conservando
// el orden de primera aparición.
func resolveTransferLines(ctx context.Context, products repository.ProductRepository, lines []TransferLine) ([]entity.TransferItem, error) {
	items := make([]entity.TransferItem, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, line := range lines {
		var (
			p   *entity.Product
			err error
		)
		if strings.TrimSpace(line.ProductID) != "" {
			p, err = products.GetByID(ctx, line.ProductID)
		} else {
			p, err = products.FindByCode(ctx, line.ProductCode)
		}
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), domain.ErrNotFound)
		}
		if pos, ok := index[p.ID]; ok {
			items[pos].Quantity += line.Quantity
			continue
		}
		index[p.ID] = len(items)
		items = append(items, entity.TransferItem{
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Barcode:     p.Barcode,
		})
	}
	return items, nil
}

func newReceiptNumber(now time.Time) string {
	return fmt.Sprintf("TR-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:6]))
}
