// Package purchase seguimiento de órdenes de compra: guías de envío, estado logístico, reclamos al
// proveedor y recepción hacia la bodega de destino.
package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	rules "github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// UseCase casos de uso de compras.
type UseCase struct {
	txRunner      inventory.TxRunner
	warehouseRepo repository.WarehouseRepository
	purchaseRepo  repository.PurchaseRepository
	publisher     inventory.Publisher
	log           *logger.Logger
	now           func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	warehouseRepo repository.WarehouseRepository,
	purchaseRepo repository.PurchaseRepository,
	publisher inventory.Publisher,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		purchaseRepo:  purchaseRepo,
		publisher:     publisher,
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

// Line producto de una orden de compra.
type Line struct {
	ProductCode string
	ProductName string
	Quantity    int
	TotalCost   decimal.Decimal
}

// AddInput orden de compra con sus líneas.
type AddInput struct {
	OrderNumber            string
	DestinationWarehouseID string
	Supplier               entity.Supplier
	Guides                 []string
	Observations           string
	Lines                  []Line
}

// ClaimInput datos del reclamo. Motivo vacío limpia el reclamo.
type ClaimInput struct {
	Reason entity.ClaimReason
	Amount decimal.Decimal
	State  entity.ClaimState
}

// ReceiveInput recepción de una línea: Cumulative es el total recibido hasta ahora.
type ReceiveInput struct {
	PurchaseID string
	Cumulative int
	Operator   string
	Comment    string
}

// AddPurchase crea una compra por línea, duplicando en cada una los datos de la orden.
func (uc *UseCase) AddPurchase(ctx context.Context, in AddInput) ([]*entity.Purchase, error) {
	if err := uc.validateAdd(ctx, in); err != nil {
		return nil, err
	}

	now := uc.now()
	var created []*entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		created = created[:0]
		for _, line := range in.Lines {
			p := &entity.Purchase{
				ID:                     uuid.New().String(),
				OrderNumber:            strings.TrimSpace(in.OrderNumber),
				DestinationWarehouseID: in.DestinationWarehouseID,
				State:                  entity.PurchasePendingShipment,
				Claim:                  entity.Claim{State: entity.ClaimNone, Amount: decimal.Zero},
				Supplier:               in.Supplier,
				ProductCode:            strings.TrimSpace(line.ProductCode),
				ProductName:            line.ProductName,
				Quantity:               line.Quantity,
				TotalCost:              line.TotalCost,
				Observations:           in.Observations,
				CreatedAt:              now,
				UpdatedAt:              now,
			}
			// Si el producto ya está en catálogo se usa su código y nombre canónicos.
			product, err := repos.Products.FindByCode(ctx, line.ProductCode)
			if err != nil {
				return err
			}
			if product != nil {
				p.ProductCode = product.Code
				if p.ProductName == "" {
					p.ProductName = product.Name
				}
			}
			for _, g := range in.Guides {
				p.AddGuide(g)
			}
			p.RecomputeLabel()
			if err := repos.Purchases.Create(ctx, p); err != nil {
				return err
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_number", in.OrderNumber).
		Int("lines", len(created)).
		Str("state", string(created[0].State)).
		Msg("compra registrada")
	for _, p := range created {
		publish(uc.publisher, "created", p)
	}
	return created, nil
}

// AddShipmentGuide agrega una guía a la línea. La primera guía pasa la compra a IN_TRANSIT
// aunque se hubiera fijado otro estado a mano.
func (uc *UseCase) AddShipmentGuide(ctx context.Context, purchaseID, guide string) (*entity.Purchase, error) {
	if strings.TrimSpace(guide) == "" {
		return nil, domain.Invalid("guide", nil)
	}
	return uc.mutate(ctx, purchaseID, "guide_added", func(p *entity.Purchase) error {
		p.AddGuide(guide)
		return nil
	})
}

// SetState fija el estado logístico a mano. Gana la última escritura.
func (uc *UseCase) SetState(ctx context.Context, purchaseID string, state entity.PurchaseState) (*entity.Purchase, error) {
	if !state.Valid() {
		return nil, domain.Invalid("state", nil)
	}
	return uc.mutate(ctx, purchaseID, "state_changed", func(p *entity.Purchase) error {
		p.State = state
		return nil
	})
}

// FileClaim registra, actualiza o limpia el reclamo. No toca el estado logístico.
func (uc *UseCase) FileClaim(ctx context.Context, purchaseID string, in ClaimInput) (*entity.Purchase, error) {
	claim, err := normalizeClaim(in)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, purchaseID, "claim_filed", func(p *entity.Purchase) error {
		p.Claim = claim
		return nil
	})
}

func normalizeClaim(in ClaimInput) (entity.Claim, error) {
	reason := entity.ClaimReason(strings.TrimSpace(string(in.Reason)))
	if !reason.Valid() {
		return entity.Claim{}, domain.Invalid("claim_reason", nil)
	}
	if reason == entity.ClaimReasonNone {
		return entity.Claim{State: entity.ClaimNone, Amount: decimal.Zero}, nil
	}
	state := in.State
	if state == "" {
		state = entity.ClaimNone
	}
	if !state.Valid() {
		return entity.Claim{}, domain.Invalid("claim_state", nil)
	}
	if state == entity.ClaimNone {
		return entity.Claim{}, domain.Invalid("claim_state", domain.ErrClaimState)
	}
	if in.Amount.IsNegative() {
		return entity.Claim{}, domain.Invalid("claim_amount", nil)
	}
	return entity.Claim{Reason: reason, Amount: in.Amount, State: state}, nil
}

// ReceivePurchase acredita en la bodega de destino las unidades nuevas (acumulado - recibido previo)
// con un movimiento de Ingreso, en la misma transacción que actualiza la línea.
func (uc *UseCase) ReceivePurchase(ctx context.Context, in ReceiveInput) (*entity.Purchase, error) {
	if strings.TrimSpace(in.PurchaseID) == "" {
		return nil, domain.Invalid("purchase_id", nil)
	}
	if in.Cumulative < 0 {
		return nil, domain.Invalid("received_quantity", nil)
	}

	var (
		updated  *entity.Purchase
		movement *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		movement = nil
		p, err := repos.Purchases.GetForUpdate(ctx, in.PurchaseID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		updated = p
		if in.Cumulative > p.Quantity {
			return domain.Invalid("received_quantity", domain.ErrExcessReceipt)
		}
		if in.Cumulative < p.ReceivedQuantity {
			return domain.Invalid("received_quantity", fmt.Errorf("%w: el acumulado no puede disminuir (%d < %d)",
				domain.ErrInvalidInput, in.Cumulative, p.ReceivedQuantity))
		}
		increment := in.Cumulative - p.ReceivedQuantity
		if increment == 0 {
			return nil
		}

		product, err := repos.Products.FindByCode(ctx, p.ProductCode)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.Invalid("product_code", domain.ErrNotFound)
		}
		level, err := repos.Stocks.GetForUpdate(ctx, product.ID, p.DestinationWarehouseID)
		if err != nil {
			return err
		}
		stock, err := rules.ApplyStockDelta(level.Stock, increment, entity.MovementIngreso, rules.UnderflowClamp)
		if err != nil {
			return err
		}
		if err := repos.Stocks.SetStock(ctx, product.ID, p.DestinationWarehouseID, stock); err != nil {
			return err
		}

		now := uc.now()
		p.ReceivedQuantity = in.Cumulative
		if p.ReceivedQuantity == p.Quantity {
			p.State = entity.PurchaseReceived
		} else {
			p.State = entity.PurchasePartiallyReceived
		}
		p.UpdatedAt = now
		if err := repos.Purchases.Update(ctx, p); err != nil {
			return err
		}

		movement = &entity.Movement{
			ID:           uuid.New().String(),
			Timestamp:    now,
			Type:         entity.MovementIngreso,
			WarehouseID:  p.DestinationWarehouseID,
			Items:        []entity.MovementItem{{ProductCode: product.Code, ProductName: product.Name, Quantity: increment}},
			Counterparty: p.Supplier.Name,
			ReceiptRef:   p.CombinedReceiptLabel,
			Operator:     in.Operator,
			Comment:      in.Comment,
		}
		return repos.Movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return updated, nil
	}

	uc.log.Info().
		Str("purchase_id", updated.ID).
		Str("order_number", updated.OrderNumber).
		Str("movement_id", movement.ID).
		Int("received", updated.ReceivedQuantity).
		Int("pending", updated.PendingQuantity()).
		Msg("recepción de compra registrada")
	publish(uc.publisher, "received", updated)
	if uc.publisher != nil {
		uc.publisher.Publish(inventory.ChangeEvent{Type: inventory.EventMovement, Action: "created", ID: movement.ID, Data: movement.Items})
	}
	return updated, nil
}

// GetPurchase obtiene una línea de compra.
func (uc *UseCase) GetPurchase(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListPurchases forma aplanada: una fila por línea.
func (uc *UseCase) ListPurchases(ctx context.Context, filter repository.PurchaseFilter) ([]*entity.Purchase, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.State != "" && !filter.State.Valid() {
		return nil, domain.Invalid("state", nil)
	}
	return uc.purchaseRepo.List(ctx, filter)
}

func (uc *UseCase) mutate(ctx context.Context, id, action string, fn func(p *entity.Purchase) error) (*entity.Purchase, error) {
	var updated *entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		p, err := repos.Purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = uc.now()
		updated = p
		return repos.Purchases.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("purchase_id", updated.ID).
		Str("action", action).
		Str("state", string(updated.State)).
		Str("claim_state", string(updated.Claim.State)).
		Msg("compra actualizada")
	publish(uc.publisher, action, updated)
	return updated, nil
}

func (uc *UseCase) validateAdd(ctx context.Context, in AddInput) error {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return domain.Invalid("order_number", nil)
	}
	if strings.TrimSpace(in.DestinationWarehouseID) == "" {
		return domain.Invalid("destination_warehouse_id", nil)
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lines", domain.ErrEmptyItems)
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ProductCode) == "" {
			return domain.Invalid(fmt.Sprintf("lines[%d].product_code", i), nil)
		}
		if l.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), nil)
		}
		if l.TotalCost.IsNegative() {
			return domain.Invalid(fmt.Sprintf("lines[%d].total_cost", i), nil)
		}
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.DestinationWarehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.Invalid("destination_warehouse_id", domain.ErrNotFound)
	}
	return nil
}

func publish(p inventory.Publisher, action string, purchase *entity.Purchase) {
	if p == nil {
		return
	}
	p.Publish(inventory.ChangeEvent{Type: inventory.EventPurchase, Action: action, ID: purchase.ID, Data: purchase.State})
}
