package inventory

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Warehouses repository.WarehouseRepository
	Movements  repository.MovementRepository
	Stocks     repository.StockRepository
	Products   repository.ProductRepository
	Transfers  repository.TransferRepository
	Purchases  repository.PurchaseRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario. fn puede ejecutarse más de una vez si la
// transacción se reintenta por conflicto de concurrencia; no debe tener efectos fuera de repos.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// ChangeEvent notificación de cambio para observadores en vivo (UI).
type ChangeEvent struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	ID     string `json:"id"`
	Data   any    `json:"data,omitempty"`
}

// Tipos de evento publicados.
const (
	EventMovement = "movement"
	EventTransfer = "transfer"
	EventPurchase = "purchase"
)

// Publisher difunde eventos de cambio después del commit. Puede ser nil.
type Publisher interface {
	Publish(evt ChangeEvent)
}

func publish(p Publisher, evt ChangeEvent) {
	if p != nil {
		p.Publish(evt)
	}
}
