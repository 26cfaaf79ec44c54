package entity

import "time"

// StockLevel es la fila (producto, bodega) que materializa Stocks y Transitos de un producto.
// Es la unidad de bloqueo de las mutaciones de stock.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	Stock       int
	Transit     int
	UpdatedAt   time.Time
}
