package entity

import "time"

// Product representa un producto del catálogo con su stock y tránsito por bodega.
// Stocks y Transitos nunca contienen valores negativos; una bodega ausente equivale a 0.
type Product struct {
	ID          string
	Code        string // único por catálogo (comparación sin mayúsculas ni espacios)
	Name        string
	Barcode     string // clave alternativa de búsqueda, opcional
	Category    string
	Subcategory string
	Stocks      map[string]int // warehouseID -> unidades físicas
	Transitos   map[string]int // warehouseID -> unidades en camino hacia la bodega
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockIn devuelve el stock del producto en la bodega.
func (p *Product) StockIn(warehouseID string) int {
	if p == nil || p.Stocks == nil {
		return 0
	}
	return p.Stocks[warehouseID]
}

// TransitIn devuelve las unidades en tránsito hacia la bodega.
func (p *Product) TransitIn(warehouseID string) int {
	if p == nil || p.Transitos == nil {
		return 0
	}
	return p.Transitos[warehouseID]
}

// ZeroFill asegura una entrada (en 0) para cada bodega conocida.
func (p *Product) ZeroFill(warehouseIDs []string) {
	if p.Stocks == nil {
		p.Stocks = make(map[string]int, len(warehouseIDs))
	}
	if p.Transitos == nil {
		p.Transitos = make(map[string]int, len(warehouseIDs))
	}
	for _, id := range warehouseIDs {
		if _, ok := p.Stocks[id]; !ok {
			p.Stocks[id] = 0
		}
		if _, ok := p.Transitos[id]; !ok {
			p.Transitos[id] = 0
		}
	}
}
