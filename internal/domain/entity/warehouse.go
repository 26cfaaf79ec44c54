package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// CreationOrder es monotónico y define el orden de despliegue por defecto.
type Warehouse struct {
	ID            string
	Name          string
	CreationOrder int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
