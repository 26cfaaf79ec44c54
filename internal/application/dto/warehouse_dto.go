package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name string `json:"name" validate:"notblank,max=200"`
}

// UpdateWarehouseRequest entrada para renombrar una bodega.
type UpdateWarehouseRequest struct {
	Name *string `json:"name" validate:"omitempty,notblank,max=200"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreationOrder int64     `json:"creation_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WarehouseListResponse bodegas en orden de creación.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}
