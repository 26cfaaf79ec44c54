package dto

import "time"

// CreateProductRequest entrada para crear un producto. Los niveles iniciales son opcionales.
type CreateProductRequest struct {
	Code        string         `json:"code" validate:"notblank,max=100"`
	Name        string         `json:"name" validate:"notblank,max=200"`
	Barcode     string         `json:"barcode" validate:"max=100"`
	Category    string         `json:"category" validate:"max=100"`
	Subcategory string         `json:"subcategory" validate:"max=100"`
	Stocks      map[string]int `json:"stocks,omitempty" validate:"omitempty,dive,gte=0"`
}

// UpdateProductRequest entrada para actualizar metadatos. Stock y tránsito sólo cambian vía movimientos.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Barcode     *string `json:"barcode" validate:"omitempty,max=100"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Subcategory *string `json:"subcategory" validate:"omitempty,max=100"`
}

// ProductResponse salida de un producto con stock y tránsito por bodega (cero para bodegas sin fila).
type ProductResponse struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Barcode     string         `json:"barcode,omitempty"`
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	Stocks      map[string]int `json:"stocks"`
	Transitos   map[string]int `json:"transitos"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
