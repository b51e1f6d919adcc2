package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory" validate:"min=0"`
	Category    string          `json:"category" validate:"max=100"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
}

// UpdateProductRequest entrada parcial; Images no nulo reemplaza todas las imágenes.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Inventory   *int             `json:"inventory" validate:"omitempty,min=0"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
}

// ProductQuery filtros del listado público.
type ProductQuery struct {
	PageRequest
	Name     string `query:"name"`
	Category string `query:"category"`
	MinPrice string `query:"minPrice"`
	MaxPrice string `query:"maxPrice"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
