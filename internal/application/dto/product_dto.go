package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU        string          `json:"sku" validate:"required,min=3,max=50"`
	Name       string          `json:"name" validate:"required,min=3,max=100"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"min=0"`
	CategoryID string          `json:"category_id" validate:"required"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	SKU        *string          `json:"sku" validate:"omitempty,min=3,max=50"`
	Name       *string          `json:"name" validate:"omitempty,min=3,max=100"`
	Price      *decimal.Decimal `json:"price"`
	Stock      *int             `json:"stock" validate:"omitempty,min=0"`
	CategoryID *string          `json:"category_id"`
}

// UpdateStockRequest ajuste relativo de stock (positivo entra, negativo sale).
type UpdateStockRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// ProductResponse salida de un producto. Category viene desnormalizada desde la
// base query y puede ser null en las respuestas del camino de escritura.
type ProductResponse struct {
	ID         string            `json:"id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Stock      int               `json:"stock"`
	CategoryID string            `json:"category_id"`
	Category   *CategoryResponse `json:"category,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos (servida desde la base query).
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
