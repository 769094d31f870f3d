package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// ProductFilter predicados de búsqueda sobre la base query. Dentro de cada grupo
// los valores se combinan con OR; los grupos entre sí con AND.
type ProductFilter struct {
	SKUs          []string         // igualdad, multi-valor
	Names         []string         // substring case-insensitive, multi-valor
	PriceStart    *decimal.Decimal // rango inclusivo
	PriceEnd      *decimal.Decimal
	StockStart    *int
	StockEnd      *int
	CategoryIDs   []string
	CategoryNames []string
}

// ProductCommandRepository puerto de persistencia de Product sobre la base command.
type ProductCommandRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductQueryRepository puerto de persistencia de Product sobre la base query.
// GetByID y List devuelven la categoría adjunta desnormalizada.
type ProductQueryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ProductView, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.ProductView, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	Upsert(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
