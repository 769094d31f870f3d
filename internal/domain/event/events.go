// Package event define el conjunto cerrado de eventos de sincronización entre la
// base command y la base query. El nombre del canal actúa como tag del evento; el
// payload lleva siempre el estado completo de la entidad resultante, no un diff.
package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// Canales de publicación/suscripción, uno por entidad y tipo de mutación.
const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
)

// CategoryPayload estado completo de una categoría tras crear o actualizar.
type CategoryPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductPayload estado completo de un producto tras crear o actualizar.
// Price serializa como string decimal para no perder precisión en el tránsito.
type ProductPayload struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID string          `json:"categoryId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DeletedPayload identificador de la entidad eliminada. El campo es "id" para
// ambas entidades.
type DeletedPayload struct {
	ID string `json:"id"`
}

// NewCategoryPayload construye el payload desde la vista command de la entidad.
func NewCategoryPayload(c *entity.Category) CategoryPayload {
	return CategoryPayload{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Entity convierte el payload a la entidad de dominio (lado suscriptor).
func (p CategoryPayload) Entity() *entity.Category {
	return &entity.Category{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewProductPayload construye el payload desde la vista command de la entidad.
func NewProductPayload(p *entity.Product) ProductPayload {
	return ProductPayload{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Entity convierte el payload a la entidad de dominio (lado suscriptor).
func (p ProductPayload) Entity() *entity.Product {
	return &entity.Product{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
