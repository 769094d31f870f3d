package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. SKU es único (índice en la base command).
// CategoryID referencia una Category existente al momento de escribir; en la base query
// la relación es eventualmente consistente (se adjunta desnormalizada en lectura).
type Product struct {
	ID         string
	SKU        string
	Name       string
	Price      decimal.Decimal
	Stock      int
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductView vista de lectura desde la base query: el producto con su categoría
// adjunta. Category puede ser nil durante la ventana de inconsistencia.
type ProductView struct {
	Product
	Category *Category
}
