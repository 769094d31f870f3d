package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// buildProductWhere combina los grupos del filtro con AND y los valores dentro de
// cada grupo con OR (= ANY para listas, ILIKE por nombre).

func TestBuildProductWhere_FiltroVacio(t *testing.T) {
	where, args := buildProductWhere(repository.ProductFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildProductWhere_GrupoUnico(t *testing.T) {
	where, args := buildProductWhere(repository.ProductFilter{
		SKUs: []string{"ELEC-001", "ELEC-002"},
	})
	assert.Equal(t, " WHERE p.sku = ANY($1)", where)
	assert.Equal(t, []any{[]string{"ELEC-001", "ELEC-002"}}, args)
}

func TestBuildProductWhere_NombresConILike(t *testing.T) {
	where, args := buildProductWhere(repository.ProductFilter{
		Names: []string{"laptop", "monitor"},
	})
	assert.Equal(t, " WHERE (p.name ILIKE $1 OR p.name ILIKE $2)", where)
	assert.Equal(t, []any{"%laptop%", "%monitor%"}, args)
}

func TestBuildProductWhere_GruposCombinadosConAnd(t *testing.T) {
	start := decimal.NewFromInt(1000)
	end := decimal.NewFromInt(5000)
	stockMin := 1

	where, args := buildProductWhere(repository.ProductFilter{
		Names:         []string{"laptop"},
		PriceStart:    &start,
		PriceEnd:      &end,
		StockStart:    &stockMin,
		CategoryNames: []string{"Electronics"},
	})

	assert.Equal(t,
		" WHERE (p.name ILIKE $1) AND p.price >= $2 AND p.price <= $3 AND p.stock >= $4 AND c.name = ANY($5)",
		where,
	)
	assert.Len(t, args, 5)
	assert.Equal(t, "%laptop%", args[0])
	assert.Equal(t, []string{"Electronics"}, args[4])
}

func TestBuildProductWhere_NumeracionPosicionalEstable(t *testing.T) {
	stockMax := 100
	where, args := buildProductWhere(repository.ProductFilter{
		SKUs:        []string{"A"},
		StockEnd:    &stockMax,
		CategoryIDs: []string{"cat-1", "cat-2"},
	})
	assert.Equal(t, " WHERE p.sku = ANY($1) AND p.stock <= $2 AND p.category_id = ANY($3)", where)
	assert.Equal(t, []any{[]string{"A"}, 100, []string{"cat-1", "cat-2"}}, args)
}
