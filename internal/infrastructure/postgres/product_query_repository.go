package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.ProductQueryRepository = (*ProductQueryRepo)(nil)

// ProductQueryRepo implementación de ProductQueryRepository sobre la base query.
// Las lecturas adjuntan la categoría con LEFT JOIN: la relación no se fuerza como
// foreign key porque ambas tablas convergen por eventos independientes.
type ProductQueryRepo struct {
	q Querier
}

// NewProductQueryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductQueryRepository(q Querier) *ProductQueryRepo {
	return &ProductQueryRepo{q: q}
}

const productViewColumns = `
	p.id, p.sku, p.name, p.price, p.stock, p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.created_at, c.updated_at`

// GetByID obtiene un producto por ID con su categoría adjunta si ya fue proyectada.
func (r *ProductQueryRepo) GetByID(ctx context.Context, id string) (*entity.ProductView, error) {
	query := `
		SELECT ` + productViewColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	view, err := scanProductView(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return view, nil
}

// GetBySKU obtiene un producto por SKU (chequeo fast path de unicidad).
func (r *ProductQueryRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, price, stock, category_id, created_at, updated_at
		FROM products WHERE sku = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return &p, nil
}

// List lista productos aplicando el filtro, con paginación.
func (r *ProductQueryRepo) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.ProductView, error) {
	where, args := buildProductWhere(filter)
	query := `
		SELECT ` + productViewColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id` + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductView
	for rows.Next() {
		view, err := scanProductView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, view)
	}
	return list, rows.Err()
}

// Count cuenta productos que satisfacen el filtro.
func (r *ProductQueryRepo) Count(ctx context.Context, filter repository.ProductFilter) (int, error) {
	where, args := buildProductWhere(filter)
	query := `
		SELECT COUNT(*)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id` + where
	var total int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// Upsert inserta o sobreescribe la proyección por ID. No toca id ni created_at en
// el conflicto (ver CategoryQueryRepo.Upsert).
func (r *ProductQueryRepo) Upsert(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, price, stock, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			category_id = EXCLUDED.category_id,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Price, product.Stock,
		product.CategoryID, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Delete elimina la proyección por ID. Ausencia no es error.
func (r *ProductQueryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// buildProductWhere arma la cláusula WHERE del filtro: OR dentro de cada grupo,
// AND entre grupos. Devuelve el fragmento SQL (con espacio inicial) y los args
// posicionales desde $1.
func buildProductWhere(f repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.SKUs) > 0 {
		conds = append(conds, fmt.Sprintf("p.sku = ANY(%s)", arg(f.SKUs)))
	}
	if len(f.Names) > 0 {
		ors := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			ors = append(ors, fmt.Sprintf("p.name ILIKE %s", arg("%"+n+"%")))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if f.PriceStart != nil {
		conds = append(conds, fmt.Sprintf("p.price >= %s", arg(*f.PriceStart)))
	}
	if f.PriceEnd != nil {
		conds = append(conds, fmt.Sprintf("p.price <= %s", arg(*f.PriceEnd)))
	}
	if f.StockStart != nil {
		conds = append(conds, fmt.Sprintf("p.stock >= %s", arg(*f.StockStart)))
	}
	if f.StockEnd != nil {
		conds = append(conds, fmt.Sprintf("p.stock <= %s", arg(*f.StockEnd)))
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("p.category_id = ANY(%s)", arg(f.CategoryIDs)))
	}
	if len(f.CategoryNames) > 0 {
		conds = append(conds, fmt.Sprintf("c.name = ANY(%s)", arg(f.CategoryNames)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanProductView escanea una fila producto + categoría (columnas de categoría
// anulables por el LEFT JOIN).
func scanProductView(row pgx.Row) (*entity.ProductView, error) {
	var v entity.ProductView
	var catID, catName *string
	var catCreated, catUpdated *time.Time
	err := row.Scan(
		&v.ID, &v.SKU, &v.Name, &v.Price, &v.Stock, &v.CategoryID, &v.CreatedAt, &v.UpdatedAt,
		&catID, &catName, &catCreated, &catUpdated,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		v.Category = &entity.Category{
			ID:        *catID,
			Name:      *catName,
			CreatedAt: *catCreated,
			UpdatedAt: *catUpdated,
		}
	}
	return &v, nil
}
