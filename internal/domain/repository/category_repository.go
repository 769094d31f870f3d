package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// CategoryCommandRepository puerto de persistencia de Category sobre la base command
// (fuente de verdad, camino de escritura).
type CategoryCommandRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryQueryRepository puerto de persistencia de Category sobre la base query
// (proyección derivada). Las lecturas de la API salen de aquí; Upsert y Delete
// solo los invoca el sync handler.
type CategoryQueryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Category, error)
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}
