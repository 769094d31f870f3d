package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/event"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// CategoryUseCase orquesta el pipeline command → evento → query para categorías.
// Escribe en la base command, publica el evento de sincronización y sirve las
// lecturas desde la base query.
type CategoryUseCase struct {
	command repository.CategoryCommandRepository
	queries repository.CategoryQueryRepository
	events  ports.EventPublisher
	log     *logger.Logger
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(
	command repository.CategoryCommandRepository,
	queries repository.CategoryQueryRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *CategoryUseCase {
	return &CategoryUseCase{command: command, queries: queries, events: events, log: log}
}

// Create crea una categoría. El chequeo de nombre contra la base query es solo
// fast path: la garantía real de unicidad es el índice único de la base command.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if existing, _ := uc.queries.GetByName(ctx, in.Name); existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now().UTC()
	category := &entity.Category{
		ID:        uuid.New().String(),
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.command.Create(ctx, category); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.CategoryCreated, event.NewCategoryPayload(category))
	return toCategoryResponse(category), nil
}

// Update actualiza una categoría existente en la base command y publica el estado
// completo resultante.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := uc.command.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil && *in.Name != category.Name {
		if existing, _ := uc.queries.GetByName(ctx, *in.Name); existing != nil && existing.ID != id {
			return nil, domain.ErrDuplicate
		}
		category.Name = *in.Name
	}
	category.UpdatedAt = time.Now().UTC()

	if err := uc.command.Update(ctx, category); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.CategoryUpdated, event.NewCategoryPayload(category))
	return toCategoryResponse(category), nil
}

// Delete elimina una categoría de la base command y publica el identificador para
// que la proyección la retire.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	category, err := uc.command.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	if err := uc.command.Delete(ctx, id); err != nil {
		return err
	}

	uc.publish(ctx, event.CategoryDeleted, event.DeletedPayload{ID: id})
	return nil
}

// GetByID obtiene una categoría desde la base query.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := uc.queries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(category), nil
}

// List lista categorías desde la base query con paginación.
func (uc *CategoryUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.CategoryListResponse, error) {
	page.DefaultPage()
	list, err := uc.queries.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.queries.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// publish emite el evento de sincronización. Un fallo aquí no revierte la escritura
// command ni falla la operación del usuario: queda registrado y las bases divergen
// hasta reconciliar fuera de línea.
func (uc *CategoryUseCase) publish(ctx context.Context, channel string, payload any) {
	if err := uc.events.Publish(ctx, channel, payload); err != nil {
		uc.log.Error().Err(err).Str("channel", channel).Msg("publicar evento de sincronización")
	}
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
