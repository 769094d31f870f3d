package usecase

import (
	"context"
	"errors"
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

// CategoryFinder resuelve categorías por ID contra la base query. Lo satisface
// CategoryUseCase; como interfaz para poder sustituirlo en tests.
type CategoryFinder interface {
	GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error)
}

// ProductUseCase orquesta el pipeline command → evento → query para productos.
type ProductUseCase struct {
	command    repository.ProductCommandRepository
	queries    repository.ProductQueryRepository
	categories CategoryFinder
	events     ports.EventPublisher
	log        *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	command repository.ProductCommandRepository,
	queries repository.ProductQueryRepository,
	categories CategoryFinder,
	events ports.EventPublisher,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{command: command, queries: queries, categories: categories, events: events, log: log}
}

// Create crea un producto. Valida SKU contra la base query (fast path; la garantía
// real es el índice único de la base command) y que la categoría exista antes de
// tocar la base command.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if existing, _ := uc.queries.GetBySKU(ctx, in.SKU); existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:         uuid.New().String(),
		SKU:        in.SKU,
		Name:       in.Name,
		Price:      in.Price,
		Stock:      in.Stock,
		CategoryID: in.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.command.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.ProductCreated, event.NewProductPayload(product))
	return toProductResponse(product), nil
}

// Update actualiza un producto existente en la base command. Revalida SKU y
// categoría solo si cambiaron, y publica el estado completo resultante.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.command.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.SKU != nil && *in.SKU != product.SKU {
		if existing, _ := uc.queries.GetBySKU(ctx, *in.SKU); existing != nil && existing.ID != id {
			return nil, domain.ErrDuplicate
		}
		product.SKU = *in.SKU
	}
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if err := uc.resolveCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.Stock = *in.Stock
	}
	product.UpdatedAt = time.Now().UTC()

	if err := uc.command.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.ProductUpdated, event.NewProductPayload(product))
	return toProductResponse(product), nil
}

// Delete elimina un producto de la base command y publica el identificador.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.command.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if err := uc.command.Delete(ctx, id); err != nil {
		return err
	}

	uc.publish(ctx, event.ProductDeleted, event.DeletedPayload{ID: id})
	return nil
}

// UpdateStock ajusta el stock en quantity (negativo descuenta). Lee el stock actual
// de la base command y delega en Update, que publica el product.updated.
func (uc *ProductUseCase) UpdateStock(ctx context.Context, id string, quantity int) (*dto.ProductResponse, error) {
	product, err := uc.command.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	newStock := product.Stock + quantity
	if newStock < 0 {
		return nil, domain.ErrInsufficientStock
	}
	return uc.Update(ctx, id, dto.UpdateProductRequest{Stock: &newStock})
}

// GetByID obtiene un producto desde la base query con su categoría adjunta.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	view, err := uc.queries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	return toProductViewResponse(view), nil
}

// List lista productos desde la base query aplicando los filtros y paginando.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.queries.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.queries.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toProductViewResponse(v))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// resolveCategory verifica contra el servicio de categorías que el ID exista.
func (uc *ProductUseCase) resolveCategory(ctx context.Context, categoryID string) error {
	if _, err := uc.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// publish emite el evento de sincronización. Un fallo aquí no revierte la escritura
// command ni falla la operación del usuario (ver CategoryUseCase.publish).
func (uc *ProductUseCase) publish(ctx context.Context, channel string, payload any) {
	if err := uc.events.Publish(ctx, channel, payload); err != nil {
		uc.log.Error().Err(err).Str("channel", channel).Msg("publicar evento de sincronización")
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
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

func toProductViewResponse(v *entity.ProductView) *dto.ProductResponse {
	if v == nil {
		return nil
	}
	out := toProductResponse(&v.Product)
	out.Category = toCategoryResponse(v.Category)
	return out
}
