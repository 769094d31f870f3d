package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/event"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: repos command/query, publisher y finder de categorías.
// El slice ops registra el orden de las operaciones entre colaboradores.
// ──────────────────────────────────────────────────────────────────────────────

type publishedEvent struct {
	channel string
	payload any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{channel: channel, payload: payload})
	return nil
}

type fakeCategoryCommandRepo struct {
	items map[string]*entity.Category
}

func newFakeCategoryCommandRepo() *fakeCategoryCommandRepo {
	return &fakeCategoryCommandRepo{items: map[string]*entity.Category{}}
}

func (r *fakeCategoryCommandRepo) Create(_ context.Context, c *entity.Category) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCategoryCommandRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	if c, ok := r.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryCommandRepo) Update(_ context.Context, c *entity.Category) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCategoryCommandRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeCategoryQueryRepo struct {
	items map[string]*entity.Category
}

func newFakeCategoryQueryRepo() *fakeCategoryQueryRepo {
	return &fakeCategoryQueryRepo{items: map[string]*entity.Category{}}
}

func (r *fakeCategoryQueryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	if c, ok := r.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryQueryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	for _, c := range r.items {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryQueryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var list []*entity.Category
	for _, c := range r.items {
		cp := *c
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeCategoryQueryRepo) Count(_ context.Context) (int, error) {
	return len(r.items), nil
}

func (r *fakeCategoryQueryRepo) Upsert(_ context.Context, c *entity.Category) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCategoryQueryRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeProductCommandRepo struct {
	items map[string]*entity.Product
	ops   *[]string
}

func newFakeProductCommandRepo(ops *[]string) *fakeProductCommandRepo {
	return &fakeProductCommandRepo{items: map[string]*entity.Product{}, ops: ops}
}

func (r *fakeProductCommandRepo) Create(_ context.Context, p *entity.Product) error {
	*r.ops = append(*r.ops, "command.create")
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeProductCommandRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := r.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductCommandRepo) Update(_ context.Context, p *entity.Product) error {
	*r.ops = append(*r.ops, "command.update")
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeProductCommandRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeProductQueryRepo struct {
	items map[string]*entity.Product
}

func newFakeProductQueryRepo() *fakeProductQueryRepo {
	return &fakeProductQueryRepo{items: map[string]*entity.Product{}}
}

func (r *fakeProductQueryRepo) GetByID(_ context.Context, id string) (*entity.ProductView, error) {
	if p, ok := r.items[id]; ok {
		cp := *p
		return &entity.ProductView{Product: cp}, nil
	}
	return nil, nil
}

func (r *fakeProductQueryRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.items {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductQueryRepo) List(_ context.Context, _ repository.ProductFilter, limit, offset int) ([]*entity.ProductView, error) {
	var list []*entity.ProductView
	for _, p := range r.items {
		cp := *p
		list = append(list, &entity.ProductView{Product: cp})
	}
	return list, nil
}

func (r *fakeProductQueryRepo) Count(_ context.Context, _ repository.ProductFilter) (int, error) {
	return len(r.items), nil
}

func (r *fakeProductQueryRepo) Upsert(_ context.Context, p *entity.Product) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeProductQueryRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeCategoryFinder struct {
	ids   map[string]bool
	ops   *[]string
	calls []string
}

func (f *fakeCategoryFinder) GetByID(_ context.Context, id string) (*dto.CategoryResponse, error) {
	*f.ops = append(*f.ops, "category.lookup")
	f.calls = append(f.calls, id)
	if !f.ids[id] {
		return nil, domain.ErrNotFound
	}
	return &dto.CategoryResponse{ID: id}, nil
}

func newProductUC(t *testing.T) (*usecase.ProductUseCase, *fakeProductCommandRepo, *fakeProductQueryRepo, *fakeCategoryFinder, *fakePublisher, *[]string) {
	t.Helper()
	ops := &[]string{}
	command := newFakeProductCommandRepo(ops)
	queries := newFakeProductQueryRepo()
	finder := &fakeCategoryFinder{ids: map[string]bool{}, ops: ops}
	pub := &fakePublisher{}
	uc := usecase.NewProductUseCase(command, queries, finder, pub, logger.Nop())
	return uc, command, queries, finder, pub, ops
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de CategoryUseCase
// ──────────────────────────────────────────────────────────────────────────────

// Crear una categoría debe asignar ID, createdAt == updatedAt y publicar
// category.created con ese ID.
func TestCategoryCreate_AsignaIDYPublicaEvento(t *testing.T) {
	pub := &fakePublisher{}
	uc := usecase.NewCategoryUseCase(newFakeCategoryCommandRepo(), newFakeCategoryQueryRepo(), pub, logger.Nop())

	out, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electronics"})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.NotEmpty(t, out.ID, "debe asignarse un ID generado")
	assert.True(t, out.CreatedAt.Equal(out.UpdatedAt), "createdAt y updatedAt deben coincidir al crear")

	require.Len(t, pub.events, 1, "debe publicarse exactamente un evento")
	assert.Equal(t, event.CategoryCreated, pub.events[0].channel)
	payload, ok := pub.events[0].payload.(event.CategoryPayload)
	require.True(t, ok, "el payload debe ser un event.CategoryPayload tipado")
	assert.Equal(t, out.ID, payload.ID)
	assert.Equal(t, "Electronics", payload.Name)
}

// Un nombre duplicado detectado en el fast path aborta antes de escribir y sin
// publicar nada.
func TestCategoryCreate_NombreDuplicado(t *testing.T) {
	command := newFakeCategoryCommandRepo()
	queries := newFakeCategoryQueryRepo()
	queries.items["cat-1"] = &entity.Category{ID: "cat-1", Name: "Electronics"}
	pub := &fakePublisher{}
	uc := usecase.NewCategoryUseCase(command, queries, pub, logger.Nop())

	_, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electronics"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Empty(t, command.items, "no debe escribirse en la base command")
	assert.Empty(t, pub.events, "no debe publicarse evento alguno")
}

// Update sobre un ID inexistente en la base command debe fallar con NotFound.
func TestCategoryUpdate_NoExiste(t *testing.T) {
	pub := &fakePublisher{}
	uc := usecase.NewCategoryUseCase(newFakeCategoryCommandRepo(), newFakeCategoryQueryRepo(), pub, logger.Nop())

	name := "Gadgets"
	_, err := uc.Update(context.Background(), "no-existe", dto.UpdateCategoryRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, pub.events)
}

// Delete publica category.deleted con el identificador normalizado en "id".
func TestCategoryDelete_PublicaIdentificador(t *testing.T) {
	command := newFakeCategoryCommandRepo()
	command.items["cat-1"] = &entity.Category{ID: "cat-1", Name: "Electronics"}
	pub := &fakePublisher{}
	uc := usecase.NewCategoryUseCase(command, newFakeCategoryQueryRepo(), pub, logger.Nop())

	require.NoError(t, uc.Delete(context.Background(), "cat-1"))
	require.Len(t, pub.events, 1)
	assert.Equal(t, event.CategoryDeleted, pub.events[0].channel)
	assert.Equal(t, event.DeletedPayload{ID: "cat-1"}, pub.events[0].payload)
}

// Un fallo del canal al publicar no revierte la escritura command ni falla la
// operación del usuario.
func TestCategoryCreate_FalloDePublicacionNoFallaLaOperacion(t *testing.T) {
	command := newFakeCategoryCommandRepo()
	pub := &fakePublisher{err: errors.New("canal caído")}
	uc := usecase.NewCategoryUseCase(command, newFakeCategoryQueryRepo(), pub, logger.Nop())

	out, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electronics"})
	require.NoError(t, err, "la mutación reporta éxito con la durabilidad command sola")
	assert.Contains(t, command.items, out.ID, "la escritura command se conserva pese al fallo del canal")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de ProductUseCase
// ──────────────────────────────────────────────────────────────────────────────

// La existencia de la categoría se verifica antes de cualquier escritura command,
// y el payload serializa el precio como string decimal.
func TestProductCreate_ResuelveCategoriaAntesDeEscribir(t *testing.T) {
	uc, _, _, finder, pub, ops := newProductUC(t)
	finder.ids["cat-electronics"] = true

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:        "ELEC-001",
		Name:       "Laptop",
		Price:      decimal.NewFromInt(25_000_000),
		Stock:      10,
		CategoryID: "cat-electronics",
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(*ops), 2)
	assert.Equal(t, []string{"category.lookup", "command.create"}, *ops,
		"la categoría se resuelve antes de tocar la base command")
	assert.Equal(t, []string{"cat-electronics"}, finder.calls)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ProductCreated, pub.events[0].channel)

	raw, err := json.Marshal(pub.events[0].payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"25000000"`, "el precio viaja como string para no perder precisión")
	assert.Contains(t, string(raw), `"id":"`+out.ID+`"`)
}

// Una categoría inexistente aborta antes de escribir, sin eventos.
func TestProductCreate_CategoriaInexistente(t *testing.T) {
	uc, command, _, _, pub, _ := newProductUC(t)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:        "ELEC-001",
		Name:       "Laptop",
		Price:      decimal.NewFromInt(100),
		CategoryID: "no-existe",
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Empty(t, command.items)
	assert.Empty(t, pub.events)
}

// Un SKU ya proyectado en la base query aborta la creación en el fast path.
func TestProductCreate_SKUDuplicado(t *testing.T) {
	uc, command, queries, finder, pub, _ := newProductUC(t)
	finder.ids["cat-1"] = true
	queries.items["prod-1"] = &entity.Product{ID: "prod-1", SKU: "ELEC-001"}

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:        "ELEC-001",
		Name:       "Laptop",
		Price:      decimal.NewFromInt(100),
		CategoryID: "cat-1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Empty(t, command.items)
	assert.Empty(t, pub.events)
}

// UpdateStock con delta negativo válido descuenta y publica un product.updated;
// con delta que deja stock negativo rechaza sin publicar.
func TestUpdateStock(t *testing.T) {
	uc, command, _, _, pub, _ := newProductUC(t)
	command.items["prod-1"] = &entity.Product{
		ID: "prod-1", SKU: "ELEC-001", Name: "Laptop",
		Price: decimal.NewFromInt(100), Stock: 10, CategoryID: "cat-1",
	}

	out, err := uc.UpdateStock(context.Background(), "prod-1", -5)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Stock)
	require.Len(t, pub.events, 1, "un ajuste válido publica exactamente un evento")
	assert.Equal(t, event.ProductUpdated, pub.events[0].channel)

	_, err = uc.UpdateStock(context.Background(), "prod-1", -20)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, pub.events, 1, "un ajuste rechazado no publica eventos")
	assert.Equal(t, 5, command.items["prod-1"].Stock, "el stock no cambia tras el rechazo")
}

// Delete publica product.deleted con el identificador normalizado en "id".
func TestProductDelete_PublicaIdentificador(t *testing.T) {
	uc, command, _, _, pub, _ := newProductUC(t)
	command.items["prod-1"] = &entity.Product{ID: "prod-1", SKU: "ELEC-001"}

	require.NoError(t, uc.Delete(context.Background(), "prod-1"))
	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ProductDeleted, pub.events[0].channel)
	assert.Equal(t, event.DeletedPayload{ID: "prod-1"}, pub.events[0].payload)
}

// Dos create concurrentes con el mismo SKU pueden pasar ambos el fast path: la
// carrera está documentada (la cierra el índice único de la base command real).
// Con fakes sin índice, ambos deben completar sin pánico y publicar sus eventos.
func TestProductCreate_CarreraDeUnicidad(t *testing.T) {
	uc, command, _, finder, pub, _ := newProductUC(t)
	finder.ids["cat-1"] = true

	in := dto.CreateProductRequest{
		SKU:        "ELEC-001",
		Name:       "Laptop",
		Price:      decimal.NewFromInt(100),
		CategoryID: "cat-1",
	}
	_, err1 := uc.Create(context.Background(), in)
	_, err2 := uc.Create(context.Background(), in)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Len(t, command.items, 2, "ambas escrituras llegan a la base command")
	assert.Len(t, pub.events, 2, "ambos eventos terminan entregados")
}
