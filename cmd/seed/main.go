// seed puebla las dos bases con categorías y productos de demostración. Escribe a
// través de los casos de uso, así cada alta también recorre el pipeline de
// eventos; arranca sus propios sync handlers para que la proyección se aplique
// aunque la API no esté corriendo.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/redischan"
	syncevents "github.com/jhoicas/catalogo-api/internal/interfaces/events"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

type seedProduct struct {
	sku      string
	name     string
	price    int64
	stock    int
	category string
}

var seedCategories = []string{"Electronics", "Clothing", "Books"}

var seedProducts = []seedProduct{
	{sku: "ELEC-001", name: "Laptop Dell XPS 15", price: 25_000_000, stock: 10, category: "Electronics"},
	{sku: "ELEC-002", name: "iPhone 15 Pro Max", price: 20_000_000, stock: 15, category: "Electronics"},
	{sku: "CLOTH-001", name: "Camiseta básica", price: 45_000, stock: 100, category: "Clothing"},
	{sku: "BOOK-001", name: "Cien años de soledad", price: 60_000, stock: 30, category: "Books"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	commandPool, err := postgres.NewPool(ctx, cfg.CommandDB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL (command)")
	}
	defer commandPool.Close()

	queryPool, err := postgres.NewPool(ctx, cfg.QueryDB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL (query)")
	}
	defer queryPool.Close()

	channel, err := redischan.New(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer channel.Close()

	categoryCommandRepo := postgres.NewCategoryCommandRepository(commandPool)
	categoryQueryRepo := postgres.NewCategoryQueryRepository(queryPool)
	productQueryRepo := postgres.NewProductQueryRepository(queryPool)
	categoryUC := usecase.NewCategoryUseCase(categoryCommandRepo, categoryQueryRepo, channel, log)
	// La existencia de categorías se resuelve contra la base command: las recién
	// creadas todavía pueden no estar proyectadas en la base query.
	productUC := usecase.NewProductUseCase(
		postgres.NewProductCommandRepository(commandPool),
		productQueryRepo,
		commandCategoryFinder{repo: categoryCommandRepo},
		channel, log,
	)

	// Suscribirse antes de publicar: el canal no tiene replay.
	if err := syncevents.NewCategorySyncHandler(categoryQueryRepo, channel, log).Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar sync handler de categorías")
	}
	if err := syncevents.NewProductSyncHandler(productQueryRepo, channel, log).Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar sync handler de productos")
	}

	// Categorías: el alta duplicada no es error, se reutiliza la existente.
	categoryIDs := make(map[string]string, len(seedCategories))
	for _, name := range seedCategories {
		out, err := categoryUC.Create(ctx, dto.CreateCategoryRequest{Name: name})
		if err != nil {
			if !errors.Is(err, domain.ErrDuplicate) {
				log.Fatal().Err(err).Str("name", name).Msg("sembrar categoría")
			}
			existing, err := categoryQueryRepo.GetByName(ctx, name)
			if err != nil || existing == nil {
				log.Fatal().Err(err).Str("name", name).Msg("recuperar categoría existente")
			}
			categoryIDs[name] = existing.ID
			continue
		}
		categoryIDs[name] = out.ID
		log.Info().Str("name", name).Str("id", out.ID).Msg("categoría sembrada")
	}

	for _, p := range seedProducts {
		out, err := productUC.Create(ctx, dto.CreateProductRequest{
			SKU:        p.sku,
			Name:       p.name,
			Price:      decimal.NewFromInt(p.price),
			Stock:      p.stock,
			CategoryID: categoryIDs[p.category],
		})
		if err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				log.Info().Str("sku", p.sku).Msg("producto ya existe, se omite")
				continue
			}
			log.Fatal().Err(err).Str("sku", p.sku).Msg("sembrar producto")
		}
		log.Info().Str("sku", p.sku).Str("id", out.ID).Msg("producto sembrado")
	}

	// Dar tiempo a que los handlers apliquen las últimas proyecciones.
	time.Sleep(500 * time.Millisecond)
	log.Info().Msg("seed completado")
}

// commandCategoryFinder resuelve categorías contra la base command (solo seed).
type commandCategoryFinder struct {
	repo repository.CategoryCommandRepository
}

func (f commandCategoryFinder) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := f.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}, nil
}
