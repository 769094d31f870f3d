package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/redischan"
	syncevents "github.com/jhoicas/catalogo-api/internal/interfaces/events"
	httpRouter "github.com/jhoicas/catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	productCommandRepo := postgres.NewProductCommandRepository(commandPool)
	productQueryRepo := postgres.NewProductQueryRepository(queryPool)

	categoryUC := usecase.NewCategoryUseCase(categoryCommandRepo, categoryQueryRepo, channel, log)
	productUC := usecase.NewProductUseCase(productCommandRepo, productQueryRepo, categoryUC, channel, log)

	// Los sync handlers se suscriben antes de aceptar escrituras: el canal no tiene
	// replay y lo publicado sin suscriptor se pierde.
	categorySync := syncevents.NewCategorySyncHandler(categoryQueryRepo, channel, log)
	if err := categorySync.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar sync handler de categorías")
	}
	productSync := syncevents.NewProductSyncHandler(productQueryRepo, channel, log)
	if err := productSync.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar sync handler de productos")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Catálogo API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC: categoryUC,
		ProductUC:  productUC,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}

	log.Info().Msg("aplicación detenida")
}
