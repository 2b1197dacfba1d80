package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appalerting "github.com/jhoicas/kardex-api/internal/application/alerting"
	appdeduction "github.com/jhoicas/kardex-api/internal/application/deduction"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	infrapdf "github.com/jhoicas/kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := log.WithContext(context.Background())
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)

	ledger := appdeduction.NewStockLedger(itemRepo, movementRepo)
	resolver := appdeduction.NewRecipeResolver(recipeRepo)
	alertSvc := appalerting.NewService(itemRepo, alertRepo)
	orchestrator := appdeduction.NewOrchestrator(resolver, ledger, alertSvc, itemRepo, cfg.Deduction.MaxCASRetries)

	inventoryUC := appinventory.NewUseCase(ledger, alertSvc, itemRepo, movementRepo)
	kardexPDFUC := appinventory.NewKardexPDFUseCase(inventoryUC, itemRepo, movementRepo, infrapdf.NewMarotoKardexGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Logger por request en el contexto, con la referencia de correlación si viene.
	app.Use(func(c *fiber.Ctx) error {
		reqLogger := log.With().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.SetUserContext(reqLogger.WithContext(c.UserContext()))
		return c.Next()
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orchestrator:       orchestrator,
		InventoryUC:        inventoryUC,
		KardexPDFUC:        kardexPDFUC,
		AlertService:       alertSvc,
		JWTSecret:          cfg.JWT.Secret,
		AllowNegativeStock: cfg.Deduction.AllowNegativeStock,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
