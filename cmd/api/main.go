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
	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/application/billing"
	"github.com/locafleet/locafleet-api/internal/application/export"
	"github.com/locafleet/locafleet-api/internal/application/fleetsync"
	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
	infrapdf "github.com/locafleet/locafleet-api/internal/infrastructure/pdf"
	"github.com/locafleet/locafleet-api/internal/infrastructure/postgres"
	"github.com/locafleet/locafleet-api/internal/infrastructure/telemetry"
	httpRouter "github.com/locafleet/locafleet-api/internal/interfaces/http"
	"github.com/locafleet/locafleet-api/pkg/config"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	logRepo := postgres.NewIntegrationLogRepository(pool)

	sink := audit.NewSink(logRepo, log)
	logsUC := audit.NewQueryUseCase(logRepo)

	telemetryClient := telemetry.NewClient(
		cfg.Telemetry.BaseURL,
		time.Duration(cfg.Telemetry.TimeoutSeconds)*time.Second,
		cfg.Telemetry.RetryMax,
	)
	reconcileUC := fleetsync.NewReconcileUseCase(
		tenantRepo, customerRepo, vehicleRepo, telemetryClient, sink, log,
	)

	authClient := gateway.NewAuthClient(30 * time.Second)
	chargeClient := gateway.NewChargeClient(30 * time.Second)
	billingUC := billing.NewCycleUseCase(
		tenantRepo, contractRepo, customerRepo, invoiceRepo,
		authClient, chargeClient, sink, log,
		billing.Config{
			LookAheadDays: cfg.Sync.LookAheadDays,
			DueOffsetDays: cfg.Sync.DueOffsetDays,
			CycleDays:     cfg.Sync.CycleDays,
		},
	)

	renderer := infrapdf.NewMarotoReportRenderer()
	exportUC := export.NewUseCase(tenantRepo, customerRepo, vehicleRepo, invoiceRepo, renderer)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LocaFleet API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReconcileUC:     reconcileUC,
		BillingUC:       billingUC,
		ExportUC:        exportUC,
		LogsUC:          logsUC,
		TenantRepo:      tenantRepo,
		ContractRepo:    contractRepo,
		CooldownMinutes: cfg.Sync.CooldownMinutes,
		LookAheadDays:   cfg.Sync.LookAheadDays,
		JWTSecret:       cfg.JWT.Secret,
		Log:             log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
