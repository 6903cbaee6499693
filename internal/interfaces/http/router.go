package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/application/billing"
	"github.com/locafleet/locafleet-api/internal/application/export"
	"github.com/locafleet/locafleet-api/internal/application/fleetsync"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ReconcileUC     *fleetsync.ReconcileUseCase
	BillingUC       *billing.CycleUseCase
	ExportUC        *export.UseCase
	LogsUC          *audit.QueryUseCase
	TenantRepo      repository.TenantRepository
	ContractRepo    repository.ContractRepository
	CooldownMinutes int
	LookAheadDays   int
	JWTSecret       string
	Log             *logger.Logger
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rotas protegidas (requerem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Gatilho de sincronização e faturamento (protegido)
	syncGroup := protected.Group("/sync")
	syncHandler := NewSyncHandler(
		deps.ReconcileUC, deps.BillingUC,
		deps.TenantRepo, deps.ContractRepo,
		deps.CooldownMinutes, deps.LookAheadDays,
		deps.Log,
	)
	syncGroup.Post("/run", syncHandler.Run)
	syncGroup.Get("/status/:tenantID", syncHandler.Status)

	// Trilha de integração (protegido)
	logsHandler := NewLogsHandler(deps.LogsUC)
	protected.Get("/integration-logs", logsHandler.List)

	// Relatórios (protegido)
	exportHandler := NewExportHandler(deps.ExportUC)
	protected.Post("/export", exportHandler.Export)
}
