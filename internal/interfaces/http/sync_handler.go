package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/locafleet/locafleet-api/internal/application/billing"
	"github.com/locafleet/locafleet-api/internal/application/dto"
	"github.com/locafleet/locafleet-api/internal/application/fleetsync"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

// SyncHandler gatilho manual de sincronização e faturamento (protegido).
type SyncHandler struct {
	reconcileUC  *fleetsync.ReconcileUseCase
	billingUC    *billing.CycleUseCase
	tenantRepo   repository.TenantRepository
	contractRepo repository.ContractRepository
	cooldown     time.Duration
	lookAhead    int
	log          *logger.Logger
}

// NewSyncHandler constrói o handler.
func NewSyncHandler(
	reconcileUC *fleetsync.ReconcileUseCase,
	billingUC *billing.CycleUseCase,
	tenantRepo repository.TenantRepository,
	contractRepo repository.ContractRepository,
	cooldownMinutes, lookAheadDays int,
	log *logger.Logger,
) *SyncHandler {
	return &SyncHandler{
		reconcileUC:  reconcileUC,
		billingUC:    billingUC,
		tenantRepo:   tenantRepo,
		contractRepo: contractRepo,
		cooldown:     time.Duration(cooldownMinutes) * time.Minute,
		lookAhead:    lookAheadDays,
		log:          log,
	}
}

// Run dispara reconciliação e/ou faturamento para uma locadora.
// POST /api/sync/run
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	var in dto.SyncRunRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.TenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenant_id obrigatório"})
	}
	if in.Action == "" {
		in.Action = dto.SyncActionBoth
	}
	if in.Action != dto.SyncActionReconcile && in.Action != dto.SyncActionBill && in.Action != dto.SyncActionBoth {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "action deve ser reconcile, bill ou both"})
	}

	h.log.Info().Str("tenant_id", in.TenantID).Str("action", in.Action).
		Str("caller", GetCaller(c)).Msg("gatilho de sincronização disparado")

	out := dto.SyncRunResponse{TenantID: in.TenantID, Action: in.Action}

	if in.Action == dto.SyncActionReconcile || in.Action == dto.SyncActionBoth {
		if status := h.runReconcile(c, in.TenantID, &out); status != 0 {
			return errorStatus(c, status, in.TenantID)
		}
	}

	if in.Action == dto.SyncActionBill || in.Action == dto.SyncActionBoth {
		processed, err := h.billingUC.RunBillingCycle(c.Context(), in.TenantID)
		out.ContractsBilled = processed
		switch err {
		case nil:
		case domain.ErrNotFound:
			return errorStatus(c, fiber.StatusNotFound, in.TenantID)
		case domain.ErrConfigMissing:
			out.Notes = append(out.Notes, "faturamento pulado: locadora sem configuração de gateway")
		default:
			out.Errors = append(out.Errors, "faturamento: "+err.Error())
		}
	}

	return c.JSON(out)
}

// runReconcile executa a subação de reconciliação respeitando o cooldown.
// Devolve um status HTTP terminal ou 0 para seguir em frente.
func (h *SyncHandler) runReconcile(c *fiber.Ctx, tenantID string, out *dto.SyncRunResponse) int {
	tenant, err := h.tenantRepo.GetByID(tenantID)
	if err != nil {
		out.Errors = append(out.Errors, "reconciliação: "+err.Error())
		return fiber.StatusInternalServerError
	}
	if tenant == nil {
		return fiber.StatusNotFound
	}
	if tenant.LastSyncedAt != nil && time.Since(*tenant.LastSyncedAt) < h.cooldown {
		out.Notes = append(out.Notes, "reconciliação pulada: dentro do intervalo mínimo entre sincronizações")
		return 0
	}

	summary, err := h.reconcileUC.ReconcileTenant(c.Context(), tenantID)
	switch err {
	case nil:
		out.CustomersInserted = summary.CustomersInserted
		out.CustomersDuplicate = summary.CustomersDuplicated
		out.CustomersSkipped = summary.CustomersSkipped
		out.VehiclesInserted = summary.VehiclesInserted
		out.VehiclesUpdated = summary.VehiclesUpdated
		out.VehiclesSkipped = summary.VehiclesSkipped
		out.Errors = append(out.Errors, summary.Errors...)
		return 0
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrConfigMissing:
		out.Notes = append(out.Notes, "reconciliação pulada: locadora sem credenciais de telemetria")
		return 0
	default:
		// Login ou infraestrutura falhou antes de qualquer merge.
		out.Errors = append(out.Errors, "reconciliação: "+err.Error())
		return 0
	}
}

// Status consulta o estado de sincronização e faturamento de uma locadora.
// GET /api/sync/status/:tenantID
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	tenantID := c.Params("tenantID")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenantID obrigatório"})
	}
	tenant, err := h.tenantRepo.GetByID(tenantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if tenant == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "locadora não encontrada"})
	}

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, h.lookAhead)
	pending, err := h.contractRepo.CountDueRecurring(tenantID, cutoff)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.SyncStatusResponse{
		TenantID:        tenantID,
		LastSyncedAt:    tenant.LastSyncedAt,
		CooldownMinutes: int(h.cooldown.Minutes()),
		PendingBilling:  pending,
	}
	if tenant.LastSyncedAt != nil && time.Since(*tenant.LastSyncedAt) < h.cooldown {
		out.CooldownActive = true
	}
	return c.JSON(out)
}

func errorStatus(c *fiber.Ctx, status int, tenantID string) error {
	if status == fiber.StatusNotFound {
		return c.Status(status).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "locadora não encontrada: " + tenantID})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "falha ao executar o gatilho"})
}
