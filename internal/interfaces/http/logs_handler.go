package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/application/dto"
)

// LogsHandler consulta da trilha de integração (protegido).
type LogsHandler struct {
	uc *audit.QueryUseCase
}

// NewLogsHandler constrói o handler.
func NewLogsHandler(uc *audit.QueryUseCase) *LogsHandler {
	return &LogsHandler{uc: uc}
}

// List lista a trilha de uma locadora, mais recente primeiro.
// GET /api/integration-logs?tenant_id=...&limit=...&offset=...
func (h *LogsHandler) List(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenant_id obrigatório"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginação inválida"})
	}
	page.DefaultPage()

	entries, err := h.uc.List(tenantID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := make([]dto.IntegrationLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.IntegrationLogResponse{
			ID:           e.ID,
			Service:      e.Service,
			Operation:    e.Operation,
			Status:       e.Status,
			Request:      e.Request,
			Response:     e.Response,
			ErrorMessage: e.ErrorMessage,
			CreatedAt:    e.CreatedAt,
		})
	}
	return c.JSON(out)
}
