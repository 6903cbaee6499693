package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/locafleet/locafleet-api/internal/application/dto"
	"github.com/locafleet/locafleet-api/internal/application/export"
	"github.com/locafleet/locafleet-api/internal/domain"
)

// ExportHandler relatórios em PDF (protegido).
type ExportHandler struct {
	uc *export.UseCase
}

// NewExportHandler constrói o handler.
func NewExportHandler(uc *export.UseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Export gera um relatório tabular em PDF.
// POST /api/export
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var in dto.ExportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.TenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenant_id obrigatório"})
	}

	pdfBytes, err := h.uc.Export(c.Context(), in.TenantID, in.Type, in.Fields, in.Format)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo, campo ou formato desconhecido"})
		}
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "locadora não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="relatorio-`+in.Type+`.pdf"`)
	return c.Send(pdfBytes)
}
