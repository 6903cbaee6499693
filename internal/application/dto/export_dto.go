package dto

// ExportRequest corpo de POST /api/export.
type ExportRequest struct {
	TenantID string   `json:"tenant_id"`
	Type     string   `json:"type"`             // customers | vehicles | invoices
	Fields   []string `json:"fields,omitempty"` // vazio usa as colunas padrão
	Format   string   `json:"format,omitempty"` // somente pdf
}
