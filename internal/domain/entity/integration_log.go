package entity

import "time"

// Serviços externos registrados no log de integração.
const (
	LogServiceTelemetry = "telemetry"
	LogServiceGateway   = "gateway"
)

// Resultado de uma chamada externa.
const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
)

// IntegrationLog é o registro append-only de uma chamada a provedor externo.
// Imutável após criado; retenção/poda é preocupação externa.
type IntegrationLog struct {
	ID           string
	TenantID     string
	Service      string
	Operation    string
	Request      string
	Response     string
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}
