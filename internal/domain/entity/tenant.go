package entity

import "time"

// Tenant representa uma locadora (conta operadora). Todos os registros do motor
// são escopados por TenantID. Uma locadora nunca é removida pelos jobs de
// sincronização ou faturamento.
type Tenant struct {
	ID   string
	Name string

	// Credenciais do provedor de telemetria (login por locadora).
	TelemetryUser     string
	TelemetryPassword string
	// Referência da frota no provedor (path de GET /vehicles/{ref}).
	TelemetryFleetRef string

	// Configuração do gateway de cobrança (client-credentials com mTLS).
	// Os PEMs vivem apenas em memória durante a chamada de token; o motor
	// nunca os grava em disco.
	GatewayBaseURL  string
	GatewayClientID string
	GatewayCertPEM  []byte
	GatewayKeyPEM   []byte
	PixEnabled      bool

	// Carimbada pelo gatilho após uma reconciliação bem-sucedida; substitui o
	// antigo flag de sessão "já sincronizado" por estado persistido.
	LastSyncedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTelemetryConfig indica se a locadora pode ser reconciliada.
func (t *Tenant) HasTelemetryConfig() bool {
	return t.TelemetryUser != "" && t.TelemetryPassword != ""
}

// HasGatewayConfig indica se a locadora pode gerar cobranças no gateway.
func (t *Tenant) HasGatewayConfig() bool {
	return t.GatewayBaseURL != "" && t.GatewayClientID != "" &&
		len(t.GatewayCertPEM) > 0 && len(t.GatewayKeyPEM) > 0
}
