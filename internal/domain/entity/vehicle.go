package entity

import "time"

// Status local do veículo. O provedor usa códigos numéricos: 1 = disponível,
// qualquer outro valor = indisponível.
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusUnavailable = "unavailable"
)

// Vehicle representa um veículo/rastreador importado do provedor.
// A identidade é (TenantID, Plate). Ao contrário dos clientes, telemetria
// mais nova sobrescreve os campos mutáveis (status, posição, hodômetro).
type Vehicle struct {
	ID            string
	TenantID      string
	Plate         string
	Brand         string
	Model         string
	TrackerIMEI   string
	TrackerModel  string
	Status        string
	Odometer      int64 // km inteiros; o provedor manda "1500.0"
	LastLatitude  float64
	LastLongitude float64
	LastSeenAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
