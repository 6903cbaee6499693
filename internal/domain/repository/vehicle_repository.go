package repository

import "github.com/locafleet/locafleet-api/internal/domain/entity"

// VehicleRepository veículos importados. Identidade (tenant_id, plate) com
// constraint única; UpdateTelemetry sobrescreve apenas os campos mutáveis
// (status, posição, hodômetro, último visto, dados do rastreador).
type VehicleRepository interface {
	GetByPlate(tenantID, plate string) (*entity.Vehicle, error)
	Create(v *entity.Vehicle) error
	UpdateTelemetry(v *entity.Vehicle) error
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Vehicle, error)
}
