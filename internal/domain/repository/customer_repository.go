package repository

import "github.com/locafleet/locafleet-api/internal/domain/entity"

// CustomerRepository clientes importados do provedor de telemetria.
// Create deve falhar com domain.ErrDuplicate ao violar a constraint única
// (tenant_id, external_id) — é o guarda de concorrência real do merge.
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
	GetByExternalID(tenantID, externalID string) (*entity.Customer, error)
	Create(c *entity.Customer) error
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error)
}
