package repository

import "github.com/locafleet/locafleet-api/internal/domain/entity"

// IntegrationLogRepository trilha append-only de chamadas externas.
type IntegrationLogRepository interface {
	Create(e *entity.IntegrationLog) error
	ListByTenant(tenantID string, limit, offset int) ([]*entity.IntegrationLog, error)
}
