package repository

import (
	"time"

	"github.com/locafleet/locafleet-api/internal/domain/entity"
)

// TenantRepository acesso às locadoras. O motor apenas lê e carimba LastSyncedAt.
type TenantRepository interface {
	GetByID(id string) (*entity.Tenant, error)
	List() ([]*entity.Tenant, error)
	SetLastSyncedAt(id string, at time.Time) error
}
