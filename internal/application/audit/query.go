package audit

import (
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

// QueryUseCase leitura paginada da trilha (tela de auditoria do back office).
type QueryUseCase struct {
	repo repository.IntegrationLogRepository
}

// NewQueryUseCase constrói o caso de uso.
func NewQueryUseCase(repo repository.IntegrationLogRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// List lista entradas da locadora, mais recentes primeiro.
func (uc *QueryUseCase) List(tenantID string, limit, offset int) ([]*entity.IntegrationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.ListByTenant(tenantID, limit, offset)
}
