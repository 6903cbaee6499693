package postgres

import (
	"context"
	"fmt"

	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

var _ repository.IntegrationLogRepository = (*IntegrationLogRepo)(nil)

// IntegrationLogRepo trilha append-only de chamadas externas. Sem update nem
// delete: poda de retenção é responsabilidade de rotina externa.
type IntegrationLogRepo struct {
	q Querier
}

// NewIntegrationLogRepository constrói o adaptador.
func NewIntegrationLogRepository(q Querier) *IntegrationLogRepo {
	return &IntegrationLogRepo{q: q}
}

// Create insere uma entrada de log.
func (r *IntegrationLogRepo) Create(e *entity.IntegrationLog) error {
	query := `
		INSERT INTO integration_logs (id, tenant_id, service, operation, request, response,
			status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.TenantID, e.Service, e.Operation, e.Request, e.Response,
		e.Status, e.ErrorMessage, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert integration log: %w", err)
	}
	return nil
}

// ListByTenant lista entradas da locadora (mais recentes primeiro).
func (r *IntegrationLogRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.IntegrationLog, error) {
	query := `
		SELECT id, tenant_id, service, operation, request, response, status, error_message, created_at
		FROM integration_logs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list integration logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.IntegrationLog
	for rows.Next() {
		var e entity.IntegrationLog
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Service, &e.Operation, &e.Request,
			&e.Response, &e.Status, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan integration log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
