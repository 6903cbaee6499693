package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementação de TenantRepository (usável com pool ou tx).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository constrói o adaptador.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `
	id, name, telemetry_user, telemetry_password, telemetry_fleet_ref,
	gateway_base_url, gateway_client_id, gateway_cert_pem, gateway_key_pem,
	pix_enabled, last_synced_at, created_at, updated_at`

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.TelemetryUser, &t.TelemetryPassword, &t.TelemetryFleetRef,
		&t.GatewayBaseURL, &t.GatewayClientID, &t.GatewayCertPEM, &t.GatewayKeyPEM,
		&t.PixEnabled, &t.LastSyncedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID obtém uma locadora por ID.
func (r *TenantRepo) GetByID(id string) (*entity.Tenant, error) {
	query := `SELECT` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// List lista todas as locadoras (ordem estável para o syncworker).
func (r *TenantRepo) List() ([]*entity.Tenant, error) {
	query := `SELECT` + tenantColumns + ` FROM tenants ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// SetLastSyncedAt carimba a última reconciliação bem-sucedida.
func (r *TenantRepo) SetLastSyncedAt(id string, at time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE tenants SET last_synced_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("set last_synced_at: %w", err)
	}
	return nil
}
