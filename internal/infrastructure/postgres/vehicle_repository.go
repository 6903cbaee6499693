package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implementação de VehicleRepository (usável com pool ou tx).
// A tabela vehicles tem constraint única (tenant_id, plate): ux_vehicles_tenant_plate.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository constrói o adaptador.
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

const vehicleColumns = `
	id, tenant_id, plate, brand, model, tracker_imei, tracker_model, status,
	odometer, last_latitude, last_longitude, last_seen_at, created_at, updated_at`

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(
		&v.ID, &v.TenantID, &v.Plate, &v.Brand, &v.Model, &v.TrackerIMEI,
		&v.TrackerModel, &v.Status, &v.Odometer, &v.LastLatitude, &v.LastLongitude,
		&v.LastSeenAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste um veículo importado.
func (r *VehicleRepo) Create(v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, tenant_id, plate, brand, model, tracker_imei, tracker_model, status,
			odometer, last_latitude, last_longitude, last_seen_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.TenantID, v.Plate, v.Brand, v.Model, v.TrackerIMEI, v.TrackerModel,
		v.Status, v.Odometer, v.LastLatitude, v.LastLongitude, v.LastSeenAt,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// GetByPlate obtém um veículo pela chave de dedup (tenant_id, plate).
func (r *VehicleRepo) GetByPlate(tenantID, plate string) (*entity.Vehicle, error) {
	query := `SELECT` + vehicleColumns + ` FROM vehicles WHERE tenant_id = $1 AND plate = $2`
	v, err := scanVehicle(r.q.QueryRow(context.Background(), query, tenantID, plate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle by plate: %w", err)
	}
	return v, nil
}

// UpdateTelemetry sobrescreve apenas os campos mutáveis do veículo —
// telemetria mais nova ganha, ao contrário do merge de clientes.
func (r *VehicleRepo) UpdateTelemetry(v *entity.Vehicle) error {
	query := `
		UPDATE vehicles
		SET status = $2, odometer = $3, last_latitude = $4, last_longitude = $5,
			last_seen_at = $6, tracker_imei = $7, tracker_model = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.Status, v.Odometer, v.LastLatitude, v.LastLongitude, v.LastSeenAt,
		v.TrackerIMEI, v.TrackerModel, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vehicle telemetry: %w", err)
	}
	return nil
}

// ListByTenant lista veículos da locadora com paginação.
func (r *VehicleRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Vehicle, error) {
	query := `SELECT` + vehicleColumns + ` FROM vehicles WHERE tenant_id = $1 ORDER BY plate LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
