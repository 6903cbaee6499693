// Package fleetsync implementa o job de reconciliação da frota: puxa clientes
// e veículos do provedor de telemetria e faz o merge no armazenamento local
// sob chaves estritas de deduplicação.
//
// O job é idempotente e reentrante: pode ser reexecutado a qualquer momento,
// inclusive em paralelo, porque a constraint única do banco é o guarda real
// contra duplicatas — a verificação de existência aqui é apenas otimista.
package fleetsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/internal/infrastructure/telemetry"
	"github.com/locafleet/locafleet-api/pkg/brdoc"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

// Sentinelas para campos ausentes em registros importados. O e-mail usa um
// domínio reservado para nunca colidir com endereço real.
const (
	SentinelEmail   = "nao-informado@importacao.invalid"
	SentinelPhone   = "nao informado"
	SentinelAddress = "nao informado"
)

// Summary resultado de uma reconciliação. Errors acumula falhas por registro
// e por subfase; a presença de erros não invalida o que foi importado.
type Summary struct {
	CustomersInserted   int
	CustomersDuplicated int
	CustomersSkipped    int
	VehiclesInserted    int
	VehiclesUpdated     int
	VehiclesSkipped     int
	Errors              []string
}

// Inserted total de inserções (clientes + veículos).
func (s *Summary) Inserted() int { return s.CustomersInserted + s.VehiclesInserted }

// Duplicates total de registros já existentes encontrados.
func (s *Summary) Duplicates() int { return s.CustomersDuplicated }

// Skipped total de registros descartados por falta de identidade.
func (s *Summary) Skipped() int { return s.CustomersSkipped + s.VehiclesSkipped }

// ReconcileUseCase job de reconciliação de uma locadora.
type ReconcileUseCase struct {
	tenantRepo   repository.TenantRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	provider     TelemetryProvider
	sink         audit.Recorder
	log          *logger.Logger
	now          func() time.Time
}

// NewReconcileUseCase constrói o job.
func NewReconcileUseCase(
	tenantRepo repository.TenantRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	provider TelemetryProvider,
	sink audit.Recorder,
	log *logger.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		tenantRepo:   tenantRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		provider:     provider,
		sink:         sink,
		log:          log,
		now:          time.Now,
	}
}

// ReconcileTenant executa as duas subfases (clientes, depois veículos) para a
// locadora. As subfases são independentes: a falha de uma não impede a outra.
// Falha de autenticação no provedor aborta ambas (não há token para nenhuma).
func (uc *ReconcileUseCase) ReconcileTenant(ctx context.Context, tenantID string) (*Summary, error) {
	tenant, err := uc.tenantRepo.GetByID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("buscar locadora: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	if !tenant.HasTelemetryConfig() {
		uc.log.Warn().Str("tenant_id", tenantID).Msg("locadora sem credenciais de telemetria; reconciliação pulada")
		return nil, domain.ErrConfigMissing
	}

	// A senha nunca entra na trilha; só o usuário.
	loginReq := "user=" + tenant.TelemetryUser
	token, raw, err := uc.provider.Login(ctx, tenant.TelemetryUser, tenant.TelemetryPassword)
	if err != nil {
		uc.sink.Failure(tenantID, entity.LogServiceTelemetry, "login", loginReq, raw, err.Error())
		return nil, fmt.Errorf("login telemetria: %w", err)
	}
	uc.sink.Success(tenantID, entity.LogServiceTelemetry, "login", loginReq, raw)

	summary := &Summary{}
	uc.reconcileCustomers(ctx, tenant, token, summary)
	uc.reconcileVehicles(ctx, tenant, token, summary)

	if err := uc.tenantRepo.SetLastSyncedAt(tenant.ID, uc.now()); err != nil {
		// O carimbo falhar só encurta o cooldown da próxima execução.
		uc.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("falha ao carimbar last_synced_at")
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Int("customers_inserted", summary.CustomersInserted).
		Int("customers_duplicated", summary.CustomersDuplicated).
		Int("customers_skipped", summary.CustomersSkipped).
		Int("vehicles_inserted", summary.VehiclesInserted).
		Int("vehicles_updated", summary.VehiclesUpdated).
		Int("vehicles_skipped", summary.VehiclesSkipped).
		Int("errors", len(summary.Errors)).
		Msg("reconciliação concluída")
	return summary, nil
}

// ── Subfase: clientes ─────────────────────────────────────────────────────────

// reconcileCustomers merge insert-if-absent: um cliente já importado nunca é
// atualizado por sincronizações seguintes (first-write-wins).
func (uc *ReconcileUseCase) reconcileCustomers(ctx context.Context, tenant *entity.Tenant, token string, summary *Summary) {
	records, raw, err := uc.provider.ListCustomers(ctx, token)
	if err != nil {
		uc.sink.Failure(tenant.ID, entity.LogServiceTelemetry, "customers-list", "", raw, err.Error())
		summary.Errors = append(summary.Errors, "clientes: "+err.Error())
		return
	}
	uc.sink.Success(tenant.ID, entity.LogServiceTelemetry, "customers-list", "", raw)

	for _, rec := range records {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, "clientes: execução cancelada")
			return
		}
		// Identidade vem só do id imutável do provedor; nome/documento/e-mail
		// são dados de merge, nunca chave.
		if rec.ExternalID == "" {
			uc.log.Warn().Str("tenant_id", tenant.ID).Str("name", rec.Name).
				Msg("cliente do provedor sem id; descartado")
			summary.CustomersSkipped++
			continue
		}

		existing, err := uc.customerRepo.GetByExternalID(tenant.ID, rec.ExternalID)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("cliente %s: %v", rec.ExternalID, err))
			continue
		}
		if existing != nil {
			summary.CustomersDuplicated++
			continue
		}

		customer := uc.buildCustomer(tenant.ID, rec)
		if err := uc.customerRepo.Create(customer); err != nil {
			if err == domain.ErrDuplicate {
				// Corrida com outra execução: a constraint única decidiu.
				summary.CustomersDuplicated++
				continue
			}
			uc.log.Error().Err(err).Str("tenant_id", tenant.ID).
				Str("external_id", rec.ExternalID).Msg("falha ao inserir cliente importado")
			summary.Errors = append(summary.Errors, fmt.Sprintf("cliente %s: %v", rec.ExternalID, err))
			continue
		}
		summary.CustomersInserted++
	}
}

// buildCustomer normaliza um registro do provedor para a entidade local.
func (uc *ReconcileUseCase) buildCustomer(tenantID string, rec telemetry.CustomerRecord) *entity.Customer {
	email := strings.TrimSpace(rec.Email)
	if email == "" {
		email = SentinelEmail
	}
	phone := strings.TrimSpace(rec.Phone)
	if phone == "" {
		phone = SentinelPhone
	}
	address := strings.TrimSpace(rec.Address)
	if address == "" {
		address = SentinelAddress
	}
	now := uc.now()
	return &entity.Customer{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		ExternalID: rec.ExternalID,
		Name:       strings.TrimSpace(rec.Name),
		TaxID:      brdoc.Digits(rec.TaxID),
		Email:      email,
		Phone:      phone,
		Address:    address,
		Kind:       customerKind(rec),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// customerKind resolve pessoa física/jurídica: o campo do provedor quando
// presente, senão o comprimento do documento (CNPJ = jurídica).
func customerKind(rec telemetry.CustomerRecord) string {
	switch strings.ToUpper(strings.TrimSpace(rec.Kind)) {
	case "J", "PJ", "JURIDICA", "JURÍDICA":
		return entity.CustomerKindOrganization
	case "F", "PF", "FISICA", "FÍSICA":
		return entity.CustomerKindIndividual
	}
	if brdoc.Kind(rec.TaxID) == brdoc.KindCNPJ {
		return entity.CustomerKindOrganization
	}
	return entity.CustomerKindIndividual
}

// ── Subfase: veículos ─────────────────────────────────────────────────────────

// reconcileVehicles merge upsert: telemetria mais nova sobrescreve status,
// posição e hodômetro de veículos já importados.
func (uc *ReconcileUseCase) reconcileVehicles(ctx context.Context, tenant *entity.Tenant, token string, summary *Summary) {
	records, raw, err := uc.provider.ListVehicles(ctx, token, tenant.TelemetryFleetRef)
	if err != nil {
		uc.sink.Failure(tenant.ID, entity.LogServiceTelemetry, "vehicles-list", "fleet="+tenant.TelemetryFleetRef, raw, err.Error())
		summary.Errors = append(summary.Errors, "veículos: "+err.Error())
		return
	}
	uc.sink.Success(tenant.ID, entity.LogServiceTelemetry, "vehicles-list", "fleet="+tenant.TelemetryFleetRef, raw)

	for _, rec := range records {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, "veículos: execução cancelada")
			return
		}
		if rec.Plate == "" {
			summary.VehiclesSkipped++
			continue
		}

		lat, lon, hasPos := rec.Latitude, rec.Longitude, rec.HasPosition
		if !hasPos && rec.ProviderID != "" {
			// A lista não trouxe coordenadas; tenta a posição pontual.
			pos, posRaw, posErr := uc.provider.VehiclePosition(ctx, token, rec.ProviderID)
			if posErr != nil {
				uc.sink.Failure(tenant.ID, entity.LogServiceTelemetry, "vehicle-position", "id="+rec.ProviderID, posRaw, posErr.Error())
			} else {
				uc.sink.Success(tenant.ID, entity.LogServiceTelemetry, "vehicle-position", "id="+rec.ProviderID, posRaw)
				lat, lon, hasPos = pos.Latitude, pos.Longitude, true
			}
		}

		if err := uc.mergeVehicle(tenant.ID, rec, lat, lon, hasPos, summary); err != nil {
			uc.log.Error().Err(err).Str("tenant_id", tenant.ID).
				Str("plate", rec.Plate).Msg("falha ao importar veículo")
			summary.Errors = append(summary.Errors, fmt.Sprintf("veículo %s: %v", rec.Plate, err))
		}
	}
}

// mergeVehicle insere o veículo ou atualiza os campos mutáveis se a placa já existir.
func (uc *ReconcileUseCase) mergeVehicle(tenantID string, rec telemetry.VehicleRecord, lat, lon float64, hasPos bool, summary *Summary) error {
	existing, err := uc.vehicleRepo.GetByPlate(tenantID, rec.Plate)
	if err != nil {
		return err
	}
	now := uc.now()

	if existing != nil {
		existing.Status = vehicleStatus(rec.StatusCode)
		existing.Odometer = rec.Odometer
		if hasPos {
			existing.LastLatitude = lat
			existing.LastLongitude = lon
		}
		if rec.TrackerIMEI != "" {
			existing.TrackerIMEI = rec.TrackerIMEI
		}
		if rec.TrackerModel != "" {
			existing.TrackerModel = rec.TrackerModel
		}
		existing.LastSeenAt = &now
		existing.UpdatedAt = now
		if err := uc.vehicleRepo.UpdateTelemetry(existing); err != nil {
			return err
		}
		summary.VehiclesUpdated++
		return nil
	}

	vehicle := &entity.Vehicle{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Plate:        rec.Plate,
		Brand:        rec.Brand,
		Model:        rec.Model,
		TrackerIMEI:  rec.TrackerIMEI,
		TrackerModel: rec.TrackerModel,
		Status:       vehicleStatus(rec.StatusCode),
		Odometer:     rec.Odometer,
		LastSeenAt:   &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if hasPos {
		vehicle.LastLatitude = lat
		vehicle.LastLongitude = lon
	}
	if err := uc.vehicleRepo.Create(vehicle); err != nil {
		if err == domain.ErrDuplicate {
			// Corrida: outra execução inseriu a placa entre o lookup e o insert.
			summary.VehiclesUpdated++
			return nil
		}
		return err
	}
	summary.VehiclesInserted++
	return nil
}

// vehicleStatus mapeia o código do provedor: 1 = disponível, resto indisponível.
func vehicleStatus(code int) string {
	if code == 1 {
		return entity.VehicleStatusAvailable
	}
	return entity.VehicleStatusUnavailable
}
