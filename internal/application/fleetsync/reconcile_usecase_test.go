package fleetsync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/locafleet-api/internal/application/fleetsync"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/infrastructure/telemetry"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória
// ──────────────────────────────────────────────────────────────────────────────

type fakeTenantRepo struct {
	tenants    map[string]*entity.Tenant
	lastSynced map[string]time.Time
}

func newFakeTenantRepo(tenants ...*entity.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: map[string]*entity.Tenant{}, lastSynced: map[string]time.Time{}}
	for _, tn := range tenants {
		r.tenants[tn.ID] = tn
	}
	return r
}

func (r *fakeTenantRepo) GetByID(id string) (*entity.Tenant, error) { return r.tenants[id], nil }
func (r *fakeTenantRepo) List() ([]*entity.Tenant, error) {
	out := make([]*entity.Tenant, 0, len(r.tenants))
	for _, tn := range r.tenants {
		out = append(out, tn)
	}
	return out, nil
}
func (r *fakeTenantRepo) SetLastSyncedAt(id string, at time.Time) error {
	r.lastSynced[id] = at
	return nil
}

type fakeCustomerRepo struct {
	byExternal map[string]*entity.Customer // tenantID+"|"+externalID
	createErr  error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byExternal: map[string]*entity.Customer{}}
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	for _, c := range r.byExternal {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) GetByExternalID(tenantID, externalID string) (*entity.Customer, error) {
	return r.byExternal[tenantID+"|"+externalID], nil
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := c.TenantID + "|" + c.ExternalID
	if _, ok := r.byExternal[key]; ok {
		return domain.ErrDuplicate
	}
	r.byExternal[key] = c
	return nil
}

func (r *fakeCustomerRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

type fakeVehicleRepo struct {
	byPlate map[string]*entity.Vehicle // tenantID+"|"+plate
	updated int
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{byPlate: map[string]*entity.Vehicle{}}
}

func (r *fakeVehicleRepo) GetByPlate(tenantID, plate string) (*entity.Vehicle, error) {
	return r.byPlate[tenantID+"|"+plate], nil
}

func (r *fakeVehicleRepo) Create(v *entity.Vehicle) error {
	key := v.TenantID + "|" + v.Plate
	if _, ok := r.byPlate[key]; ok {
		return domain.ErrDuplicate
	}
	r.byPlate[key] = v
	return nil
}

func (r *fakeVehicleRepo) UpdateTelemetry(v *entity.Vehicle) error {
	r.byPlate[v.TenantID+"|"+v.Plate] = v
	r.updated++
	return nil
}

func (r *fakeVehicleRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Vehicle, error) {
	return nil, nil
}

type fakeProvider struct {
	loginErr     error
	customers    []telemetry.CustomerRecord
	customersErr error
	vehicles     []telemetry.VehicleRecord
	vehiclesErr  error
	positions    map[string]*telemetry.Position
	positionErr  error
}

func (p *fakeProvider) Login(ctx context.Context, user, password string) (string, string, error) {
	if p.loginErr != nil {
		return "", `{"erro": "credenciais"}`, p.loginErr
	}
	return "tok", `{"token": "tok"}`, nil
}

func (p *fakeProvider) ListCustomers(ctx context.Context, token string) ([]telemetry.CustomerRecord, string, error) {
	return p.customers, "[]", p.customersErr
}

func (p *fakeProvider) ListVehicles(ctx context.Context, token, fleetRef string) ([]telemetry.VehicleRecord, string, error) {
	return p.vehicles, "[]", p.vehiclesErr
}

func (p *fakeProvider) VehiclePosition(ctx context.Context, token, providerID string) (*telemetry.Position, string, error) {
	if p.positionErr != nil {
		return nil, "", p.positionErr
	}
	return p.positions[providerID], "{}", nil
}

// recordingSink trilha em memória para contar chamadas registradas.
type recordingSink struct {
	successes []string // service/operation
	failures  []string
	requests  []string
}

func (s *recordingSink) Success(tenantID, service, operation, request, response string) {
	s.successes = append(s.successes, service+"/"+operation)
	s.requests = append(s.requests, request)
}

func (s *recordingSink) Failure(tenantID, service, operation, request, response, errMsg string) {
	s.failures = append(s.failures, service+"/"+operation)
	s.requests = append(s.requests, request)
}

// ──────────────────────────────────────────────────────────────────────────────
// Montagem
// ──────────────────────────────────────────────────────────────────────────────

func activeTenant() *entity.Tenant {
	return &entity.Tenant{
		ID:                "t-1",
		Name:              "Locadora Aurora",
		TelemetryUser:     "aurora",
		TelemetryPassword: "segredo",
		TelemetryFleetRef: "frota-1",
	}
}

type fixture struct {
	uc        *fleetsync.ReconcileUseCase
	tenants   *fakeTenantRepo
	customers *fakeCustomerRepo
	vehicles  *fakeVehicleRepo
	provider  *fakeProvider
	sink      *recordingSink
}

func newFixture(provider *fakeProvider, tenants ...*entity.Tenant) *fixture {
	f := &fixture{
		tenants:   newFakeTenantRepo(tenants...),
		customers: newFakeCustomerRepo(),
		vehicles:  newFakeVehicleRepo(),
		provider:  provider,
		sink:      &recordingSink{},
	}
	f.uc = fleetsync.NewReconcileUseCase(f.tenants, f.customers, f.vehicles, provider, f.sink, logger.Nop())
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes — insert-if-absent
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_ImportaClientesNovos(t *testing.T) {
	provider := &fakeProvider{
		customers: []telemetry.CustomerRecord{
			{ExternalID: "c1", Name: "João Silva", TaxID: "123.456.789-01"},
			{ExternalID: "c2", Name: "Transportes Sul Ltda", TaxID: "12.345.678/0001-90", Kind: "J"},
		},
	}
	f := newFixture(provider, activeTenant())

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CustomersInserted)
	assert.Equal(t, 0, summary.CustomersDuplicated)

	c1 := f.customers.byExternal["t-1|c1"]
	require.NotNil(t, c1)
	assert.Equal(t, "12345678901", c1.TaxID, "documento sem máscara")
	assert.Equal(t, entity.CustomerKindIndividual, c1.Kind)
	assert.Equal(t, fleetsync.SentinelEmail, c1.Email, "e-mail ausente vira sentinela")

	c2 := f.customers.byExternal["t-1|c2"]
	require.NotNil(t, c2)
	assert.Equal(t, entity.CustomerKindOrganization, c2.Kind)
}

// Rodar duas vezes não duplica nada: a segunda execução só conta duplicados.
func TestReconcile_SegundaExecucaoIdempotente(t *testing.T) {
	provider := &fakeProvider{
		customers: []telemetry.CustomerRecord{
			{ExternalID: "c1", Name: "João Silva"},
			{ExternalID: "c2", Name: "Maria Costa"},
		},
	}
	f := newFixture(provider, activeTenant())

	first, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.CustomersInserted)

	second, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.CustomersInserted)
	assert.Equal(t, 2, second.CustomersDuplicated)
	assert.Len(t, f.customers.byExternal, 2)
}

// Cliente já importado nunca é atualizado (first-write-wins).
func TestReconcile_NaoSobrescreveClienteExistente(t *testing.T) {
	provider := &fakeProvider{
		customers: []telemetry.CustomerRecord{{ExternalID: "c1", Name: "Nome Novo"}},
	}
	f := newFixture(provider, activeTenant())
	f.customers.byExternal["t-1|c1"] = &entity.Customer{
		ID: "local-1", TenantID: "t-1", ExternalID: "c1", Name: "Nome Original",
	}

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CustomersDuplicated)
	assert.Equal(t, "Nome Original", f.customers.byExternal["t-1|c1"].Name)
}

// Registro sem id do provedor não tem identidade de deduplicação: é descartado.
func TestReconcile_ClienteSemIDDescartado(t *testing.T) {
	provider := &fakeProvider{
		customers: []telemetry.CustomerRecord{
			{ExternalID: "", Name: "Fantasma"},
			{ExternalID: "c1", Name: "Real"},
		},
	}
	f := newFixture(provider, activeTenant())

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CustomersSkipped)
	assert.Equal(t, 1, summary.CustomersInserted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Veículos — upsert
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_VeiculoNovoEAtualizacao(t *testing.T) {
	provider := &fakeProvider{
		vehicles: []telemetry.VehicleRecord{
			{Plate: "ABC1234", StatusCode: 1, Odometer: 1500, Latitude: -23.5, Longitude: -46.6, HasPosition: true},
		},
	}
	f := newFixture(provider, activeTenant())

	first, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.VehiclesInserted)

	v := f.vehicles.byPlate["t-1|ABC1234"]
	require.NotNil(t, v)
	assert.Equal(t, entity.VehicleStatusAvailable, v.Status)
	assert.Equal(t, int64(1500), v.Odometer)

	// Telemetria mais nova sobrescreve os campos mutáveis.
	provider.vehicles[0].StatusCode = 3
	provider.vehicles[0].Odometer = 1720
	second, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.VehiclesUpdated)

	v = f.vehicles.byPlate["t-1|ABC1234"]
	assert.Equal(t, entity.VehicleStatusUnavailable, v.Status)
	assert.Equal(t, int64(1720), v.Odometer)
}

func TestReconcile_VeiculoSemPlacaDescartado(t *testing.T) {
	provider := &fakeProvider{
		vehicles: []telemetry.VehicleRecord{{Plate: "", StatusCode: 1}},
	}
	f := newFixture(provider, activeTenant())

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.VehiclesSkipped)
}

// Lista sem coordenadas: o job busca a posição pontual por veículo.
func TestReconcile_BuscaPosicaoPontual(t *testing.T) {
	provider := &fakeProvider{
		vehicles: []telemetry.VehicleRecord{
			{ProviderID: "v-9", Plate: "ABC1234", StatusCode: 1},
		},
		positions: map[string]*telemetry.Position{
			"v-9": {Latitude: -22.9, Longitude: -43.2},
		},
	}
	f := newFixture(provider, activeTenant())

	_, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)

	v := f.vehicles.byPlate["t-1|ABC1234"]
	require.NotNil(t, v)
	assert.InDelta(t, -22.9, v.LastLatitude, 0.001)
	assert.Contains(t, f.sink.successes, "telemetry/vehicle-position")
}

// Falha na posição pontual não impede a importação do veículo.
func TestReconcile_PosicaoFalhaNaoBloqueiaVeiculo(t *testing.T) {
	provider := &fakeProvider{
		vehicles:    []telemetry.VehicleRecord{{ProviderID: "v-9", Plate: "ABC1234", StatusCode: 1}},
		positionErr: errors.New("timeout"),
	}
	f := newFixture(provider, activeTenant())

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.VehiclesInserted)
	assert.Contains(t, f.sink.failures, "telemetry/vehicle-position")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fases e falhas
// ──────────────────────────────────────────────────────────────────────────────

// Falha na lista de clientes não impede a subfase de veículos.
func TestReconcile_SubfasesIndependentes(t *testing.T) {
	provider := &fakeProvider{
		customersErr: errors.New("HTTP 502"),
		vehicles:     []telemetry.VehicleRecord{{Plate: "ABC1234", StatusCode: 1}},
	}
	f := newFixture(provider, activeTenant())

	summary, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.VehiclesInserted)
	assert.NotEmpty(t, summary.Errors)
	assert.Contains(t, f.sink.failures, "telemetry/customers-list")
}

// Falha de login aborta tudo: não há token para nenhuma subfase.
func TestReconcile_LoginFalhaAborta(t *testing.T) {
	provider := &fakeProvider{loginErr: domain.ErrUnauthorized}
	f := newFixture(provider, activeTenant())

	_, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.Error(t, err)
	assert.Contains(t, f.sink.failures, "telemetry/login")
}

// A senha da telemetria nunca entra na trilha de integração.
func TestReconcile_SenhaNuncaNaTrilha(t *testing.T) {
	provider := &fakeProvider{loginErr: domain.ErrUnauthorized}
	f := newFixture(provider, activeTenant())

	_, _ = f.uc.ReconcileTenant(context.Background(), "t-1")
	for _, req := range f.sink.requests {
		assert.NotContains(t, req, "segredo")
	}
}

func TestReconcile_LocadoraInexistente(t *testing.T) {
	f := newFixture(&fakeProvider{})
	_, err := f.uc.ReconcileTenant(context.Background(), "t-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_LocadoraSemCredenciais(t *testing.T) {
	f := newFixture(&fakeProvider{}, &entity.Tenant{ID: "t-2", Name: "Sem Config"})
	_, err := f.uc.ReconcileTenant(context.Background(), "t-2")
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

// Sucesso carimba last_synced_at (base do cooldown persistido).
func TestReconcile_CarimbaLastSyncedAt(t *testing.T) {
	f := newFixture(&fakeProvider{}, activeTenant())

	_, err := f.uc.ReconcileTenant(context.Background(), "t-1")
	require.NoError(t, err)
	_, ok := f.tenants.lastSynced["t-1"]
	assert.True(t, ok)
}
