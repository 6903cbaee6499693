// Package export gera relatórios em PDF dos registros de uma locadora
// (clientes, veículos, faturas) com colunas escolhidas pelo operador.
package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

// Tipos de registro exportáveis.
const (
	TypeCustomers = "customers"
	TypeVehicles  = "vehicles"
	TypeInvoices  = "invoices"
)

// FormatPDF único formato suportado por ora.
const FormatPDF = "pdf"

// exportLimit teto de linhas por relatório.
const exportLimit = 1000

// Table relatório tabular pronto para renderização.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Renderer porta de saída do relatório. Implementação concreta:
// pdf.MarotoReportRenderer.
type Renderer interface {
	Render(ctx context.Context, t *Table) ([]byte, error)
}

// UseCase monta e renderiza relatórios.
type UseCase struct {
	tenantRepo   repository.TenantRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	invoiceRepo  repository.InvoiceRepository
	renderer     Renderer
}

// NewUseCase constrói o caso de uso.
func NewUseCase(
	tenantRepo repository.TenantRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	invoiceRepo repository.InvoiceRepository,
	renderer Renderer,
) *UseCase {
	return &UseCase{
		tenantRepo:   tenantRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		invoiceRepo:  invoiceRepo,
		renderer:     renderer,
	}
}

// Export gera o relatório. Campos vazios usam o conjunto padrão do tipo;
// campo ou tipo desconhecido devolve domain.ErrInvalidInput.
func (uc *UseCase) Export(ctx context.Context, tenantID, recordType string, fields []string, format string) ([]byte, error) {
	if format != "" && format != FormatPDF {
		return nil, domain.ErrInvalidInput
	}
	tenant, err := uc.tenantRepo.GetByID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("buscar locadora: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}

	var table *Table
	switch recordType {
	case TypeCustomers:
		table, err = uc.customersTable(tenantID, fields)
	case TypeVehicles:
		table, err = uc.vehiclesTable(tenantID, fields)
	case TypeInvoices:
		table, err = uc.invoicesTable(tenantID, fields)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	table.Title = fmt.Sprintf("%s — %s", tenant.Name, titleFor(recordType))

	return uc.renderer.Render(ctx, table)
}

func titleFor(recordType string) string {
	switch recordType {
	case TypeCustomers:
		return "Clientes"
	case TypeVehicles:
		return "Veículos"
	default:
		return "Faturas"
	}
}

// ── Registros de campos ──────────────────────────────────────────────────────

// column define um campo exportável: rótulo da coluna e extrator do valor.
type column[T any] struct {
	label string
	value func(T) string
}

var customerColumns = map[string]column[*entity.Customer]{
	"external_id": {"Código", func(c *entity.Customer) string { return c.ExternalID }},
	"name":        {"Nome", func(c *entity.Customer) string { return c.Name }},
	"tax_id":      {"CPF/CNPJ", func(c *entity.Customer) string { return c.TaxID }},
	"email":       {"E-mail", func(c *entity.Customer) string { return c.Email }},
	"phone":       {"Telefone", func(c *entity.Customer) string { return c.Phone }},
	"kind":        {"Tipo", func(c *entity.Customer) string { return c.Kind }},
	"created_at":  {"Cadastro", func(c *entity.Customer) string { return c.CreatedAt.Format("02/01/2006") }},
}

var customerDefaultFields = []string{"external_id", "name", "tax_id", "email", "phone"}

var vehicleColumns = map[string]column[*entity.Vehicle]{
	"plate":        {"Placa", func(v *entity.Vehicle) string { return v.Plate }},
	"brand":        {"Marca", func(v *entity.Vehicle) string { return v.Brand }},
	"model":        {"Modelo", func(v *entity.Vehicle) string { return v.Model }},
	"status":       {"Status", func(v *entity.Vehicle) string { return v.Status }},
	"odometer":     {"Hodômetro (km)", func(v *entity.Vehicle) string { return strconv.FormatInt(v.Odometer, 10) }},
	"tracker_imei": {"IMEI", func(v *entity.Vehicle) string { return v.TrackerIMEI }},
	"last_seen_at": {"Último sinal", func(v *entity.Vehicle) string { return formatTimePtr(v.LastSeenAt) }},
}

var vehicleDefaultFields = []string{"plate", "brand", "model", "status", "odometer"}

var invoiceColumns = map[string]column[*entity.Invoice]{
	"reference":      {"Referência", func(i *entity.Invoice) string { return i.Reference }},
	"amount":         {"Valor (R$)", func(i *entity.Invoice) string { return i.Amount.StringFixed(2) }},
	"due_date":       {"Vencimento", func(i *entity.Invoice) string { return i.DueDate.Format("02/01/2006") }},
	"status":         {"Status", func(i *entity.Invoice) string { return i.Status }},
	"payment_method": {"Forma", func(i *entity.Invoice) string { return i.PaymentMethod }},
	"gateway_id":     {"Cobrança gateway", func(i *entity.Invoice) string { return i.GatewayChargeID }},
	"created_at":     {"Emissão", func(i *entity.Invoice) string { return i.CreatedAt.Format("02/01/2006") }},
}

var invoiceDefaultFields = []string{"reference", "amount", "due_date", "status", "payment_method"}

// ── Montagem das tabelas ─────────────────────────────────────────────────────

func (uc *UseCase) customersTable(tenantID string, fields []string) (*Table, error) {
	records, err := uc.customerRepo.ListByTenant(tenantID, exportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	return buildTable(customerColumns, customerDefaultFields, fields, records)
}

func (uc *UseCase) vehiclesTable(tenantID string, fields []string) (*Table, error) {
	records, err := uc.vehicleRepo.ListByTenant(tenantID, exportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listar veículos: %w", err)
	}
	return buildTable(vehicleColumns, vehicleDefaultFields, fields, records)
}

func (uc *UseCase) invoicesTable(tenantID string, fields []string) (*Table, error) {
	records, err := uc.invoiceRepo.ListByTenant(tenantID, exportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listar faturas: %w", err)
	}
	return buildTable(invoiceColumns, invoiceDefaultFields, fields, records)
}

func buildTable[T any](registry map[string]column[T], defaults, fields []string, records []T) (*Table, error) {
	if len(fields) == 0 {
		fields = defaults
	}
	cols := make([]column[T], 0, len(fields))
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		c, ok := registry[f]
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		cols = append(cols, c)
		labels = append(labels, c.label)
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(r)
		}
		rows = append(rows, row)
	}
	return &Table{Columns: labels, Rows: rows}, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
