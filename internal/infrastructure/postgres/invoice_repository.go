package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementação de InvoiceRepository (usável com pool ou tx).
// A tabela invoices tem índice único parcial em (contract_id, due_date) para
// billing_kind = 'recurring': ux_invoices_contract_due — chave de idempotência
// do ciclo de faturamento.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository constrói o adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, tenant_id, contract_id, customer_id, reference, amount, due_date, status,
	gateway_charge_id, barcode, pix_payload, payment_url, payment_method,
	billing_kind, attempt_count, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.ContractID, &inv.CustomerID, &inv.Reference,
		&inv.Amount, &inv.DueDate, &inv.Status, &inv.GatewayChargeID, &inv.Barcode,
		&inv.PixPayload, &inv.PaymentURL, &inv.PaymentMethod, &inv.BillingKind,
		&inv.AttemptCount, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste a fatura. ErrDuplicate na violação do índice único de ciclo:
// outra execução concorrente já faturou este (contract_id, due_date).
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, contract_id, customer_id, reference, amount, due_date,
			status, gateway_charge_id, barcode, pix_payload, payment_url, payment_method,
			billing_kind, attempt_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.TenantID, inv.ContractID, inv.CustomerID, inv.Reference,
		inv.Amount, inv.DueDate, inv.Status, inv.GatewayChargeID, inv.Barcode,
		inv.PixPayload, inv.PaymentURL, inv.PaymentMethod, inv.BillingKind,
		inv.AttemptCount, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByContractAndDueDate obtém a fatura recorrente de um ciclo, se existir.
// Pré-verificação otimista de idempotência; o guarda real é o índice único.
func (r *InvoiceRepo) GetByContractAndDueDate(contractID string, dueDate time.Time) (*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE contract_id = $1 AND due_date = $2 AND billing_kind = $3`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query,
		contractID, dueDate, entity.BillingKindRecurring))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by cycle: %w", err)
	}
	return inv, nil
}

// ListByTenant lista faturas da locadora com paginação (mais recentes primeiro).
func (r *InvoiceRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
