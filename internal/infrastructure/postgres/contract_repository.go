package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
)

var _ repository.ContractRepository = (*ContractRepo)(nil)

// ContractRepo implementação de ContractRepository (usável com pool ou tx).
type ContractRepo struct {
	q Querier
}

// NewContractRepository constrói o adaptador.
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractColumns = `
	id, tenant_id, customer_id, monthly_amount, next_billing_date, last_invoice_at,
	status, recurring, created_at, updated_at`

func scanContract(row pgx.Row) (*entity.Contract, error) {
	var c entity.Contract
	err := row.Scan(
		&c.ID, &c.TenantID, &c.CustomerID, &c.MonthlyAmount, &c.NextBillingDate,
		&c.LastInvoiceAt, &c.Status, &c.Recurring, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListDueRecurring seleciona contratos ativos e recorrentes dentro da janela
// de antecipação do faturamento, em ordem de vencimento.
func (r *ContractRepo) ListDueRecurring(tenantID string, cutoff time.Time) ([]*entity.Contract, error) {
	query := `SELECT` + contractColumns + `
		FROM contracts
		WHERE tenant_id = $1 AND status = $2 AND recurring AND next_billing_date <= $3
		ORDER BY next_billing_date, id`
	rows, err := r.q.Query(context.Background(), query, tenantID, entity.ContractStatusActive, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list due contracts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// CountDueRecurring conta contratos pendentes de faturamento (status do gatilho).
func (r *ContractRepo) CountDueRecurring(tenantID string, cutoff time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM contracts
		WHERE tenant_id = $1 AND status = $2 AND recurring AND next_billing_date <= $3`
	var n int
	err := r.q.QueryRow(context.Background(), query, tenantID, entity.ContractStatusActive, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count due contracts: %w", err)
	}
	return n, nil
}

// Advance grava o próximo vencimento e o carimbo da última fatura do contrato.
func (r *ContractRepo) Advance(contractID string, nextBillingDate, lastInvoiceAt time.Time) error {
	query := `
		UPDATE contracts
		SET next_billing_date = $2, last_invoice_at = $3, updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, contractID, nextBillingDate, lastInvoiceAt)
	if err != nil {
		return fmt.Errorf("advance contract: %w", err)
	}
	return nil
}
