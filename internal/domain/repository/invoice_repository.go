package repository

import (
	"time"

	"github.com/locafleet/locafleet-api/internal/domain/entity"
)

// InvoiceRepository faturas geradas pelo motor de faturamento.
// Create deve falhar com domain.ErrDuplicate ao violar a constraint única
// (contract_id, due_date) de faturas recorrentes — chave de idempotência
// do ciclo.
type InvoiceRepository interface {
	GetByContractAndDueDate(contractID string, dueDate time.Time) (*entity.Invoice, error)
	Create(inv *entity.Invoice) error
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Invoice, error)
}
