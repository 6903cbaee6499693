package repository

import (
	"time"

	"github.com/locafleet/locafleet-api/internal/domain/entity"
)

// ContractRepository contratos de locação recorrente.
type ContractRepository interface {
	// ListDueRecurring devolve contratos ativos e recorrentes com
	// next_billing_date <= cutoff, na ordem de vencimento.
	ListDueRecurring(tenantID string, cutoff time.Time) ([]*entity.Contract, error)
	CountDueRecurring(tenantID string, cutoff time.Time) (int, error)
	// Advance grava o próximo vencimento e o carimbo da última fatura.
	Advance(contractID string, nextBillingDate, lastInvoiceAt time.Time) error
}
