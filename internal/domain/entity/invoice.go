package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de fatura.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Origem da fatura.
const (
	BillingKindRecurring = "recurring"
	BillingKindOneOff    = "one_off"
)

// Invoice representa uma fatura de locação. Para faturas recorrentes a chave
// de idempotência é (ContractID, DueDate): a constraint única do banco impede
// fatura dupla no mesmo ciclo mesmo sob execuções concorrentes.
//
// Os campos do gateway (GatewayChargeID, Barcode, PixPayload, PaymentURL)
// ficam vazios quando a cobrança degradou para registro apenas local.
type Invoice struct {
	ID              string
	TenantID        string
	ContractID      string
	CustomerID      string
	Reference       string // identificador enviado ao gateway (timestamp + sufixo do contrato)
	Amount          decimal.Decimal
	DueDate         time.Time // somente data
	Status          string
	GatewayChargeID string
	Barcode         string
	PixPayload      string
	PaymentURL      string
	PaymentMethod   string // pix | boleto
	BillingKind     string
	AttemptCount    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
