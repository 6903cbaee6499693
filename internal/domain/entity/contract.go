package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de contrato de locação.
const (
	ContractStatusActive    = "active"
	ContractStatusEnded     = "ended"
	ContractStatusSuspended = "suspended"
)

// Contract representa um contrato de locação recorrente.
// O motor de faturamento é o único dono do avanço de NextBillingDate e
// LastInvoiceAt; Status e os demais campos mudam apenas via CRUD externo.
type Contract struct {
	ID              string
	TenantID        string
	CustomerID      string
	MonthlyAmount   decimal.Decimal
	NextBillingDate time.Time // somente data (hora zerada)
	LastInvoiceAt   *time.Time
	Status          string
	Recurring       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
