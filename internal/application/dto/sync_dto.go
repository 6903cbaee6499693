package dto

import "time"

// Ações aceitas pelo gatilho de sincronização.
const (
	SyncActionReconcile = "reconcile"
	SyncActionBill      = "bill"
	SyncActionBoth      = "both"
)

// SyncRunRequest corpo de POST /api/sync/run.
type SyncRunRequest struct {
	TenantID string `json:"tenant_id"`
	Action   string `json:"action"` // reconcile | bill | both (padrão both)
}

// SyncRunResponse resultado consolidado de uma execução do gatilho.
type SyncRunResponse struct {
	TenantID           string   `json:"tenant_id"`
	Action             string   `json:"action"`
	CustomersInserted  int      `json:"customers_inserted"`
	CustomersDuplicate int      `json:"customers_duplicate"`
	CustomersSkipped   int      `json:"customers_skipped"`
	VehiclesInserted   int      `json:"vehicles_inserted"`
	VehiclesUpdated    int      `json:"vehicles_updated"`
	VehiclesSkipped    int      `json:"vehicles_skipped"`
	ContractsBilled    int      `json:"contracts_billed"`
	Errors             []string `json:"errors,omitempty"`
	Notes              []string `json:"notes,omitempty"`
}

// SyncStatusResponse GET /api/sync/status/:tenantID.
type SyncStatusResponse struct {
	TenantID        string     `json:"tenant_id"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	CooldownActive  bool       `json:"cooldown_active"`
	CooldownMinutes int        `json:"cooldown_minutes"`
	PendingBilling  int        `json:"pending_billing"`
}
