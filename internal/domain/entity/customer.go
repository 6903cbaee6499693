package entity

import "time"

// Tipos de cliente importado.
const (
	CustomerKindIndividual   = "individual"   // pessoa física
	CustomerKindOrganization = "organization" // pessoa jurídica
)

// Customer representa um cliente importado do provedor de telemetria.
// A identidade é (TenantID, ExternalID) — o id imutável do provedor.
// Nome, documento e contato são dados de merge, nunca chave.
//
// Invariante: no máximo uma linha local por (tenant_id, external_id),
// garantida por constraint única no banco.
type Customer struct {
	ID         string
	TenantID   string
	ExternalID string
	Name       string
	TaxID      string // CPF/CNPJ só com dígitos; pode legitimamente estar vazio
	Email      string
	Phone      string
	Address    string
	Kind       string // CustomerKindIndividual | CustomerKindOrganization
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
