// Package billing implementa o motor de faturamento recorrente: varre
// contratos ativos dentro da janela de antecipação, cria cobranças no gateway
// e avança o ciclo de cada contrato, garantindo no máximo uma fatura
// persistida por (contrato, vencimento) mesmo sob retries ou quedas no meio
// da execução.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
	"github.com/locafleet/locafleet-api/pkg/brdoc"
	"github.com/locafleet/locafleet-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config parâmetros do ciclo. Zero usa os padrões do produto.
type Config struct {
	LookAheadDays int // janela de antecipação da seleção (padrão 5)
	DueOffsetDays int // vencimento = next_billing_date + N dias (padrão 7)
	CycleDays     int // avanço do ciclo após faturar (padrão 30)
}

func (c Config) withDefaults() Config {
	if c.LookAheadDays == 0 {
		c.LookAheadDays = 5
	}
	if c.DueOffsetDays == 0 {
		c.DueOffsetDays = 7
	}
	if c.CycleDays == 0 {
		c.CycleDays = 30
	}
	return c
}

// CycleUseCase motor de faturamento recorrente de uma locadora.
type CycleUseCase struct {
	tenantRepo   repository.TenantRepository
	contractRepo repository.ContractRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	auth         TokenProvider
	charges      ChargeCreator
	sink         audit.Recorder
	log          *logger.Logger
	cfg          Config
	now          func() time.Time
}

// NewCycleUseCase constrói o motor.
func NewCycleUseCase(
	tenantRepo repository.TenantRepository,
	contractRepo repository.ContractRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	auth TokenProvider,
	charges ChargeCreator,
	sink audit.Recorder,
	log *logger.Logger,
	cfg Config,
) *CycleUseCase {
	return &CycleUseCase{
		tenantRepo:   tenantRepo,
		contractRepo: contractRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		auth:         auth,
		charges:      charges,
		sink:         sink,
		log:          log,
		cfg:          cfg.withDefaults(),
		now:          time.Now,
	}
}

// RunBillingCycle fatura os contratos vencendo dentro da janela de antecipação.
// Devolve quantos contratos tiveram o ciclo concluído (fatura garantida e
// contrato avançado). Erros por contrato são logados e não abortam o lote.
//
// Política degrade-não-falha: indisponibilidade do gateway não bloqueia a
// escrituração local — a fatura é persistida pendente, sem os campos do
// gateway.
func (uc *CycleUseCase) RunBillingCycle(ctx context.Context, tenantID string) (int, error) {
	tenant, err := uc.tenantRepo.GetByID(tenantID)
	if err != nil {
		return 0, fmt.Errorf("buscar locadora: %w", err)
	}
	if tenant == nil {
		return 0, domain.ErrNotFound
	}
	if !tenant.HasGatewayConfig() {
		uc.log.Warn().Str("tenant_id", tenantID).Msg("locadora sem configuração de gateway; faturamento pulado")
		return 0, domain.ErrConfigMissing
	}

	today := dateOnly(uc.now())
	cutoff := today.AddDate(0, 0, uc.cfg.LookAheadDays)
	contracts, err := uc.contractRepo.ListDueRecurring(tenantID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("selecionar contratos: %w", err)
	}

	// Token obtido de forma preguiçosa: só na primeira cobrança, e uma única
	// tentativa por execução. Falha de token conta como indisponibilidade do
	// gateway para todos os contratos do lote.
	var token *gateway.TokenResponse
	authAttempted := false

	processed := 0
	for _, contract := range contracts {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		dueDate := dateOnly(contract.NextBillingDate).AddDate(0, 0, uc.cfg.DueOffsetDays)

		// Pré-verificação de idempotência: se uma execução anterior persistiu
		// a fatura do ciclo mas caiu antes de avançar o contrato, só avança.
		existing, err := uc.invoiceRepo.GetByContractAndDueDate(contract.ID, dueDate)
		if err != nil {
			uc.log.Error().Err(err).Str("contract_id", contract.ID).Msg("falha na pré-verificação de fatura do ciclo")
			continue
		}
		if existing != nil {
			uc.log.Info().Str("contract_id", contract.ID).Str("invoice_id", existing.ID).
				Msg("ciclo já faturado; apenas avançando o contrato")
			if uc.advance(contract) {
				processed++
			}
			continue
		}

		if token == nil && !authAttempted {
			authAttempted = true
			token = uc.fetchToken(ctx, tenant)
		}

		invoice := uc.buildInvoice(tenant, contract, dueDate)
		if token != nil {
			uc.chargeGateway(ctx, tenant, contract, invoice, token.AccessToken)
		}

		// Com ou sem sucesso no gateway, a fatura local é persistida. Se o
		// próprio insert falhar, o contrato não avança — o evento de cobrança
		// não pode se perder em silêncio.
		if err := uc.invoiceRepo.Create(invoice); err != nil {
			if err == domain.ErrDuplicate {
				// Corrida: execução concorrente faturou este ciclo e é dela a
				// responsabilidade de avançar o contrato.
				uc.log.Warn().Str("contract_id", contract.ID).Msg("fatura do ciclo inserida por execução concorrente")
				continue
			}
			uc.log.Error().Err(err).Str("contract_id", contract.ID).Msg("falha ao persistir fatura; contrato não avançado")
			continue
		}

		if uc.advance(contract) {
			processed++
		}
	}

	uc.log.Info().Str("tenant_id", tenantID).
		Int("selected", len(contracts)).Int("processed", processed).
		Msg("ciclo de faturamento concluído")
	return processed, nil
}

// fetchToken autentica no gateway com o material mTLS da locadora; o PEM não
// sobrevive além desta chamada. Falha devolve nil (degrade para fatura local).
func (uc *CycleUseCase) fetchToken(ctx context.Context, tenant *entity.Tenant) *gateway.TokenResponse {
	creds := gateway.Credentials{
		BaseURL:  tenant.GatewayBaseURL,
		ClientID: tenant.GatewayClientID,
		CertPEM:  tenant.GatewayCertPEM,
		KeyPEM:   tenant.GatewayKeyPEM,
	}
	req := "grant_type=client_credentials&client_id=" + tenant.GatewayClientID
	token, raw, err := uc.auth.GetAccessToken(ctx, creds)
	if err != nil {
		uc.sink.Failure(tenant.ID, entity.LogServiceGateway, "token", req, raw, err.Error())
		uc.log.Error().Err(err).Str("tenant_id", tenant.ID).Msg("falha ao autenticar no gateway; faturas seguirão sem cobrança")
		return nil
	}
	uc.sink.Success(tenant.ID, entity.LogServiceGateway, "token", req, raw)
	return token
}

// buildInvoice monta a fatura pendente do ciclo. A referência é única por
// construção (timestamp + sufixo do contrato) para não colidir entre
// execuções concorrentes de locadoras diferentes.
func (uc *CycleUseCase) buildInvoice(tenant *entity.Tenant, contract *entity.Contract, dueDate time.Time) *entity.Invoice {
	now := uc.now()
	method := gateway.MethodBoleto
	if tenant.PixEnabled {
		method = gateway.MethodPix
	}
	return &entity.Invoice{
		ID:            uuid.New().String(),
		TenantID:      tenant.ID,
		ContractID:    contract.ID,
		CustomerID:    contract.CustomerID,
		Reference:     fmt.Sprintf("LF%s-%s", now.Format("20060102150405"), contractSuffix(contract.ID)),
		Amount:        contract.MonthlyAmount,
		DueDate:       dueDate,
		Status:        entity.InvoiceStatusPending,
		PaymentMethod: method,
		BillingKind:   entity.BillingKindRecurring,
		AttemptCount:  1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// chargeGateway tenta criar a cobrança e anexa os campos devolvidos à fatura.
// Qualquer falha (pagador ausente, erro HTTP) degrada para fatura só local.
func (uc *CycleUseCase) chargeGateway(ctx context.Context, tenant *entity.Tenant, contract *entity.Contract, invoice *entity.Invoice, accessToken string) {
	payer, err := uc.customerRepo.GetByID(contract.CustomerID)
	if err != nil || payer == nil {
		uc.log.Warn().Str("contract_id", contract.ID).Str("customer_id", contract.CustomerID).
			Msg("pagador não encontrado; fatura seguirá sem cobrança no gateway")
		return
	}

	// Centavos por arredondamento half-up; o gateway só aceita inteiros.
	cents := invoice.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	req := gateway.ChargeRequest{
		Reference:     invoice.Reference,
		AmountCents:   cents,
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		PaymentMethod: invoice.PaymentMethod,
		PayerName:     brdoc.RemoveAccents(payer.Name),
		PayerTaxID:    payer.TaxID,
		PayerEmail:    payer.Email,
	}
	reqJSON, _ := json.Marshal(req)

	resp, raw, err := uc.charges.CreateCharge(ctx, tenant.GatewayBaseURL, accessToken, req)
	if err != nil {
		uc.sink.Failure(tenant.ID, entity.LogServiceGateway, "create-charge", string(reqJSON), raw, err.Error())
		uc.log.Error().Err(err).Str("contract_id", contract.ID).
			Msg("gateway indisponível; fatura persistida apenas localmente")
		return
	}
	uc.sink.Success(tenant.ID, entity.LogServiceGateway, "create-charge", string(reqJSON), raw)

	invoice.GatewayChargeID = resp.ChargeID
	invoice.Barcode = resp.Barcode
	invoice.PixPayload = resp.PixQRCode
	invoice.PaymentURL = resp.PDFURL
	if resp.PaymentMethod != "" {
		invoice.PaymentMethod = resp.PaymentMethod
	}
}

// advance move o contrato para o próximo ciclo. Só é chamado com a fatura do
// ciclo atual garantida no banco.
func (uc *CycleUseCase) advance(contract *entity.Contract) bool {
	next := dateOnly(contract.NextBillingDate).AddDate(0, 0, uc.cfg.CycleDays)
	if err := uc.contractRepo.Advance(contract.ID, next, uc.now()); err != nil {
		// A fatura existe; a próxima execução cai na pré-verificação e avança.
		uc.log.Error().Err(err).Str("contract_id", contract.ID).Msg("falha ao avançar contrato")
		return false
	}
	return true
}

// contractSuffix últimos 8 caracteres úteis do id do contrato.
func contractSuffix(id string) string {
	clean := strings.ReplaceAll(id, "-", "")
	if len(clean) <= 8 {
		return clean
	}
	return clean[len(clean)-8:]
}

// dateOnly zera o horário preservando a data em UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
