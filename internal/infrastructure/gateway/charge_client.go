package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/locafleet/locafleet-api/internal/domain"
)

// Métodos de pagamento aceitos pelo gateway.
const (
	MethodPix    = "pix"
	MethodBoleto = "boleto"
)

// ChargeRequest payload de criação de cobrança. Amount em centavos.
type ChargeRequest struct {
	Reference     string `json:"reference"`
	AmountCents   int64  `json:"amount"`
	DueDate       string `json:"due_date"` // AAAA-MM-DD
	PaymentMethod string `json:"payment_method"`
	PayerName     string `json:"payer_name"`
	PayerTaxID    string `json:"payer_tax_id"`
	PayerEmail    string `json:"payer_email"`
}

// ChargeResponse cobrança criada no gateway.
type ChargeResponse struct {
	ChargeID      string `json:"charge_id"`
	Barcode       string `json:"barcode"`
	PixQRCode     string `json:"pix_qr_code"`
	PDFURL        string `json:"pdf_url"`
	PaymentMethod string `json:"payment_method"`
}

// ChargeClient cria cobranças no gateway com bearer token.
type ChargeClient struct {
	http *http.Client
}

// NewChargeClient constrói o cliente de cobranças.
func NewChargeClient(timeout time.Duration) *ChargeClient {
	return &ChargeClient{http: &http.Client{Timeout: timeout}}
}

// CreateCharge faz POST {base}/charges. Devolve também o corpo cru para a
// trilha de integração.
func (c *ChargeClient) CreateCharge(ctx context.Context, baseURL, accessToken string, in ChargeRequest) (*ChargeResponse, string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("charge: serializar payload: %w", err)
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/charges"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("charge: criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("charge: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("charge: ler resposta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, string(body), fmt.Errorf("charge: %w: HTTP %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var out ChargeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, string(body), fmt.Errorf("charge: %w: %v", domain.ErrMalformedResponse, err)
	}
	return &out, string(body), nil
}
