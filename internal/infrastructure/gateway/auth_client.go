// Package gateway implementa o cliente do gateway de cobrança: obtenção de
// token OAuth2 client-credentials sobre mTLS e criação de cobranças (boleto
// ou PIX).
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/locafleet/locafleet-api/internal/domain"
)

// Credentials material mTLS de uma locadora. Os PEMs vivem apenas em memória
// durante a chamada; nada é gravado em disco.
type Credentials struct {
	BaseURL  string
	ClientID string
	CertPEM  []byte
	KeyPEM   []byte
}

// TokenResponse resposta do endpoint de token, devolvida ao chamador como veio.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Marcador devolvido por gateways atrás de proxy quando o endpoint de token
// vive sob /oauth2 em vez da raiz.
const noContextPathMarker = "No context-path"

// AuthClient obtém tokens de acesso do gateway via client-credentials + mTLS.
type AuthClient struct {
	timeout time.Duration

	// newHTTPClient permite injetar um cliente sem mTLS nos testes.
	newHTTPClient func(creds Credentials) (*http.Client, error)
}

// NewAuthClient constrói o cliente de autenticação.
func NewAuthClient(timeout time.Duration) *AuthClient {
	c := &AuthClient{timeout: timeout}
	c.newHTTPClient = c.mtlsHTTPClient
	return c
}

// NewAuthClientWithHTTP constrói o cliente com factory de http.Client custom
// (testes; em produção sempre mTLS).
func NewAuthClientWithHTTP(timeout time.Duration, factory func(Credentials) (*http.Client, error)) *AuthClient {
	return &AuthClient{timeout: timeout, newHTTPClient: factory}
}

// GetAccessToken faz o grant client_credentials em {base}/token. Se o gateway
// responder 404 ou o corpo trouxer o marcador "No context-path", tenta uma
// única vez {base}/oauth2/token com o mesmo corpo. Qualquer outro não-2xx, ou
// corpo não-JSON, é falha terminal desta chamada.
//
// Devolve também o corpo cru para a trilha de integração.
func (c *AuthClient) GetAccessToken(ctx context.Context, creds Credentials) (*TokenResponse, string, error) {
	if creds.BaseURL == "" || creds.ClientID == "" {
		return nil, "", fmt.Errorf("token: %w", domain.ErrConfigMissing)
	}
	httpClient, err := c.newHTTPClient(creds)
	if err != nil {
		return nil, "", fmt.Errorf("token: %w", err)
	}

	base := strings.TrimRight(creds.BaseURL, "/")
	status, body, err := c.post(ctx, httpClient, base+"/token", creds.ClientID)
	if err != nil {
		return nil, string(body), err
	}
	if status == http.StatusNotFound || strings.Contains(string(body), noContextPathMarker) {
		// Fallback único: mesmo corpo contra o path com contexto.
		status, body, err = c.post(ctx, httpClient, base+"/oauth2/token", creds.ClientID)
		if err != nil {
			return nil, string(body), err
		}
	}
	if status < 200 || status > 299 {
		return nil, string(body), fmt.Errorf("token: %w: HTTP %d", domain.ErrUnauthorized, status)
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, string(body), fmt.Errorf("token: %w: %v", domain.ErrMalformedResponse, err)
	}
	if tok.AccessToken == "" {
		return nil, string(body), fmt.Errorf("token: %w: resposta sem access_token", domain.ErrMalformedResponse)
	}
	return &tok, string(body), nil
}

// post envia o form client_credentials e devolve status e corpo.
func (c *AuthClient) post(ctx context.Context, httpClient *http.Client, endpoint, clientID string) (int, []byte, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("token: criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("token: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("token: ler resposta: %w", err)
	}
	return resp.StatusCode, body, nil
}

// mtlsHTTPClient monta o http.Client com o certificado do cliente. A validação
// do certificado do servidor permanece habilitada — nunca InsecureSkipVerify.
func (c *AuthClient) mtlsHTTPClient(creds Credentials) (*http.Client, error) {
	cert, err := tls.X509KeyPair(creds.CertPEM, creds.KeyPEM)
	if err != nil {
		return nil, fmt.Errorf("carregar certificado mTLS: %w", err)
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}
	return &http.Client{Timeout: c.timeout, Transport: transport}, nil
}
