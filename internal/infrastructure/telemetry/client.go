package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/locafleet/locafleet-api/internal/domain"
)

// Client cliente HTTP do provedor de telemetria. Usa retryablehttp com backoff
// porque o provedor é instável (5xx e quedas de rede intermitentes); cada
// método devolve também o corpo cru da resposta para a trilha de integração.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient constrói o cliente. retryMax limita as retentativas por chamada.
func NewClient(baseURL string, timeout time.Duration, retryMax int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil // o chamador loga via trilha de integração
	return &Client{baseURL: baseURL, http: rc}
}

// Login autentica no provedor e devolve o bearer token.
// POST {base}/login com {"user": ..., "password": ...}.
func (c *Client) Login(ctx context.Context, user, password string) (token, raw string, err error) {
	payload, _ := json.Marshal(map[string]string{"user": user, "password": password})
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/login", "", payload)
	if err != nil {
		return "", string(body), err
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return "", string(body), fmt.Errorf("login: %w: %v", domain.ErrMalformedResponse, err)
	}
	token = firstString(m, tokenKeys...)
	if token == "" {
		return "", string(body), fmt.Errorf("login: %w: resposta sem token", domain.ErrMalformedResponse)
	}
	return token, string(body), nil
}

// ListCustomers busca a lista completa de clientes (uma página = conjunto todo).
func (c *Client) ListCustomers(ctx context.Context, token string) ([]CustomerRecord, string, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/customers-list", token, nil)
	if err != nil {
		return nil, string(body), err
	}
	items, err := decodeArray(body)
	if err != nil {
		return nil, string(body), fmt.Errorf("customers-list: %w", err)
	}
	out := make([]CustomerRecord, 0, len(items))
	for _, m := range items {
		out = append(out, DecodeCustomer(m))
	}
	return out, string(body), nil
}

// ListVehicles busca a lista completa de veículos da frota.
func (c *Client) ListVehicles(ctx context.Context, token, fleetRef string) ([]VehicleRecord, string, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/vehicles/"+fleetRef, token, nil)
	if err != nil {
		return nil, string(body), err
	}
	items, err := decodeArray(body)
	if err != nil {
		return nil, string(body), fmt.Errorf("vehicles: %w", err)
	}
	out := make([]VehicleRecord, 0, len(items))
	for _, m := range items {
		out = append(out, DecodeVehicle(m))
	}
	return out, string(body), nil
}

// VehiclePosition busca a posição pontual de um veículo.
func (c *Client) VehiclePosition(ctx context.Context, token, providerID string) (*Position, string, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/vehicle/"+providerID, token, nil)
	if err != nil {
		return nil, string(body), err
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, string(body), fmt.Errorf("vehicle position: %w: %v", domain.ErrMalformedResponse, err)
	}
	lat, okLat := firstFloat(m, positionLatitudeKeys...)
	lon, okLon := firstFloat(m, positionLongitudeKeys...)
	if !okLat || !okLon {
		return nil, string(body), fmt.Errorf("vehicle position: %w: sem coordenadas", domain.ErrMalformedResponse)
	}
	return &Position{Latitude: lat, Longitude: lon}, string(body), nil
}

// do executa a chamada com retentativa e devolve o corpo (limitado a 4 MB).
func (c *Client) do(ctx context.Context, method, url, token string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("criar request: %w", err)
	}
	req = req.WithContext(ctx)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("ler resposta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return body, fmt.Errorf("%w: HTTP %d", domain.ErrUnauthorized, resp.StatusCode)
		}
		return body, fmt.Errorf("%w: HTTP %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	return body, nil
}

// decodeArray aceita tanto um array JSON puro quanto o envelope {"data": [...]}
// que algumas instalações do provedor devolvem.
func decodeArray(body []byte) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	return nil, domain.ErrMalformedResponse
}
