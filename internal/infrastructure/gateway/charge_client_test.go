package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
)

func TestCreateCharge_Sucesso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/charges", r.URL.Path)
		require.Equal(t, "Bearer at-999", r.Header.Get("Authorization"))

		var in gateway.ChargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, int64(129990), in.AmountCents)
		assert.Equal(t, "2026-09-15", in.DueDate)
		assert.Equal(t, gateway.MethodBoleto, in.PaymentMethod)

		_ = json.NewEncoder(w).Encode(gateway.ChargeResponse{
			ChargeID: "ch-1", Barcode: "23790...", PaymentMethod: gateway.MethodBoleto,
		})
	}))
	defer srv.Close()

	client := gateway.NewChargeClient(5 * time.Second)
	resp, raw, err := client.CreateCharge(context.Background(), srv.URL, "at-999", gateway.ChargeRequest{
		Reference:     "LF20260901-abc",
		AmountCents:   129990,
		DueDate:       "2026-09-15",
		PaymentMethod: gateway.MethodBoleto,
		PayerName:     "Joao Silva",
		PayerTaxID:    "12345678901",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch-1", resp.ChargeID)
	assert.NotEmpty(t, raw)
}

func TestCreateCharge_GatewayFora(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := gateway.NewChargeClient(5 * time.Second)
	_, _, err := client.CreateCharge(context.Background(), srv.URL, "at-999", gateway.ChargeRequest{})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
