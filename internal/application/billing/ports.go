package billing

import (
	"context"

	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
)

// TokenProvider porta de saída para autenticação no gateway (mTLS
// client-credentials). Implementação concreta: gateway.AuthClient.
type TokenProvider interface {
	GetAccessToken(ctx context.Context, creds gateway.Credentials) (*gateway.TokenResponse, string, error)
}

// ChargeCreator porta de saída para criação de cobranças no gateway.
// Implementação concreta: gateway.ChargeClient.
type ChargeCreator interface {
	CreateCharge(ctx context.Context, baseURL, accessToken string, in gateway.ChargeRequest) (*gateway.ChargeResponse, string, error)
}
