package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
)

// plainFactory injeta um http.Client sem mTLS (o servidor de teste é http puro).
func plainFactory(gateway.Credentials) (*http.Client, error) {
	return &http.Client{Timeout: 5 * time.Second}, nil
}

func testCreds(baseURL string) gateway.Credentials {
	return gateway.Credentials{
		BaseURL:  baseURL,
		ClientID: "client-abc",
		CertPEM:  []byte("irrelevante"),
		KeyPEM:   []byte("irrelevante"),
	}
}

const tokenJSON = `{"access_token": "at-999", "token_type": "Bearer", "expires_in": 3600}`

// ──────────────────────────────────────────────────────────────────────────────
// Caminho feliz e fallback de path
// ──────────────────────────────────────────────────────────────────────────────

func TestGetAccessToken_PathRaiz(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-abc", r.PostForm.Get("client_id"))
		_, _ = w.Write([]byte(tokenJSON))
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	tok, raw, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "at-999", tok.AccessToken)
	assert.Equal(t, 3600, tok.ExpiresIn)
	assert.Contains(t, raw, "at-999", "corpo cru preservado para a trilha")
}

// Gateways atrás de proxy respondem 404 em /token; o endpoint real vive em /oauth2/token.
func TestGetAccessToken_FallbackPor404(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(tokenJSON))
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	tok, _, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "at-999", tok.AccessToken)
	assert.Equal(t, []string{"/token", "/oauth2/token"}, paths)
}

// Algumas instalações respondem 200 com o marcador no corpo em vez de 404.
func TestGetAccessToken_FallbackPorMarcador(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			_, _ = w.Write([]byte(`No context-path configured for this request`))
			return
		}
		_, _ = w.Write([]byte(tokenJSON))
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	tok, _, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "at-999", tok.AccessToken)
}

// O fallback é único: se /oauth2/token também falhar, a chamada é terminal.
func TestGetAccessToken_FallbackUnico(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	_, _, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int32(2), calls.Load(), "exatamente uma tentativa de fallback")
}

// ──────────────────────────────────────────────────────────────────────────────
// Falhas terminais
// ──────────────────────────────────────────────────────────────────────────────

// 500 não dispara fallback: só 404 ou o marcador indicam path errado.
func TestGetAccessToken_ErroTerminalSemFallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	_, _, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetAccessToken_RespostaNaoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer srv.Close()

	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	_, raw, err := client.GetAccessToken(context.Background(), testCreds(srv.URL))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Contains(t, raw, "proxy error", "corpo cru devolvido mesmo em falha")
}

func TestGetAccessToken_ConfigIncompleta(t *testing.T) {
	client := gateway.NewAuthClientWithHTTP(5*time.Second, plainFactory)
	_, _, err := client.GetAccessToken(context.Background(), gateway.Credentials{})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

// ──────────────────────────────────────────────────────────────────────────────
// Material mTLS
// ──────────────────────────────────────────────────────────────────────────────

// PEM inválido falha antes de qualquer chamada de rede.
func TestGetAccessToken_PEMInvalido(t *testing.T) {
	client := gateway.NewAuthClient(5 * time.Second)
	_, _, err := client.GetAccessToken(context.Background(), gateway.Credentials{
		BaseURL:  "https://gateway.invalido.example",
		ClientID: "client-abc",
		CertPEM:  []byte("nao é um certificado"),
		KeyPEM:   []byte("nem uma chave"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificado")
}

// Par cert/chave válido monta o transporte; contra um endpoint http puro a
// chamada flui normalmente (o TLS só é negociado em https).
func TestGetAccessToken_KeypairValido(t *testing.T) {
	certPEM, err := os.ReadFile("testdata/client.crt")
	require.NoError(t, err)
	keyPEM, err := os.ReadFile("testdata/client.key")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tokenJSON))
	}))
	defer srv.Close()

	client := gateway.NewAuthClient(5 * time.Second)
	tok, _, err := client.GetAccessToken(context.Background(), gateway.Credentials{
		BaseURL:  srv.URL,
		ClientID: "client-abc",
		CertPEM:  certPEM,
		KeyPEM:   keyPEM,
	})
	require.NoError(t, err)
	assert.Equal(t, "at-999", tok.AccessToken)
}
