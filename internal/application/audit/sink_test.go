package audit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

type fakeLogRepo struct {
	entries   []*entity.IntegrationLog
	createErr error
}

func (r *fakeLogRepo) Create(e *entity.IntegrationLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeLogRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.IntegrationLog, error) {
	return r.entries, nil
}

func TestSink_RegistraSucesso(t *testing.T) {
	repo := &fakeLogRepo{}
	sink := audit.NewSink(repo, logger.Nop())

	sink.Success("t-1", entity.LogServiceTelemetry, "login", "user=aurora", `{"token": "x"}`)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, entity.LogStatusSuccess, e.Status)
	assert.Equal(t, "login", e.Operation)
	assert.Empty(t, e.ErrorMessage)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestSink_RegistraFalhaComMensagem(t *testing.T) {
	repo := &fakeLogRepo{}
	sink := audit.NewSink(repo, logger.Nop())

	sink.Failure("t-1", entity.LogServiceGateway, "token", "grant_type=client_credentials", "", "HTTP 500")

	require.Len(t, repo.entries, 1)
	assert.Equal(t, entity.LogStatusError, repo.entries[0].Status)
	assert.Equal(t, "HTTP 500", repo.entries[0].ErrorMessage)
}

// A trilha é fire-and-forget: falha ao gravar nunca se propaga ao chamador.
func TestSink_FalhaNaGravacaoNaoPropaga(t *testing.T) {
	repo := &fakeLogRepo{createErr: errors.New("tabela cheia")}
	sink := audit.NewSink(repo, logger.Nop())

	assert.NotPanics(t, func() {
		sink.Success("t-1", entity.LogServiceTelemetry, "login", "", "")
		sink.Failure("t-1", entity.LogServiceTelemetry, "login", "", "", "erro")
	})
	assert.Empty(t, repo.entries)
}

func TestQueryUseCase_AplicaPadroesDePagina(t *testing.T) {
	repo := &fakeLogRepo{entries: []*entity.IntegrationLog{{ID: "l1"}}}
	uc := audit.NewQueryUseCase(repo)

	entries, err := uc.List("t-1", 0, -5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
