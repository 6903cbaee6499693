// Package audit implementa a trilha de integração: um registro append-only
// por chamada a provedor externo, com requisição, resposta e desfecho.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/pkg/logger"
)

// Recorder porta usada pelos jobs. Fire-and-forget: falha ao gravar a trilha
// é preocupação de monitoramento, nunca aborta a operação chamadora.
type Recorder interface {
	Success(tenantID, service, operation, request, response string)
	Failure(tenantID, service, operation, request, response, errMsg string)
}

var _ Recorder = (*Sink)(nil)

// Sink implementação de Recorder sobre o repositório de logs.
type Sink struct {
	repo repository.IntegrationLogRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewSink constrói a trilha.
func NewSink(repo repository.IntegrationLogRepository, log *logger.Logger) *Sink {
	return &Sink{repo: repo, log: log, now: time.Now}
}

// Success registra uma chamada externa bem-sucedida.
func (s *Sink) Success(tenantID, service, operation, request, response string) {
	s.record(tenantID, service, operation, request, response, entity.LogStatusSuccess, "")
}

// Failure registra uma chamada externa com erro.
func (s *Sink) Failure(tenantID, service, operation, request, response, errMsg string) {
	s.record(tenantID, service, operation, request, response, entity.LogStatusError, errMsg)
}

func (s *Sink) record(tenantID, service, operation, request, response, status, errMsg string) {
	entry := &entity.IntegrationLog{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Service:      service,
		Operation:    operation,
		Request:      request,
		Response:     response,
		Status:       status,
		ErrorMessage: errMsg,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(entry); err != nil {
		// Só loga: a trilha nunca derruba o job.
		s.log.Warn().Err(err).
			Str("tenant_id", tenantID).
			Str("service", service).
			Str("operation", operation).
			Msg("falha ao gravar trilha de integração")
	}
}
