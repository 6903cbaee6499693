package domain

import "errors"

// Erros de domínio (sem dependências externas).
//
// ErrDuplicate cobre a violação de unicidade no insert: sob corrida entre
// execuções concorrentes é o guarda real de idempotência, não uma falha.
var (
	ErrNotFound            = errors.New("recurso não encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("não autorizado")
	ErrConfigMissing       = errors.New("locadora sem configuração de integração")
	ErrProviderUnavailable = errors.New("provedor externo indisponível")
	ErrMalformedResponse   = errors.New("resposta externa malformada")
)
