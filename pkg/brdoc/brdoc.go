// Package brdoc normaliza documentos fiscais brasileiros (CPF/CNPJ) e texto
// vindo de provedores externos. O provedor de telemetria devolve documentos
// com máscara ("12.345.678/0001-90") e nomes acentuados que alguns gateways
// de cobrança rejeitam no payload do pagador.
package brdoc

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tipos de documento fiscal.
const (
	KindCPF     = "cpf"
	KindCNPJ    = "cnpj"
	KindUnknown = "unknown"
)

// Digits remove tudo que não for dígito. "12.345.678/0001-90" -> "12345678000190".
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Kind classifica o documento pelo comprimento (já normalizado por Digits):
// 11 dígitos = CPF, 14 = CNPJ. Não valida dígitos verificadores — a identidade
// dos registros importados vem do external_id do provedor, nunca do documento.
func Kind(s string) string {
	switch len(Digits(s)) {
	case 11:
		return KindCPF
	case 14:
		return KindCNPJ
	default:
		return KindUnknown
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveAccents converte "João Conceição" em "Joao Conceicao".
// Se a transformação falhar, devolve a string original.
func RemoveAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
