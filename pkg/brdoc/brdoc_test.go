package brdoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locafleet/locafleet-api/pkg/brdoc"
)

func TestDigits_RemoveMascara(t *testing.T) {
	assert.Equal(t, "12345678000190", brdoc.Digits("12.345.678/0001-90"))
	assert.Equal(t, "12345678901", brdoc.Digits("123.456.789-01"))
	assert.Equal(t, "", brdoc.Digits("sem digitos"))
	assert.Equal(t, "", brdoc.Digits(""))
}

func TestKind_ClassificaPorComprimento(t *testing.T) {
	assert.Equal(t, brdoc.KindCPF, brdoc.Kind("123.456.789-01"))
	assert.Equal(t, brdoc.KindCNPJ, brdoc.Kind("12.345.678/0001-90"))
	assert.Equal(t, brdoc.KindUnknown, brdoc.Kind("1234"))
	assert.Equal(t, brdoc.KindUnknown, brdoc.Kind(""))
}

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "Joao Conceicao", brdoc.RemoveAccents("João Conceição"))
	assert.Equal(t, "Locadora Sao Jose Ltda", brdoc.RemoveAccents("Locadora São José Ltda"))
	// Sem acentos passa intacto.
	assert.Equal(t, "ABC Rent a Car", brdoc.RemoveAccents("ABC Rent a Car"))
}
