package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	assert.Equal(t, "maria silva", NameKey("  Maria   Silva "))
	assert.Equal(t, "joao", NameKey("João"))
	assert.Equal(t, "aguardando inicio", NameKey("Aguardando Início"))
	assert.Equal(t, NameKey("Maria Silva"), NameKey("maria silva "))
	assert.Equal(t, "", NameKey("   "))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,56", "1234.56", true},
		{"R$ 8.000,00", "8000", true},
		{"5000", "5000", true},
		{"-10,5", "-10.5", true},
		{"", "0", false},
		{"abc", "0", false},
		{"  ", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	date := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	assert.Equal(t, date(2025, time.January, 10), ParseDate("10/01/2025"))
	assert.Equal(t, date(2025, time.March, 5), ParseDate("5/3/2025"))
	assert.Equal(t, date(2025, time.January, 10), ParseDate("2025-01-10"))
	assert.Equal(t, date(2025, time.January, 10), ParseDate("2025-01-10T15:04:05Z"))
	assert.Equal(t, date(2026, time.January, 1), ParseDate("janeiro/2026"))
	assert.Equal(t, date(2026, time.March, 1), ParseDate("Março/2026"))

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("amanhã"))
	assert.Nil(t, ParseDate("31/02/2025"))
	assert.Nil(t, ParseDate("brumario/2026"))
}

func TestReadRows(t *testing.T) {
	src := "\ufeffNome do Cliente,Telefone / WhatsApp,Observações\n" +
		"\"Silva, Maria\",3899,veio do instagram\n" +
		",,\n" +
		"João,3888\n"

	rows, err := ReadRows(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Silva, Maria", rows[0].Field("Nome do Cliente"))
	assert.Equal(t, "veio do instagram", rows[0].Field("Observações"))
	assert.Equal(t, "João", rows[1].Field("Nome do Cliente", "Nome"))
	assert.Equal(t, "", rows[1].Field("Observações"))
}

func TestRowFieldFallsBackToAlternatives(t *testing.T) {
	row := Row{"Nome do Cliente": "  ", "Nome": " Ana "}
	assert.Equal(t, "Ana", row.Field("Nome do Cliente", "Nome"))
}

func TestTemplate(t *testing.T) {
	for _, kind := range Kinds {
		h, err := Template(kind)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(h, "\n"))
	}

	h, _ := Template(KindFinancial)
	assert.Contains(t, h, "ID PRODUÇÃO")

	_, err := Template("vendas")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
