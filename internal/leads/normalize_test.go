package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSegment(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"Restaurante Italiano", "Alimentação"},
		{"Pizzaria do Bairro", "Alimentação"},
		{"Academia de Musculação", "Saúde & Fitness"},
		{"Loja de Produtos Naturais", "Saúde & Fitness"},
		{"Clínica Odontológica", "Clínicas & Saúde"},
		{"Consultório Médico", "Clínicas & Saúde"},
		{"Oficina Mecânica", "Automotivo"},
		{"Auto Elétrica Silva", "Automotivo"},
		{"Escritório de Advocacia", "Jurídico"},
		{"Assistência Jurídica", "Jurídico"},
		{"Loja de Roupas", "Varejo & Comércio"},
		{"Comércio de Bebidas", "Varejo & Comércio"},
		{"Pet Shop", "Outros"},
		{"", "Outros"},
		{"   ", "Outros"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, NormalizeSegment(tc.raw), "raw=%q", tc.raw)
	}
}

func TestSegmentsEndsWithCatchAll(t *testing.T) {
	all := Segments()
	assert.Equal(t, SegmentOther, all[len(all)-1])
	assert.Contains(t, all, "Alimentação")
	assert.Contains(t, all, "Automotivo")
}
