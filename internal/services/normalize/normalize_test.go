package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Société Générale", "SOCIETE GENERALE"},
		{"SOCIETE GENERALE", "SOCIETE GENERALE"},
		{"Pétrole du Tchad", "PETROLE DU TCHAD"},
		{"  Acme Corp ", "ACME CORP"},
		{"Española", "ESPANOLA"},
		{"Ngā Mōrehu", "NGA MOREHU"},
		{"", ""},
		// punctuation and abbreviations are deliberately untouched
		{"Acme Corp.", "ACME CORP."},
		{"Acme-Corp", "ACME-CORP"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Name(c.in), "input %q", c.in)
	}
}

func TestNameIdempotent(t *testing.T) {
	inputs := []string{"Société Générale", "Pérou Minéraux S.A.", "plain name", "ÀÉÎÕÜ"}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "input %q", in)
	}
}

func TestNameAccentCaseEquivalence(t *testing.T) {
	assert.Equal(t, Name("Société"), Name("SOCIETE"))
	assert.Equal(t, Name("pétrole"), Name("PÉTROLE"))
}
