package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchExact(t *testing.T) {
	pool := Registry{
		{EITIID: "A1", Name: "ACME CORP", Country: "Peru"},
		{EITIID: "B2", Name: "GLOBAL MINING LTD", Country: "Peru"},
	}

	res := MatchExact([]string{"Acme Corp", "Unknown Mining", "GLOBAL MINING LTD"}, pool)

	require.Len(t, res.Matched, 2)
	assert.Equal(t, "A1", res.Matched[0].EITIID)
	assert.Equal(t, "B2", res.Matched[2].EITIID)
	assert.Equal(t, []int{1}, res.Unmatched)
	assert.Empty(t, res.Ambiguities)
}

func TestMatchExactAccentInsensitive(t *testing.T) {
	pool := Registry{{EITIID: "S1", Name: "Société Générale"}}

	res := MatchExact([]string{"SOCIETE GENERALE"}, pool)

	require.Len(t, res.Matched, 1)
	assert.Equal(t, "S1", res.Matched[0].EITIID)
}

func TestMatchExactDuplicateRegistryNames(t *testing.T) {
	// two registry rows normalize to the same name: first in wins
	pool := Registry{
		{EITIID: "A1", Name: "Pétrole du Tchad"},
		{EITIID: "A2", Name: "PETROLE DU TCHAD"},
	}

	res := MatchExact([]string{"Petrole du Tchad"}, pool)

	require.Len(t, res.Matched, 1)
	assert.Equal(t, "A1", res.Matched[0].EITIID)
	require.Len(t, res.Ambiguities, 1)
	assert.Equal(t, "PETROLE DU TCHAD", res.Ambiguities[0].Name)
	assert.Equal(t, "A1", res.Ambiguities[0].KeptID)
	assert.Equal(t, "A2", res.Ambiguities[0].DroppedID)
}

func TestMatchExactEmptyPool(t *testing.T) {
	res := MatchExact([]string{"Anything"}, nil)

	assert.Empty(t, res.Matched)
	assert.Equal(t, []int{0}, res.Unmatched)
}
