package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestTypo(t *testing.T) {
	pool := Registry{
		{EITIID: "B2", Name: "GLOBAL MINING LTD"},
		{EITIID: "C3", Name: "COASTAL DRILLING SA"},
	}

	sug, ok := Suggest("Global Minning Ltd", pool)

	require.True(t, ok)
	assert.Equal(t, "B2", sug.Reference.EITIID)
	assert.Greater(t, sug.Score, 85.0)
}

func TestSuggestDeterministic(t *testing.T) {
	pool := Registry{
		{EITIID: "A1", Name: "NORTHERN OIL CO"},
		{EITIID: "B2", Name: "SOUTHERN OIL CO"},
		{EITIID: "C3", Name: "EASTERN GAS CO"},
	}

	first, ok := Suggest("Nothern Oil Co", pool)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := Suggest("Nothern Oil Co", pool)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestSuggestTieBreaksFirst(t *testing.T) {
	// both candidates are one edit away; pool order decides
	pool := Registry{
		{EITIID: "A1", Name: "MINE A"},
		{EITIID: "B2", Name: "MINE C"},
	}

	sug, ok := Suggest("MINE B", pool)

	require.True(t, ok)
	assert.Equal(t, "A1", sug.Reference.EITIID)
}

func TestSuggestEmptyPool(t *testing.T) {
	_, ok := Suggest("Anything", nil)
	assert.False(t, ok)
}

func TestSuggestLowScoreStillSurfaced(t *testing.T) {
	pool := Registry{{EITIID: "Z9", Name: "COMPLETELY UNRELATED REGISTRY ENTRY"}}

	sug, ok := Suggest("Acme", pool)

	require.True(t, ok)
	assert.Equal(t, "Z9", sug.Reference.EITIID)
	assert.Less(t, sug.Score, 50.0)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("ACME", "ACME"))
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("ABCD", "WXYZ"))
	assert.InDelta(t, 75.0, Ratio("ACME", "ACMX"), 0.01)
}
