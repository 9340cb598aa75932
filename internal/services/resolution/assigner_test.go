package resolution

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eiti-matching-backend/internal/services/matching"
)

func TestAssignFresh(t *testing.T) {
	s := NewStore()
	s.MarkExact(0, matching.EntityCompany, "A1")
	s.MarkPending(1, matching.EntityCompany)
	s.MarkPending(2, matching.EntityCompany)

	minted := AssignFresh(s, matching.EntityCompany)

	require.Len(t, minted, 2)
	assert.NotContains(t, minted, 0)

	// minted identifiers are valid uuids and unique within the run
	seen := map[string]bool{}
	for rec, id := range minted {
		_, err := uuid.Parse(id)
		require.NoError(t, err, "record %d", rec)
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true

		got, ok := s.IdentifierOf(rec, matching.EntityCompany)
		require.True(t, ok)
		assert.Equal(t, id, got)
		d, _ := s.Lookup(rec, matching.EntityCompany)
		assert.Equal(t, StateMinted, d.State)
	}

	// the exact match was not overwritten
	id, _ := s.IdentifierOf(0, matching.EntityCompany)
	assert.Equal(t, "A1", id)
}

func TestAssignFreshMintedIsFinal(t *testing.T) {
	s := NewStore()
	s.MarkPending(0, matching.EntityCompany)
	AssignFresh(s, matching.EntityCompany)

	err := s.Decide(0, matching.EntityCompany, &matching.Reference{EITIID: "B2"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestAssignFreshNothingUnresolved(t *testing.T) {
	s := NewStore()
	s.MarkExact(0, matching.EntityCompany, "A1")

	assert.Empty(t, AssignFresh(s, matching.EntityCompany))
}
