package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eiti-matching-backend/internal/services/matching"
)

func TestStoreExactIsFinal(t *testing.T) {
	s := NewStore()
	s.MarkExact(0, matching.EntityCompany, "A1")

	assert.True(t, s.IsResolved(0, matching.EntityCompany))
	id, ok := s.IdentifierOf(0, matching.EntityCompany)
	require.True(t, ok)
	assert.Equal(t, "A1", id)

	err := s.Decide(0, matching.EntityCompany, &matching.Reference{EITIID: "B2"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	id, _ = s.IdentifierOf(0, matching.EntityCompany)
	assert.Equal(t, "A1", id)
}

func TestStoreProposeDoesNotResolve(t *testing.T) {
	s := NewStore()
	s.Propose(3, matching.EntityGovernment, matching.Suggestion{
		Reference: matching.Reference{EITIID: "G7", Name: "MINISTRY OF MINES"},
		Score:     91,
	})

	assert.False(t, s.IsResolved(3, matching.EntityGovernment))
	d, ok := s.Lookup(3, matching.EntityGovernment)
	require.True(t, ok)
	assert.Equal(t, StateProposed, d.State)
	require.NotNil(t, d.Suggestion)
	assert.Equal(t, "G7", d.Suggestion.Reference.EITIID)
}

func TestStoreDecideAccept(t *testing.T) {
	s := NewStore()
	s.Propose(1, matching.EntityCompany, matching.Suggestion{
		Reference: matching.Reference{EITIID: "B2"}, Score: 88,
	})

	// operator may accept any reference, not just the suggestion
	require.NoError(t, s.Decide(1, matching.EntityCompany, &matching.Reference{EITIID: "C3"}))

	id, ok := s.IdentifierOf(1, matching.EntityCompany)
	require.True(t, ok)
	assert.Equal(t, "C3", id)
}

func TestStoreDecideReject(t *testing.T) {
	s := NewStore()
	s.Propose(1, matching.EntityCompany, matching.Suggestion{
		Reference: matching.Reference{EITIID: "B2"}, Score: 88,
	})

	require.NoError(t, s.Decide(1, matching.EntityCompany, nil))

	assert.False(t, s.IsResolved(1, matching.EntityCompany))
	d, _ := s.Lookup(1, matching.EntityCompany)
	assert.Equal(t, StateRejected, d.State)

	// a rejected decision may still be revisited before identifiers are minted
	require.NoError(t, s.Decide(1, matching.EntityCompany, &matching.Reference{EITIID: "B2"}))
	id, _ := s.IdentifierOf(1, matching.EntityCompany)
	assert.Equal(t, "B2", id)
}

func TestStoreDecideUnknownRecord(t *testing.T) {
	s := NewStore()
	err := s.Decide(9, matching.EntityCompany, nil)
	assert.ErrorIs(t, err, ErrUnknownRecord)
}

func TestStoreUnresolved(t *testing.T) {
	s := NewStore()
	s.MarkExact(0, matching.EntityCompany, "A1")
	s.Propose(2, matching.EntityCompany, matching.Suggestion{Reference: matching.Reference{EITIID: "B2"}, Score: 40})
	s.MarkPending(1, matching.EntityCompany)
	s.MarkPending(5, matching.EntityGovernment)

	assert.Equal(t, []int{1, 2}, s.Unresolved(matching.EntityCompany))
	assert.Equal(t, []int{5}, s.Unresolved(matching.EntityGovernment))
}
