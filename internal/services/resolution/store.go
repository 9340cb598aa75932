package resolution

import (
	"errors"
	"fmt"
	"sort"

	"eiti-matching-backend/internal/services/matching"
)

// State tracks how far a record has travelled through reconciliation for one
// entity type.
type State string

const (
	// StateExact means the exact matcher resolved the record; authoritative.
	StateExact State = "exact"
	// StateProposed means a fuzzy suggestion is pending an operator decision.
	StateProposed State = "proposed"
	// StateAccepted means the operator accepted a reference (the suggestion
	// or an override).
	StateAccepted State = "accepted"
	// StateRejected means the operator declined all suggestions; the record
	// is unresolved until an identifier is minted.
	StateRejected State = "rejected"
	// StateMinted means a fresh identifier was assigned.
	StateMinted State = "minted"
)

var (
	// ErrAlreadyResolved guards exact and minted identifiers from being
	// overwritten.
	ErrAlreadyResolved = errors.New("record already resolved")
	// ErrUnknownRecord is returned for a decision on a record the store has
	// never seen.
	ErrUnknownRecord = errors.New("unknown record")
)

// Decision is the per-record, per-entity-type resolution state. EITIID is
// empty until the record resolves.
type Decision struct {
	State      State
	EITIID     string
	Suggestion *matching.Suggestion
}

type key struct {
	record int
	entity matching.EntityType
}

// Store holds resolution decisions keyed by record index and entity type.
// The only mutable state that survives the reconciliation step; decisions
// may arrive in any order and each record is independently resolvable.
type Store struct {
	decisions map[key]*Decision
}

func NewStore() *Store {
	return &Store{decisions: make(map[key]*Decision)}
}

// MarkExact records an authoritative exact match.
func (s *Store) MarkExact(record int, entity matching.EntityType, id string) {
	s.decisions[key{record, entity}] = &Decision{State: StateExact, EITIID: id}
}

// Propose attaches a pending fuzzy suggestion. The record stays unresolved
// until Decide is called.
func (s *Store) Propose(record int, entity matching.EntityType, sug matching.Suggestion) {
	s.decisions[key{record, entity}] = &Decision{State: StateProposed, Suggestion: &sug}
}

// MarkPending registers an unmatched record with no suggestion (empty
// candidate pool). It proceeds straight to a minted identifier unless an
// operator decides otherwise.
func (s *Store) MarkPending(record int, entity matching.EntityType) {
	s.decisions[key{record, entity}] = &Decision{State: StateRejected}
}

// Decide records the operator's call: a non-nil reference accepts it (the
// fuzzy suggestion or any other registry entry), nil declines all
// suggestions. An operator may change a pending or rejected decision, but
// exact and minted identifiers are final.
func (s *Store) Decide(record int, entity matching.EntityType, ref *matching.Reference) error {
	d, ok := s.decisions[key{record, entity}]
	if !ok {
		return fmt.Errorf("%w: record %d (%s)", ErrUnknownRecord, record, entity)
	}
	switch d.State {
	case StateExact, StateMinted:
		return fmt.Errorf("%w: record %d (%s) is %s", ErrAlreadyResolved, record, entity, d.State)
	}
	if ref == nil {
		d.State = StateRejected
		d.EITIID = ""
		return nil
	}
	d.State = StateAccepted
	d.EITIID = ref.EITIID
	return nil
}

// IsResolved reports whether the record carries an identifier.
func (s *Store) IsResolved(record int, entity matching.EntityType) bool {
	_, ok := s.IdentifierOf(record, entity)
	return ok
}

// IdentifierOf returns the resolved identifier, if any.
func (s *Store) IdentifierOf(record int, entity matching.EntityType) (string, bool) {
	d, ok := s.decisions[key{record, entity}]
	if !ok || d.EITIID == "" {
		return "", false
	}
	return d.EITIID, true
}

// Lookup returns the decision for inspection, if present.
func (s *Store) Lookup(record int, entity matching.EntityType) (Decision, bool) {
	d, ok := s.decisions[key{record, entity}]
	if !ok {
		return Decision{}, false
	}
	return *d, true
}

// Unresolved lists record indexes still without an identifier for the given
// entity type, in ascending order.
func (s *Store) Unresolved(entity matching.EntityType) []int {
	var out []int
	for k, d := range s.decisions {
		if k.entity == entity && d.EITIID == "" {
			out = append(out, k.record)
		}
	}
	sort.Ints(out)
	return out
}
