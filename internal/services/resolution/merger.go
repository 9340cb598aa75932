package resolution

import (
	"errors"
	"fmt"

	"eiti-matching-backend/internal/services/matching"
)

// ErrUnresolvedRecord signals a record left without an identifier after the
// full pipeline. This is an internal invariant violation, not a user input
// error; the pipeline guarantees it cannot happen.
var ErrUnresolvedRecord = errors.New("record unresolved after pipeline")

// ResolvedRecord is the final output row: the original record untouched plus
// one identifier per entity type, both non-empty.
type ResolvedRecord struct {
	matching.Record
	CompanyID    string
	GovernmentID string
}

// ID returns the resolved identifier for the given entity type.
func (r ResolvedRecord) ID(t matching.EntityType) string {
	if t == matching.EntityGovernment {
		return r.GovernmentID
	}
	return r.CompanyID
}

// Merge folds resolved identifiers back into the record set, building a new
// collection rather than mutating the input rows. Every record must carry an
// identifier for every entity type by now; a hole fails the whole merge.
func Merge(records []matching.Record, stores map[matching.EntityType]*Store) ([]ResolvedRecord, error) {
	out := make([]ResolvedRecord, 0, len(records))
	for i, rec := range records {
		resolved := ResolvedRecord{Record: rec}
		for _, entity := range matching.EntityTypes {
			store, ok := stores[entity]
			if !ok {
				return nil, fmt.Errorf("%w: no store for %s", ErrUnresolvedRecord, entity)
			}
			id, ok := store.IdentifierOf(i, entity)
			if !ok {
				return nil, fmt.Errorf("%w: row %d (%s %q)", ErrUnresolvedRecord, i, entity, rec.Name(entity))
			}
			if entity == matching.EntityGovernment {
				resolved.GovernmentID = id
			} else {
				resolved.CompanyID = id
			}
		}
		out = append(out, resolved)
	}
	return out, nil
}
