package matching

import (
	"eiti-matching-backend/internal/services/normalize"
)

// Ambiguity records a duplicate normalized name in the registry. The first
// reference encountered keeps the match; the collision is surfaced so callers
// can log it for audit.
type Ambiguity struct {
	Name      string
	KeptID    string
	DroppedID string
}

// ExactResult partitions record indexes into matched and unmatched.
type ExactResult struct {
	// Matched maps record index to the matched reference.
	Matched map[int]Reference
	// Unmatched holds record indexes with no exact counterpart, in input order.
	Unmatched []int
	// Ambiguities lists duplicate registry names hit while building the index.
	Ambiguities []Ambiguity
}

// MatchExact joins the given raw names against the registry on normalized
// name. A match is authoritative: matched records skip fuzzy matching
// entirely. Duplicate normalized names in the registry resolve to the first
// reference in registry order.
func MatchExact(names []string, pool Registry) ExactResult {
	index := make(map[string]Reference, len(pool))
	var ambiguities []Ambiguity
	for _, ref := range pool {
		key := normalize.Name(ref.Name)
		if kept, ok := index[key]; ok {
			if kept.EITIID != ref.EITIID {
				ambiguities = append(ambiguities, Ambiguity{Name: key, KeptID: kept.EITIID, DroppedID: ref.EITIID})
			}
			continue
		}
		index[key] = ref
	}

	res := ExactResult{
		Matched:     make(map[int]Reference),
		Ambiguities: ambiguities,
	}
	for i, name := range names {
		if ref, ok := index[normalize.Name(name)]; ok {
			res.Matched[i] = ref
		} else {
			res.Unmatched = append(res.Unmatched, i)
		}
	}
	return res
}
