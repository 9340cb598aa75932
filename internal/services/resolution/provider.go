package resolution

import (
	"eiti-matching-backend/internal/services/matching"
)

// DecisionProvider supplies the operator decision for one unmatched record.
// suggestion is nil when the candidate pool was empty. Returning a non-nil
// reference accepts it; returning nil declines. The provider decides how the
// decision is obtained (HTTP round trip, CLI prompt, automatic policy), the
// pipeline only cares about the answer.
type DecisionProvider interface {
	Decide(record matching.Record, entity matching.EntityType, suggestion *matching.Suggestion) (*matching.Reference, error)
}

// ThresholdPolicy is an automated provider: it accepts the suggestion when
// its score reaches MinScore and declines otherwise. Useful for
// non-interactive runs and bulk acceptance.
type ThresholdPolicy struct {
	MinScore float64
}

func (p ThresholdPolicy) Decide(_ matching.Record, _ matching.EntityType, suggestion *matching.Suggestion) (*matching.Reference, error) {
	if suggestion == nil || suggestion.Score < p.MinScore {
		return nil, nil
	}
	ref := suggestion.Reference
	return &ref, nil
}

// DeclineAll declines every suggestion; every unmatched record gets a fresh
// identifier. Mirrors the default of the original review flow.
type DeclineAll struct{}

func (DeclineAll) Decide(matching.Record, matching.EntityType, *matching.Suggestion) (*matching.Reference, error) {
	return nil, nil
}
