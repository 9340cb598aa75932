package resolution

import (
	"fmt"

	"eiti-matching-backend/internal/services/matching"
)

// Report summarizes one pipeline run per entity type.
type Report struct {
	Exact       int
	Accepted    int
	Minted      int
	Ambiguities []matching.Ambiguity
}

// Result is the outcome of a full in-memory pipeline run.
type Result struct {
	Resolved []ResolvedRecord
	Reports  map[matching.EntityType]Report
	// Stores expose the per-entity decision state for callers that want to
	// inspect individual decisions after the run.
	Stores map[matching.EntityType]*Store
}

// Run executes the whole pipeline in memory: normalize, exact match, fuzzy
// suggestion, decision via the provider, fresh identifiers for whatever is
// left, merge. Registries are read-only; records are not mutated. Stage
// order is fixed and no stage reads data produced by a later one.
func Run(records []matching.Record, registries map[matching.EntityType]matching.Registry, provider DecisionProvider) (*Result, error) {
	stores := map[matching.EntityType]*Store{}
	reports := map[matching.EntityType]Report{}

	for _, entity := range matching.EntityTypes {
		store := NewStore()
		pool := registries[entity]

		names := make([]string, len(records))
		for i, rec := range records {
			names[i] = rec.Name(entity)
		}

		exact := matching.MatchExact(names, pool)
		for i, ref := range exact.Matched {
			store.MarkExact(i, entity, ref.EITIID)
		}

		report := Report{Exact: len(exact.Matched), Ambiguities: exact.Ambiguities}

		for _, i := range exact.Unmatched {
			var suggestion *matching.Suggestion
			if sug, ok := matching.Suggest(names[i], pool); ok {
				store.Propose(i, entity, sug)
				suggestion = &sug
			} else {
				store.MarkPending(i, entity)
			}

			ref, err := provider.Decide(records[i], entity, suggestion)
			if err != nil {
				return nil, fmt.Errorf("decide row %d (%s): %w", i, entity, err)
			}
			if err := store.Decide(i, entity, ref); err != nil {
				return nil, err
			}
			if ref != nil {
				report.Accepted++
			}
		}

		report.Minted = len(AssignFresh(store, entity))

		stores[entity] = store
		reports[entity] = report
	}

	resolved, err := Merge(records, stores)
	if err != nil {
		return nil, err
	}
	return &Result{Resolved: resolved, Reports: reports, Stores: stores}, nil
}
