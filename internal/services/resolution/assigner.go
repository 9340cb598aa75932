package resolution

import (
	"eiti-matching-backend/internal/services/matching"

	"github.com/google/uuid"
)

// AssignFresh mints a uuid4 identifier for every record still unresolved in
// the store for the given entity type and returns the record→identifier
// mapping. Already-resolved records are never touched. Minted identifiers are
// not written back to the registry; re-running the pipeline on the same
// unresolved record yields a different identifier each time.
func AssignFresh(store *Store, entity matching.EntityType) map[int]string {
	minted := make(map[int]string)
	for _, rec := range store.Unresolved(entity) {
		id := uuid.NewString()
		d := store.decisions[key{rec, entity}]
		d.State = StateMinted
		d.EITIID = id
		minted[rec] = id
	}
	return minted
}
