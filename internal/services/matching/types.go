package matching

// EntityType distinguishes the two name columns a payment record carries.
type EntityType string

const (
	EntityCompany    EntityType = "company"
	EntityGovernment EntityType = "government"
)

// EntityTypes lists the types in the fixed order the pipeline processes them.
var EntityTypes = []EntityType{EntityCompany, EntityGovernment}

// IDColumn returns the identifier column name used in resolved output.
func (t EntityType) IDColumn() string {
	return "eiti_id_" + string(t)
}

// Record is one uploaded row. Extra carries passthrough columns untouched by
// the pipeline.
type Record struct {
	Company          string
	GovernmentEntity string
	Country          string
	Extra            map[string]string
}

// Name returns the raw name this record carries for the given entity type.
func (r Record) Name(t EntityType) string {
	if t == EntityGovernment {
		return r.GovernmentEntity
	}
	return r.Company
}

// Reference is one registry row: a canonical name with its pre-existing
// identifier. The registry is read-only within a session.
type Reference struct {
	EITIID  string
	Name    string
	Country string
}

// Registry is a reference pool for one entity type. Slice order is the
// documented iteration order: first-encountered wins on ties and on
// duplicate canonical names.
type Registry []Reference
