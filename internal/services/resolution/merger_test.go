package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eiti-matching-backend/internal/services/matching"
)

func twoEntityStores() map[matching.EntityType]*Store {
	return map[matching.EntityType]*Store{
		matching.EntityCompany:    NewStore(),
		matching.EntityGovernment: NewStore(),
	}
}

func TestMerge(t *testing.T) {
	records := []matching.Record{
		{Company: "Acme Corp", GovernmentEntity: "Ministry of Mines", Country: "Peru",
			Extra: map[string]string{"Amount": "1200"}},
	}
	stores := twoEntityStores()
	stores[matching.EntityCompany].MarkExact(0, matching.EntityCompany, "A1")
	stores[matching.EntityGovernment].MarkExact(0, matching.EntityGovernment, "G7")

	out, err := Merge(records, stores)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A1", out[0].CompanyID)
	assert.Equal(t, "G7", out[0].GovernmentID)
	assert.Equal(t, "Acme Corp", out[0].Company)
	assert.Equal(t, "1200", out[0].Extra["Amount"])
}

func TestMergeUnresolvedRecordFails(t *testing.T) {
	records := []matching.Record{{Company: "Acme Corp", GovernmentEntity: "Ministry of Mines"}}
	stores := twoEntityStores()
	stores[matching.EntityCompany].MarkExact(0, matching.EntityCompany, "A1")
	// no government identifier

	_, err := Merge(records, stores)

	assert.ErrorIs(t, err, ErrUnresolvedRecord)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	records := []matching.Record{{Company: "Acme Corp", GovernmentEntity: "Ministry of Mines"}}
	stores := twoEntityStores()
	stores[matching.EntityCompany].MarkExact(0, matching.EntityCompany, "A1")
	stores[matching.EntityGovernment].MarkExact(0, matching.EntityGovernment, "G7")

	_, err := Merge(records, stores)

	require.NoError(t, err)
	assert.Equal(t, matching.Record{Company: "Acme Corp", GovernmentEntity: "Ministry of Mines"}, records[0])
}
