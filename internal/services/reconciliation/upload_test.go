package reconciliation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpload(t *testing.T) {
	csvData := `Company,Government entity,Country,Amount,Year
Acme Corp,Ministry of Mines,Peru,1200,2021
Société Générale,Tax Authority,Peru,900,2021
`
	header, records, err := ParseUpload(strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "Government entity", "Country", "Amount", "Year"}, header)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme Corp", records[0].Company)
	assert.Equal(t, "Ministry of Mines", records[0].GovernmentEntity)
	assert.Equal(t, "Peru", records[0].Country)
	assert.Equal(t, map[string]string{"Amount": "1200", "Year": "2021"}, records[0].Extra)
	assert.Equal(t, "Société Générale", records[1].Company)
}

func TestParseUploadMissingColumn(t *testing.T) {
	csvData := "Company,Country\nAcme Corp,Peru\n"

	_, _, err := ParseUpload(strings.NewReader(csvData))

	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "Government entity")
}

func TestParseUploadSkipsBlankRows(t *testing.T) {
	csvData := "Company,Government entity,Country\nAcme Corp,Ministry of Mines,Peru\n,,\n"

	_, records, err := ParseUpload(strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseUploadTabSeparated(t *testing.T) {
	tsvData := "Company\tGovernment entity\tCountry\nAcme Corp\tMinistry of Mines\tPeru\n"

	_, records, err := ParseUpload(strings.NewReader(tsvData))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Corp", records[0].Company)
}

func TestParseUploadNoRecordColumnsAsExtra(t *testing.T) {
	csvData := "Company,Government entity,Country\nAcme Corp,Ministry of Mines,Peru\n"

	_, records, err := ParseUpload(strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Nil(t, records[0].Extra)
}
