package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"eiti-matching-backend/internal/models"
	"eiti-matching-backend/internal/services/matching"
)

// DefaultURL is the public EITI declaration dataset.
const DefaultURL = "https://soe-database.eiti.org/eiti_database/declaration_companies.csv?_size=max"

// ErrBadSnapshot is returned when the remote CSV is missing one of the
// columns the snapshot needs.
var ErrBadSnapshot = errors.New("registry snapshot missing required column")

// columns per entity type in the declaration CSV
var sourceColumns = map[matching.EntityType]struct{ name, id string }{
	matching.EntityCompany:    {name: "company_name", id: "eiti_id_company"},
	matching.EntityGovernment: {name: "government_entity", id: "eiti_id_government"},
}

// Fetcher pulls the declaration CSV and turns it into reference entities.
// Refresh policy is the caller's: the matching core only ever sees the
// materialized snapshot.
type Fetcher struct {
	URL    string
	Client *http.Client
}

func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads and parses the full declaration table. One snapshot row is
// produced per unique identifier per entity type; repeated identifiers keep
// their first-encountered name.
func (f *Fetcher) Fetch() ([]models.ReferenceEntity, error) {
	resp, err := f.Client.Get(f.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch registry: unexpected status %s", resp.Status)
	}
	return Parse(resp.Body)
}

// Parse reads a declaration CSV and extracts the deduplicated company and
// government reference sets.
func Parse(r io.Reader) ([]models.ReferenceEntity, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}

	columns := make(map[string]int, len(headerRow))
	for i, col := range headerRow {
		columns[strings.TrimSpace(col)] = i
	}
	countryCol, ok := columns["country"]
	if !ok {
		return nil, fmt.Errorf("%w: country", ErrBadSnapshot)
	}
	for _, entity := range matching.EntityTypes {
		src := sourceColumns[entity]
		if _, ok := columns[src.name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadSnapshot, src.name)
		}
		if _, ok := columns[src.id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadSnapshot, src.id)
		}
	}

	seen := make(map[string]bool)
	var refs []models.ReferenceEntity
	rowNum := 0

	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("registry: skipping row %d: %v", rowNum, err)
			continue
		}

		for _, entity := range matching.EntityTypes {
			src := sourceColumns[entity]
			id := field(record, columns[src.id])
			name := field(record, columns[src.name])
			if id == "" || name == "" {
				continue
			}
			dedupeKey := string(entity) + "|" + id
			if seen[dedupeKey] {
				continue
			}
			seen[dedupeKey] = true
			refs = append(refs, models.ReferenceEntity{
				EITIID:     id,
				EntityType: string(entity),
				Name:       name,
				Country:    field(record, countryCol),
			})
		}
	}

	return refs, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
