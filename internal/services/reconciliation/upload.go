package reconciliation

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"eiti-matching-backend/internal/services/matching"
)

// ErrMissingField means the uploaded table lacks a required column. Fatal for
// the whole session, surfaced before any matching begins.
var ErrMissingField = errors.New("upload missing required column")

const (
	columnCompany    = "Company"
	columnGovernment = "Government entity"
	columnCountry    = "Country"
)

var requiredColumns = []string{columnCompany, columnGovernment, columnCountry}

// ParseUpload reads the uploaded CSV into records, keeping every column it
// does not recognize as a passthrough field. Returns the original header in
// order so the export can reproduce it.
func ParseUpload(r io.Reader) ([]string, []matching.Record, error) {
	buffered := bufio.NewReader(r)
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	if sample, err := buffered.Peek(1024); err == nil || err == io.EOF {
		if !strings.Contains(string(sample), ",") && strings.Contains(string(sample), "\t") {
			reader.Comma = '\t'
		}
	}

	headerRow, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read upload header: %w", err)
	}

	header := make([]string, len(headerRow))
	columns := make(map[string]int, len(headerRow))
	for i, col := range headerRow {
		header[i] = strings.TrimSpace(col)
		columns[header[i]] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingField, col)
		}
	}

	var records []matching.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if strings.Join(row, "") == "" {
			continue
		}

		rec := matching.Record{
			Company:          cell(row, columns[columnCompany]),
			GovernmentEntity: cell(row, columns[columnGovernment]),
			Country:          cell(row, columns[columnCountry]),
		}
		for _, col := range header {
			switch col {
			case columnCompany, columnGovernment, columnCountry:
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = cell(row, columns[col])
		}
		records = append(records, rec)
	}

	return header, records, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
