// Package export emits extracted records as downloadable CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/kwame/agrimarket/internal/types"
)

// WriteRecords writes records as CSV: the canonical field columns first, in
// their fixed order, then any extra keys observed across the batch appended
// in first-seen order. Field quoting and quote doubling follow standard CSV
// escaping via encoding/csv.
func WriteRecords(w io.Writer, records []types.ExtractedRecord) error {
	canonical := types.ExtractionFields()

	var extras []string
	seen := make(map[string]bool)
	for _, record := range records {
		for _, key := range sortedExtraKeys(record) {
			if !seen[key] {
				seen[key] = true
				extras = append(extras, key)
			}
		}
	}

	writer := csv.NewWriter(w)

	header := append(append([]string{}, canonical...), extras...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			record.Name,
			record.Phone,
			record.Email,
			record.Location,
			record.DateOfBirth,
			record.NationalID,
			record.FarmName,
		)
		for _, key := range extras {
			row = append(row, record.Extra[key])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// sortedExtraKeys returns a record's extra keys in alphabetical order, so
// the appended columns are deterministic regardless of map iteration.
func sortedExtraKeys(record types.ExtractedRecord) []string {
	keys := make([]string, 0, len(record.Extra))
	for key := range record.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
