// Package importer implements the bulk farmer import pipeline: raw table
// parsing, AI-assisted column mapping with human review, and deterministic
// row-by-row record parsing.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kwame/agrimarket/internal/types"
)

// MaxFileSize is the upload ceiling for import files.
const MaxFileSize = 50 << 20 // 50 MB

// acceptedExtensions are the file extensions the CSV import path accepts.
var acceptedExtensions = []string{".csv", ".txt"}

// CheckFile gates an upload before any parsing happens. It validates the
// extension and the declared size; failures return the session to selection.
func CheckFile(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	accepted := false
	for _, a := range acceptedExtensions {
		if ext == a {
			accepted = true
			break
		}
	}
	if !accepted {
		return &InvalidFileTypeError{FileName: fileName, Accepted: acceptedExtensions}
	}
	if size > MaxFileSize {
		return &FileSizeExceededError{Size: size, Limit: MaxFileSize}
	}
	return nil
}

// ParseTable reads delimited text into a RawTable. The first non-empty line
// is the header row; remaining non-empty lines are data rows.
//
// Parsing uses encoding/csv with lazy quotes and variable field counts, so
// quoted fields containing commas survive intact.
func ParseTable(text string) (*types.RawTable, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	table := &types.RawTable{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse table: %w", err)
		}
		if isEmptyRow(record) {
			continue
		}
		cells := make([]string, len(record))
		for i, cell := range record {
			cells[i] = strings.TrimSpace(cell)
		}
		if table.Headers == nil {
			table.Headers = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}

	if table.Headers == nil {
		return nil, &EmptyTableError{}
	}
	return table, nil
}

// isEmptyRow reports whether every cell in the record is blank.
func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
