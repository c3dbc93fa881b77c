package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFile_AcceptsCSV(t *testing.T) {
	assert.NoError(t, CheckFile("farmers.csv", 1024))
	assert.NoError(t, CheckFile("FARMERS.CSV", 1024))
	assert.NoError(t, CheckFile("notes.txt", 1024))
}

func TestCheckFile_RejectsOtherTypes(t *testing.T) {
	err := CheckFile("farmers.xlsx", 1024)

	var typeErr *InvalidFileTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "farmers.xlsx", typeErr.FileName)
}

func TestCheckFile_RejectsOversizedFiles(t *testing.T) {
	err := CheckFile("farmers.csv", MaxFileSize+1)

	var sizeErr *FileSizeExceededError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, int64(MaxFileSize), sizeErr.Limit)
}

func TestParseTable_HeadersAndRows(t *testing.T) {
	table, err := ParseTable("Full Name,Region,Phone\nAma,Ashanti,+233200000000\nKofi,Volta,+233240000000\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"Full Name", "Region", "Phone"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Ama", "Ashanti", "+233200000000"}, table.Rows[0])
	assert.Equal(t, []string{"Kofi", "Volta", "+233240000000"}, table.Rows[1])
}

func TestParseTable_SkipsEmptyLines(t *testing.T) {
	table, err := ParseTable("Name,Phone\n\nAma,+233200000000\n\n\n")

	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestParseTable_QuotedCommasSurvive(t *testing.T) {
	table, err := ParseTable("Name,Location,Phone\n\"Ama, Serwaa\",\"Kumasi, Ashanti\",+233200000000\n")

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Ama, Serwaa", table.Rows[0][0])
	assert.Equal(t, "Kumasi, Ashanti", table.Rows[0][1])
}

func TestParseTable_StripsSurroundingQuotes(t *testing.T) {
	table, err := ParseTable("\"Name\",\"Phone\"\n\"Ama\",\"+233200000000\"\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Phone"}, table.Headers)
	assert.Equal(t, []string{"Ama", "+233200000000"}, table.Rows[0])
}

func TestParseTable_EmptyInput(t *testing.T) {
	_, err := ParseTable(strings.Repeat("\n", 4))

	var emptyErr *EmptyTableError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestParseTable_RaggedRowsAllowed(t *testing.T) {
	// Real spreadsheets drop trailing cells; short rows must not fail parsing.
	table, err := ParseTable("Name,Phone,Crop\nAma,+233200000000\n")

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 2)
}
