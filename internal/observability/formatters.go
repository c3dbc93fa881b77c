// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/kwame/agrimarket/internal/grading"
	"github.com/kwame/agrimarket/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTable outputs a summary of a parsed import table.
func (p *Printer) PrintTable(fileName string, table *types.RawTable) {
	if table == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:    %s\n", fileName))
	sb.WriteString(fmt.Sprintf("Rows:    %d\n", len(table.Rows)))
	sb.WriteString(fmt.Sprintf("Columns: %d\n\n", len(table.Headers)))

	sb.WriteString("Headers:\n")
	count := min(len(table.Headers), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", table.Headers[i]))
	}
	if len(table.Headers) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(table.Headers)-maxItemsToShow))
	}

	p.printBox("PARSED IMPORT FILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintColumnMap outputs a column mapping with unmapped fields flagged.
func (p *Printer) PrintColumnMap(columnMap types.ColumnMap) {
	var sb strings.Builder

	mapped := 0
	for _, field := range types.CanonicalFields() {
		header, ok := columnMap[field]
		if ok && header != "" {
			sb.WriteString(fmt.Sprintf("  %-12s ← %s\n", field, header))
			mapped++
		} else {
			sb.WriteString(fmt.Sprintf("  %-12s (unmapped)\n", field))
		}
	}

	title := fmt.Sprintf("COLUMN MAPPING (%d of %d fields)", mapped, len(types.CanonicalFields()))
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImportPreview outputs the first few records produced by a confirmed mapping.
func (p *Printer) PrintImportPreview(records []types.ImportedFarmerRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Valid records: %d\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		name := rec.Name
		if name == "" {
			name = "(no name)"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, name))
		sb.WriteString(fmt.Sprintf("    Phone: %s", rec.Phone))
		if rec.Location != "" {
			sb.WriteString(fmt.Sprintf("  Location: %s", rec.Location))
		}
		sb.WriteString("\n")
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(records)-maxItemsToShow))
	}

	p.printBox("IMPORT PREVIEW", sb.String())
}

// PrintImportResult outputs the outcome of a committed import.
func (p *Printer) PrintImportResult(fileName string, farmers []types.Farmer) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", fileName))
	sb.WriteString(fmt.Sprintf("Imported: %d farmers\n", len(farmers)))

	count := min(len(farmers), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s (%s)\n", farmers[i].Name, farmers[i].Phone))
	}
	if len(farmers) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(farmers)-maxItemsToShow))
	}

	p.printBox("IMPORT COMMITTED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGrade outputs a farmer's computed trust grade.
func (p *Printer) PrintGrade(farmer *types.Farmer, grade grading.Grade) {
	if farmer == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Farmer:  %s\n", farmer.Name))
	if farmer.FarmName != "" {
		sb.WriteString(fmt.Sprintf("Farm:    %s\n", farmer.FarmName))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Score:   %d / 100\n", grade.Score))
	sb.WriteString(fmt.Sprintf("Stars:   %.1f\n", grade.Stars))
	sb.WriteString(fmt.Sprintf("Badge:   %s\n", grade.Badge))
	sb.WriteString("\n")

	checks := []string{}
	if farmer.PhoneVerified {
		checks = append(checks, "✓phone")
	}
	if farmer.IdentityVerified {
		checks = append(checks, "✓identity")
	}
	if farmer.BankVerified {
		checks = append(checks, "✓bank")
	}
	if len(checks) > 0 {
		sb.WriteString(fmt.Sprintf("Verified: %s\n", strings.Join(checks, " ")))
	}
	sb.WriteString(fmt.Sprintf("Rating:   %.1f over %d transactions", farmer.BuyerRating, farmer.SuccessfulTxns))

	p.printBox("FARMER TRUST GRADE", sb.String())
}

// PrintExtractedRecords outputs records pulled from a scanned document.
func (p *Printer) PrintExtractedRecords(records []types.ExtractedRecord) {
	if len(records) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO RECORDS EXTRACTED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d records:\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		name := rec.Name
		if name == "" {
			name = "(no name)"
		}
		sb.WriteString(fmt.Sprintf("• %s\n", name))
		details := []string{}
		if rec.Phone != "" {
			details = append(details, rec.Phone)
		}
		if rec.Location != "" {
			details = append(details, rec.Location)
		}
		if len(details) > 0 {
			sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(details, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(records)-maxItemsToShow))
	}

	p.printBox("EXTRACTED RECORDS", sb.String())
}
