package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kwame/agrimarket/internal/prompts"
	"github.com/kwame/agrimarket/internal/schemas"
	"github.com/kwame/agrimarket/internal/types"
)

// columnMapSchemaPath locates the JSON Schema for mapping responses.
const columnMapSchemaPath = "schemas/column_map.schema.json"

// ColumnMapper asks the text-generation collaborator to map arbitrary
// spreadsheet headers onto the canonical import fields. It satisfies
// importer.Mapper.
type ColumnMapper struct {
	client Client
}

// NewColumnMapper creates a mapper backed by the given client.
func NewColumnMapper(client Client) *ColumnMapper {
	return &ColumnMapper{client: client}
}

// SuggestColumnMap requests a best-effort header mapping. The collaborator
// is untrusted: the response is fence-stripped, JSON-decoded, validated
// against a schema, and suggestions pointing at headers that do not exist
// are dropped. On any failure an empty map is returned together with a
// MappingSuggestionFailure; callers proceed to human review either way.
func (m *ColumnMapper) SuggestColumnMap(ctx context.Context, headers []string) (types.ColumnMap, error) {
	prompt := buildMappingPrompt(headers)

	raw, err := generateWithRetry(ctx, func(ctx context.Context) (string, error) {
		return m.client.GenerateJSON(ctx, prompt, TierLite)
	})
	if err != nil {
		if ctx.Err() != nil {
			return types.ColumnMap{}, ctx.Err()
		}
		return types.ColumnMap{}, &MappingSuggestionFailure{Message: "collaborator call failed", Cause: err}
	}

	suggestion, err := parseMappingResponse(raw, headers)
	if err != nil {
		return types.ColumnMap{}, err
	}
	return suggestion, nil
}

// buildMappingPrompt constructs the mapping request from the header list and
// the fixed canonical field set.
func buildMappingPrompt(headers []string) string {
	var sb strings.Builder

	sb.WriteString(prompts.MustGet("import.json", "column_map_preamble"))

	sb.WriteString("System fields:\n")
	for _, field := range types.CanonicalFields() {
		sb.WriteString(fmt.Sprintf("  - %s\n", field))
	}

	sb.WriteString("\nSpreadsheet headers:\n")
	for _, header := range headers {
		sb.WriteString(fmt.Sprintf("  - %q\n", header))
	}

	sb.WriteString(prompts.MustGet("import.json", "column_map_instructions"))

	return sb.String()
}

// parseMappingResponse decodes and filters a mapping response.
func parseMappingResponse(raw string, headers []string) (types.ColumnMap, error) {
	cleaned := CleanJSONBlock(raw)

	if schemaPath := schemas.ResolveSchemaPath(columnMapSchemaPath); schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, []byte(cleaned)); err != nil {
			return types.ColumnMap{}, &MappingSuggestionFailure{Message: "response failed schema validation", Cause: err}
		}
	}

	var decoded map[string]*string
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return types.ColumnMap{}, &MappingSuggestionFailure{Message: "response was not valid JSON", Cause: err}
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	suggestion := types.ColumnMap{}
	for _, field := range types.CanonicalFields() {
		header, ok := decoded[string(field)]
		if !ok || header == nil {
			continue
		}
		// Drop hallucinated headers; the operator fills the gaps in review.
		if !known[*header] {
			continue
		}
		suggestion[field] = *header
	}
	return suggestion, nil
}
