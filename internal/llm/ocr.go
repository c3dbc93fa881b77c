package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/prompts"
	"github.com/kwame/agrimarket/internal/schemas"
	"github.com/kwame/agrimarket/internal/types"
)

// extractedRecordsSchemaPath locates the JSON Schema for OCR responses.
const extractedRecordsSchemaPath = "schemas/extracted_records.schema.json"

// acceptedDocumentTypes are the MIME types the OCR path accepts.
var acceptedDocumentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// CheckDocument gates an OCR upload on MIME type and size before any
// collaborator call is made.
func CheckDocument(fileName, mimeType string, size int64) error {
	accepted := false
	for _, a := range acceptedDocumentTypes {
		if mimeType == a {
			accepted = true
			break
		}
	}
	if !accepted {
		return &importer.InvalidFileTypeError{FileName: fileName, Accepted: acceptedDocumentTypes}
	}
	if size > importer.MaxFileSize {
		return &importer.FileSizeExceededError{Size: size, Limit: importer.MaxFileSize}
	}
	return nil
}

// Extractor pulls structured farmer records out of scanned documents
// (registration forms, handwritten lists, ID cards) via the vision-capable
// collaborator.
type Extractor struct {
	client Client
}

// NewExtractor creates an extractor backed by the given client.
func NewExtractor(client Client) *Extractor {
	return &Extractor{client: client}
}

// ExtractRecords sends the document to the collaborator and parses the
// response into records. A single entity still arrives as a one-element
// array. When the response is not valid JSON the raw text is returned
// inside an ExtractionParseFailure so the caller can surface it instead of
// structured data.
func (e *Extractor) ExtractRecords(ctx context.Context, mimeType string, data []byte) ([]types.ExtractedRecord, error) {
	raw, err := generateWithRetry(ctx, func(ctx context.Context) (string, error) {
		return e.client.GenerateJSONFromDocument(ctx, buildExtractionPrompt(), mimeType, data, TierStandard)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("document extraction call failed: %w", err)
	}

	return parseExtractionResponse(raw)
}

// buildExtractionPrompt constructs the OCR instruction with the fixed
// optional-field schema.
func buildExtractionPrompt() string {
	var sb strings.Builder

	sb.WriteString(prompts.MustGet("import.json", "extraction_preamble"))
	for _, field := range types.ExtractionFields() {
		sb.WriteString(fmt.Sprintf("  - %s\n", field))
	}
	sb.WriteString(prompts.MustGet("import.json", "extraction_instructions"))

	return sb.String()
}

// parseExtractionResponse decodes and filters an OCR response.
func parseExtractionResponse(raw string) ([]types.ExtractedRecord, error) {
	cleaned := CleanJSONBlock(raw)

	// A lone entity sometimes comes back unwrapped despite instructions.
	if strings.HasPrefix(cleaned, "{") {
		cleaned = "[" + cleaned + "]"
	}

	if schemaPath := schemas.ResolveSchemaPath(extractedRecordsSchemaPath); schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, []byte(cleaned)); err != nil {
			return nil, &ExtractionParseFailure{RawText: raw, Cause: err}
		}
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, &ExtractionParseFailure{RawText: raw, Cause: err}
	}

	records := make([]types.ExtractedRecord, 0, len(decoded))
	for _, entry := range decoded {
		record := types.ExtractedRecord{}
		for key, value := range entry {
			text, ok := value.(string)
			if !ok || text == "" {
				continue
			}
			switch key {
			case "name":
				record.Name = text
			case "phone":
				record.Phone = text
			case "email":
				record.Email = text
			case "location":
				record.Location = text
			case "dateOfBirth":
				record.DateOfBirth = text
			case "nationalId":
				record.NationalID = text
			case "farmName":
				record.FarmName = text
			default:
				if record.Extra == nil {
					record.Extra = make(map[string]string)
				}
				record.Extra[key] = text
			}
		}
		records = append(records, record)
	}
	return records, nil
}
