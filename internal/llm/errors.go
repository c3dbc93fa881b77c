package llm

import "fmt"

// MappingSuggestionFailure indicates the AI mapping call failed or returned
// unparseable data. It is recovered locally: the import session presents an
// empty map for manual completion, so this error is for logging only.
type MappingSuggestionFailure struct {
	Message string
	Cause   error
}

func (e *MappingSuggestionFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mapping suggestion failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("mapping suggestion failed: %s", e.Message)
}

func (e *MappingSuggestionFailure) Unwrap() error {
	return e.Cause
}

// ExtractionParseFailure indicates the OCR collaborator's response was not
// valid JSON. RawText carries the model output so the caller can fall back
// to showing it instead of structured records.
type ExtractionParseFailure struct {
	RawText string
	Cause   error
}

func (e *ExtractionParseFailure) Error() string {
	return fmt.Sprintf("extraction response was not valid JSON: %v", e.Cause)
}

func (e *ExtractionParseFailure) Unwrap() error {
	return e.Cause
}
