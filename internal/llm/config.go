// Package llm provides the AI collaborator clients used by the import and
// OCR flows: model configuration, a Gemini client abstraction, and the
// column-mapping and document-extraction collaborators built on top of it.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap structured tasks: column mapping suggestions
	TierLite ModelTier = "lite"
	// TierStandard is for document understanding: OCR record extraction
	TierStandard ModelTier = "standard"
)

// Per-call policy for collaborator requests. A single retry, never more:
// import sessions degrade gracefully on failure, so aggressive retrying
// only delays the operator.
const (
	callTimeout = 45 * time.Second
	maxAttempts = 2
)

// Config holds the model configuration for the application
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a given tier, falling back to the
// lite tier when the requested tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
