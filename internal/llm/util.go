// Package llm - util.go provides shared utilities for collaborator response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code-fence wrapping from a response.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not
// to, so every response is stripped before decoding.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")

	// A bare fence may carry a language identifier on its first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if firstLine != "" && len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
