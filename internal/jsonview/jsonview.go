// Package jsonview renders document JSON for terminal display
package jsonview

import (
	"encoding/json"
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Format pretty-prints a JSON document string
func Format(doc string) (string, error) {
	var parsed any
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(pretty), nil
}

// Compact renders a JSON document string on a single line
func Compact(doc string) (string, error) {
	var parsed any
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	compact, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(compact), nil
}

// Truncate shortens a JSON string to the given display width for list rows.
// Width is measured in terminal cells, not bytes.
func Truncate(doc string, maxWidth int) string {
	if runewidth.StringWidth(doc) <= maxWidth {
		return doc
	}
	return runewidth.Truncate(doc, maxWidth, "...")
}
