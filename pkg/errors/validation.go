package errors

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Output formats understood by the renderer.
var validFormats = []string{"json", "dot", "svg", "png"}

// ValidateNodeID validates a node identifier from untrusted input.
//
// The rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node ID cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "node ID too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node ID contains invalid control characters")
		}
	}
	return nil
}

// ValidateFormat validates an output format name.
func ValidateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(validFormats, ", "))
	}
	return nil
}

// ValidateSelector performs a structural check of a root selector: brackets
// and quotes must balance. Selectors that pass may still match nothing.
func ValidateSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return New(ErrCodeInvalidSelector, "selector cannot be empty")
	}

	depth := 0
	var quote rune
	for _, r := range selector {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '[':
			depth++
		case r == ']':
			depth--
			if depth < 0 {
				return New(ErrCodeInvalidSelector, "unbalanced ']' in selector %q", selector)
			}
		}
	}
	if quote != 0 {
		return New(ErrCodeInvalidSelector, "unterminated quote in selector %q", selector)
	}
	if depth != 0 {
		return New(ErrCodeInvalidSelector, "unbalanced '[' in selector %q", selector)
	}
	return nil
}

// ValidateLayoutID validates a saved layout identifier (a UUID).
func ValidateLayoutID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid layout ID %q", id)
	}
	return nil
}
