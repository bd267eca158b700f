package errors

import (
	"math"
	"strings"
	"unicode"
)

// NormalizeName validates an identifier taken from configuration (a backend
// or strategy name) and returns its canonical lower-case form.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace inside the name
//   - Maximum length of 64 characters
//
// kind names the field in the error message, e.g. "backend".
func NormalizeName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", New(ErrCodeInvalidConfig, "%s name cannot be empty", kind)
	}

	if len(name) > 64 {
		return "", New(ErrCodeInvalidConfig, "%s name too long (max 64 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", New(ErrCodeInvalidConfig, "%s name contains invalid characters: %q", kind, name)
		}
	}

	return strings.ToLower(name), nil
}

// ValidateFinite rejects NaN and infinite values for the named parameter.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	return nil
}
