// Package phone converts operator-entered phone numbers into the country-prefixed
// form accepted by the backend.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned when a number matches no prefix rule or has the wrong
// length for its country code.
var ErrInvalidFormat = errors.New("invalid phone number format")

const (
	pakistanPrefix = "+92"
	nanpPrefix     = "+1"

	pakistanDigits = 12
	nanpDigits     = 11
)

// Normalize returns the canonical form of raw, e.g. "0300-1234567" -> "+923001234567".
//
// Supported inputs are Pakistani numbers (+92…, 92…, 03…) and NANP numbers
// (+1…, or 1… with 11 digits). A +92 result must carry 12 digits and a +1 result
// 11 digits.
func Normalize(raw string) (string, error) {
	cleaned := clean(raw)

	var canonical string
	switch {
	case strings.HasPrefix(cleaned, pakistanPrefix), strings.HasPrefix(cleaned, nanpPrefix):
		canonical = cleaned
	case strings.HasPrefix(cleaned, "03"):
		canonical = pakistanPrefix + cleaned[1:]
	case strings.HasPrefix(cleaned, "92"):
		canonical = "+" + cleaned
	case strings.HasPrefix(cleaned, "1") && len(cleaned) == nanpDigits:
		canonical = "+" + cleaned
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}

	digits := len(canonical) - 1
	switch {
	case strings.HasPrefix(canonical, pakistanPrefix) && digits != pakistanDigits:
		return "", fmt.Errorf("%w: %q has %d digits, want %d", ErrInvalidFormat, raw, digits, pakistanDigits)
	case strings.HasPrefix(canonical, nanpPrefix) && digits != nanpDigits:
		return "", fmt.Errorf("%w: %q has %d digits, want %d", ErrInvalidFormat, raw, digits, nanpDigits)
	}

	return canonical, nil
}

// clean keeps digits and a single '+' that precedes every digit.
func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
