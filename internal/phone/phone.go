// Package phone canonicalizes free-form phone numbers into the digit format
// stored in the contact database and sent to the WhatsApp Cloud API.
package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCountryCode is prefixed onto bare national numbers.
const DefaultCountryCode = "91"

const (
	minDigits = 10
	maxDigits = 15
)

// Formatting characters people type into phone fields.
var separatorRegex = regexp.MustCompile(`[\s\-().]`)

var nonDigitRegex = regexp.MustCompile(`\D`)

// Mobile numbers in the default country start with one of these.
const domesticMobilePrefixes = "6789"

// Validation is the result of checking a raw phone string.
type Validation struct {
	IsValid    bool   `json:"is_valid"`
	Normalized string `json:"normalized"`
	Error      string `json:"error,omitempty"`
}

func invalid(msg string) Validation {
	return Validation{IsValid: false, Error: msg}
}

// clean strips a leading + and common separator characters. Anything left
// that is not a digit is the caller's problem to reject.
func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	return separatorRegex.ReplaceAllString(s, "")
}

// normalizeDigits applies the country-code rules to an all-digit string.
func normalizeDigits(digits string) string {
	switch {
	case len(digits) == minDigits:
		// Bare national number.
		return DefaultCountryCode + digits
	case len(digits) == 11 && digits[0] == '0':
		// Trunk prefix dialing, e.g. 09876543210.
		return DefaultCountryCode + digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, DefaultCountryCode):
		return digits
	default:
		// Generic international numbers pass through unchanged.
		return digits
	}
}

// Normalize converts a free-form phone string into the country-code-inclusive
// digit form used for storage and comparison. Normalize is total: for inputs
// Validate would reject it still returns the cleaned digits so that logging
// and diagnostics have something to show.
func Normalize(raw string) string {
	digits := nonDigitRegex.ReplaceAllString(clean(raw), "")
	if digits == "" {
		return ""
	}
	return normalizeDigits(digits)
}

// Validate checks a raw phone string and returns the normalized form or a
// structured reason it was rejected. It never panics on malformed input.
func Validate(raw string) Validation {
	if strings.TrimSpace(raw) == "" {
		return invalid("phone number is empty")
	}

	cleaned := clean(raw)
	if cleaned == "" {
		return invalid("phone number contains no digits")
	}
	if nonDigitRegex.MatchString(cleaned) {
		return invalid("phone number contains invalid characters")
	}

	normalized := normalizeDigits(cleaned)
	if len(normalized) < minDigits {
		return invalid(fmt.Sprintf("phone number too short: %d digits (minimum %d)", len(normalized), minDigits))
	}
	if len(normalized) > maxDigits {
		return invalid(fmt.Sprintf("phone number too long: %d digits (maximum %d)", len(normalized), maxDigits))
	}

	// Domestic mobile prefix rule for bare 10-digit inputs.
	if len(cleaned) == minDigits && !strings.ContainsRune(domesticMobilePrefixes, rune(cleaned[0])) {
		return invalid(fmt.Sprintf("invalid mobile number: must start with one of [%s]", domesticMobilePrefixes))
	}

	return Validation{IsValid: true, Normalized: normalized}
}

// ToMessagingFormat returns the E.164-like digit string the Cloud API expects,
// or false if the input cannot be made sendable.
func ToMessagingFormat(raw string) (string, bool) {
	v := Validate(raw)
	if !v.IsValid {
		return "", false
	}
	return v.Normalized, true
}

// Equal compares two phone values by normalized form. Raw string comparison
// of phone numbers is always wrong; use this.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// CountryCode guesses the country code of a normalized number from its first
// one or two digits. The guess is heuristic and known to be unreliable for
// arbitrary countries; callers must treat it as best-effort.
func CountryCode(normalized string) string {
	if len(normalized) == 12 && strings.HasPrefix(normalized, DefaultCountryCode) {
		return DefaultCountryCode
	}
	if len(normalized) == 11 && strings.HasPrefix(normalized, "1") {
		return "1"
	}
	if len(normalized) >= 2 {
		return normalized[:2]
	}
	return normalized
}

// DisplayFormat renders a normalized number for human-facing output.
func DisplayFormat(normalized string) string {
	if normalized == "" {
		return ""
	}
	if len(normalized) == 12 && strings.HasPrefix(normalized, DefaultCountryCode) {
		national := normalized[2:]
		return fmt.Sprintf("+%s %s %s", DefaultCountryCode, national[:5], national[5:])
	}
	return "+" + normalized
}
