// Package phone canonicalizes subscriber numbers into E.164-style
// international format using per-country dialing rules.
package phone

import (
	"fmt"
	"strings"

	"github.com/agribuddy/notify-engine/internal/domain"
)

type countryRule struct {
	// dialingCode is the international prefix without the plus sign.
	dialingCode string
	// totalLength is the digit count including the dialing code.
	totalLength int
	// localPrefixes are the valid leading digits of the subscriber number.
	localPrefixes []string
}

var countryRules = map[string]countryRule{
	"UG": {
		dialingCode:   "256",
		totalLength:   12,
		localPrefixes: []string{"70", "71", "72", "73", "74", "75", "76", "77", "78", "79"},
	},
	"KE": {
		dialingCode:   "254",
		totalLength:   12,
		localPrefixes: []string{"70", "71", "72", "73", "74", "75", "76", "77", "78", "79"},
	},
	"TZ": {
		dialingCode:   "255",
		totalLength:   12,
		localPrefixes: []string{"71", "73", "74", "75", "76", "77", "78"},
	},
}

// Normalize validates and canonicalizes a raw phone number for the given
// ISO country code. Failure yields domain.ErrInvalidPhoneNumber; it is a
// recoverable bad-input signal, not a system fault.
//
// Countries without a rule table get a permissive transformation: digits
// are kept as-is and prefixed with a plus sign, with no prefix validation.
func Normalize(raw string, country string) (string, error) {
	cleaned := stripNonDigits(raw)
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q contains no digits", domain.ErrInvalidPhoneNumber, raw)
	}

	rule, ok := countryRules[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return "+" + cleaned, nil
	}

	local := strings.TrimPrefix(cleaned, rule.dialingCode)
	local = strings.TrimPrefix(local, "0")

	wantLocalLen := rule.totalLength - len(rule.dialingCode)
	if len(local) != wantLocalLen {
		return "", fmt.Errorf("%w: %q has %d local digits, want %d",
			domain.ErrInvalidPhoneNumber, raw, len(local), wantLocalLen)
	}

	if !hasValidPrefix(local, rule.localPrefixes) {
		return "", fmt.Errorf("%w: %q does not start with a valid subscriber prefix",
			domain.ErrInvalidPhoneNumber, raw)
	}

	return "+" + rule.dialingCode + local, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasValidPrefix(local string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(local, p) {
			return true
		}
	}
	return false
}
