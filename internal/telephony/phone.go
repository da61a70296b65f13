package telephony

import "strings"

const countryCode = "91"

// Canonical normalizes a raw phone number into "+91" international form:
// every non-digit is dropped, a single trunk "0" prefix is removed, and the
// country code is prepended unless already present. An input with no digits
// canonicalizes to the empty string.
func Canonical(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimPrefix(b.String(), "0")
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return "+" + digits
}
