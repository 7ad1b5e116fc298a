// Package normalize holds the pure value normalizers shared by every
// carrier parser: MSISDN and IMEI cleaning, coordinate parsing, duration
// parsing, and the common date-time helpers.
package normalize

import "strings"

// CleanMSISDN strips everything but digits from raw and rejects known
// non-numeric tokens and all-zero numbers. When the cleaned number has
// more than 10 digits and a leading country code "52", it is stripped
// repeatedly while the remainder stays longer than 10 digits.
func CleanMSISDN(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	if isInvalidMSISDNToken(lower) {
		return "", false
	}

	digits := digitsOnly(trimmed)
	if digits == "" || isAllZeros(digits) {
		return "", false
	}

	for len(digits) > 10 && strings.HasPrefix(digits, "52") {
		digits = digits[2:]
	}

	return digits, true
}

func isInvalidMSISDNToken(lower string) bool {
	if lower == "ims" {
		return true
	}
	if strings.Contains(lower, "internet.itelcel.com") {
		return true
	}
	if strings.HasPrefix(lower, "telcel") {
		return true
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllZeros(digits string) bool {
	for _, r := range digits {
		if r != '0' {
			return false
		}
	}
	return true
}

// LongestDigitRun returns the longest contiguous run of at least minLen
// digits in s. Used by the AT&T parser to recover a subscriber MSISDN from
// a filename.
func LongestDigitRun(s string, minLen int) (string, bool) {
	best := ""
	var current strings.Builder
	flush := func() {
		if current.Len() > len(best) {
			best = current.String()
		}
		current.Reset()
	}

	for _, r := range s {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	if len(best) < minLen {
		return "", false
	}
	return best, true
}
