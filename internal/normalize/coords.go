package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// dmsPattern matches "deg° min' sec\" [hem]" with a permissive choice of
// degree/minute/second glyphs and an optional trailing hemisphere letter.
var dmsPattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*[°oº]\s*(\d+(?:\.\d+)?)\s*['′]\s*(\d+(?:\.\d+)?)\s*["″]?\s*([NSEWO])?\s*$`)

var emptyLikeTokens = map[string]bool{
	"": true, "nan": true, "null": true, "none": true, "n/a": true, "-": true,
}

// ParseCoordinate accepts a decimal value (dot or comma separated) or a
// DMS value with an optional trailing hemisphere letter in {N,S,E,W,O}.
// O (Oeste/West) and S negate the value, as does a leading '-' on the
// decimal form. Returns false for empty-like or unparseable tokens.
func ParseCoordinate(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if emptyLikeTokens[strings.ToLower(trimmed)] {
		return 0, false
	}

	if m := dmsPattern.FindStringSubmatch(trimmed); m != nil {
		deg, _ := strconv.ParseFloat(m[1], 64)
		min, _ := strconv.ParseFloat(m[2], 64)
		sec, _ := strconv.ParseFloat(m[3], 64)
		value := deg + min/60 + sec/3600

		hem := strings.ToUpper(m[4])
		if hem == "S" || hem == "W" || hem == "O" {
			value = -value
		}
		return value, true
	}

	decimal := strings.ReplaceAll(trimmed, ",", ".")
	value, err := strconv.ParseFloat(decimal, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// IsListForm reports whether raw is an AT&T-style bracketed list like
// "[19.43:0:19.45]".
func IsListForm(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")
}

func splitListForm(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	return strings.Split(trimmed, ":")
}

// SelectLastNonZero returns the last element of an AT&T bracketed list
// that parses to a non-zero number, used for latitude/longitude lists.
// Falls back to the last element if every element is zero or unparsable.
func SelectLastNonZero(raw string) string {
	parts := splitListForm(raw)
	if len(parts) == 0 {
		return raw
	}

	for i := len(parts) - 1; i >= 0; i-- {
		v, ok := ParseCoordinate(parts[i])
		if ok && v != 0 {
			return parts[i]
		}
	}
	return parts[len(parts)-1]
}

// SelectFirstParseable returns the first element of an AT&T bracketed
// list that parses as a plain number, used for azimuth lists.
func SelectFirstParseable(raw string) (string, bool) {
	for _, part := range splitListForm(raw) {
		part = strings.TrimSpace(part)
		if _, err := strconv.ParseFloat(strings.ReplaceAll(part, ",", "."), 64); err == nil {
			return part, true
		}
	}
	return "", false
}

// ParseAzimuth parses a plain (non-list) azimuth cell as a float in
// [0, 360]. Carriers that hand azimuth as a bracketed list must call
// SelectFirstParseable first.
func ParseAzimuth(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if emptyLikeTokens[strings.ToLower(trimmed)] {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil || value < 0 || value > 360 {
		return 0, false
	}
	return value, true
}
