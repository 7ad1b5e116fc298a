package normalize

import (
	"strconv"
	"strings"
	"time"
)

var spanishMonths = map[string]string{
	"enero": "01", "febrero": "02", "marzo": "03", "abril": "04",
	"mayo": "05", "junio": "06", "julio": "07", "agosto": "08",
	"septiembre": "09", "setiembre": "09", "octubre": "10",
	"noviembre": "11", "diciembre": "12",
}

// NormalizeSpanishMonths replaces a Spanish month name appearing in raw
// with its numeric equivalent, used by the Telcel date parser.
func NormalizeSpanishMonths(raw string) string {
	lower := strings.ToLower(raw)
	for name, num := range spanishMonths {
		if strings.Contains(lower, name) {
			lower = strings.ReplaceAll(lower, name, num)
		}
	}
	return lower
}

// TryLayouts attempts each Go time layout against raw in order, returning
// the first successful parse.
func TryLayouts(raw string, layouts []string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseZeroPaddedDateTime parses Movistar/Altán's numeric
// "yyyymmdd"+"hhmmss" form, zero-padding each part to its expected width
// first.
func ParseZeroPaddedDateTime(datePart, timePart string) (time.Time, bool) {
	datePart = strings.TrimSpace(datePart)
	timePart = strings.TrimSpace(timePart)
	if datePart == "" {
		return time.Time{}, false
	}

	datePart = padLeft(datePart, 8)
	timePart = padLeft(timePart, 6)
	if len(datePart) != 8 {
		return time.Time{}, false
	}
	if timePart == "" || len(timePart) != 6 {
		timePart = "000000"
	}

	t, err := time.Parse("20060102150405", datePart+timePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// TwoDigitYear expands a 2-digit year per the carrier convention used in
// this system: <=50 => 20yy, else 19yy.
func TwoDigitYear(yy int) int {
	if yy <= 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

// MaxAllowedYear returns the latest year a parsed date may carry before
// being treated as corrupt.
func MaxAllowedYear(now time.Time) int {
	return now.Year() + 1
}

// IsCorruptYear reports whether t's year exceeds the allowed horizon
// relative to now. Every carrier date parser must apply this check.
func IsCorruptYear(t time.Time, now time.Time) bool {
	return t.Year() > MaxAllowedYear(now)
}

// ParseIntSafe parses s as an int, returning 0 on failure. Small helper
// used by carrier parsers when building left-padded hour strings etc.
func ParseIntSafe(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
