package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParseDuration accepts integer seconds, "mm:ss", "hh:mm:ss", or a
// floating-point number of seconds, returning a non-negative integer.
// Unparseable input yields 0, matching the "blank duration" behavior of
// SMS-only carrier rows.
func ParseDuration(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}

	if strings.Count(trimmed, ":") == 1 {
		parts := strings.SplitN(trimmed, ":", 2)
		mins, err1 := strconv.Atoi(parts[0])
		secs, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil && mins >= 0 && secs >= 0 {
			return mins*60 + secs
		}
	}

	if strings.Count(trimmed, ":") == 2 {
		parts := strings.SplitN(trimmed, ":", 3)
		hours, err1 := strconv.Atoi(parts[0])
		mins, err2 := strconv.Atoi(parts[1])
		secs, err3 := strconv.Atoi(parts[2])
		if err1 == nil && err2 == nil && err3 == nil && hours >= 0 && mins >= 0 && secs >= 0 {
			return hours*3600 + mins*60 + secs
		}
	}

	if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil && f >= 0 {
		return int(math.Round(f))
	}

	return 0
}
