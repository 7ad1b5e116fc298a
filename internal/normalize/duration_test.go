package normalize

import "testing"

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"":          0,
		"45":        45,
		"02:30":     150,
		"01:02:03":  3723,
		"12.7":      13,
		"-5":        0,
		"garbage":   0,
	}

	for raw, want := range cases {
		if got := ParseDuration(raw); got != want {
			t.Errorf("ParseDuration(%q) = %d, want %d", raw, got, want)
		}
	}
}
