package normalize

import (
	"testing"
	"time"
)

func TestParseZeroPaddedDateTime(t *testing.T) {
	got, ok := ParseZeroPaddedDateTime("20240731", "093015")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	want := time.Date(2024, 7, 31, 9, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseZeroPaddedDateTimeMissingTime(t *testing.T) {
	got, ok := ParseZeroPaddedDateTime("20240731", "")
	if !ok {
		t.Fatalf("expected parse to succeed with blank time")
	}
	want := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTwoDigitYear(t *testing.T) {
	if got := TwoDigitYear(24); got != 2024 {
		t.Errorf("TwoDigitYear(24) = %d, want 2024", got)
	}
	if got := TwoDigitYear(99); got != 1999 {
		t.Errorf("TwoDigitYear(99) = %d, want 1999", got)
	}
	if got := TwoDigitYear(50); got != 2050 {
		t.Errorf("TwoDigitYear(50) = %d, want 2050", got)
	}
}

func TestIsCorruptYear(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	if IsCorruptYear(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Errorf("2027 should be within now+1")
	}
	if !IsCorruptYear(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Errorf("2099 should be rejected as corrupt")
	}
}

func TestNormalizeSpanishMonths(t *testing.T) {
	got := NormalizeSpanishMonths("31 Julio 2024")
	if got != "31 07 2024" {
		t.Errorf("NormalizeSpanishMonths = %q", got)
	}
}
