package job

import "testing"

func TestNewJobIDIsUniqueAndHex(t *testing.T) {
	a := newJobID()
	b := newJobID()
	if a == b {
		t.Errorf("expected distinct job IDs, got %q twice", a)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d (%q)", len(a), a)
	}
}

func TestCarrierIDFor(t *testing.T) {
	cases := map[string]int{"TELCEL": 1, "ATT": 4, "MOVISTAR": 5, "ALTAN": 12, "UNKNOWN": 1}
	for name, want := range cases {
		if got := carrierIDFor(name); got != want {
			t.Errorf("carrierIDFor(%q) = %d, want %d", name, got, want)
		}
	}
}
