package dispatch

import "testing"

func intPtr(i int) *int { return &i }

func TestResolveByCarrierID(t *testing.T) {
	p := Resolve(intPtr(4), nil, "")
	if p.Name() != "ATT" {
		t.Errorf("Name() = %s, want ATT", p.Name())
	}
	p = Resolve(intPtr(12), nil, "")
	if p.Name() != "ALTAN" {
		t.Errorf("Name() = %s, want ALTAN", p.Name())
	}
}

func TestResolveByMetadataToken(t *testing.T) {
	p := Resolve(nil, []string{"carrier: Movistar SA"}, "")
	if p.Name() != "MOVISTAR" {
		t.Errorf("Name() = %s, want MOVISTAR", p.Name())
	}
}

func TestResolveByFilename(t *testing.T) {
	p := Resolve(nil, nil, "/tmp/123/cdr_altan_julio.xlsx")
	if p.Name() != "ALTAN" {
		t.Errorf("Name() = %s, want ALTAN", p.Name())
	}
}

func TestResolveDefaultsToTelcel(t *testing.T) {
	p := Resolve(nil, nil, "unknown.xlsx")
	if p.Name() != "TELCEL" {
		t.Errorf("Name() = %s, want TELCEL default", p.Name())
	}
}
