package carrier

import (
	"testing"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

func attBlock(rows ...[]string) *sheet.RawBlock {
	return &sheet.RawBlock{
		Columns: []string{"numero_a", "numero_b", "imei", "serv", "t_reg", "fecha", "hora", "duracion", "latitud", "longitud", "azimuth"},
		Rows:    rows,
	}
}

func TestATTListFormCoordinateAndAzimuthSelection(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := attBlock([]string{
		"5512345678", "5519876543", "123456789012345", "voz", "ent",
		"15-06-24", "10:30:00", "45",
		"[19.43:0:19.45]", "[-99.1:0:0]", "[30:40]",
	})

	recs, stats, err := ATT{}.Normalize(1, []*sheet.RawBlock{block}, "cdr_att.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d (stats=%+v)", len(recs), stats)
	}
	r := recs[0]
	if r.LatitudeDec == nil || *r.LatitudeDec < 19.44 || *r.LatitudeDec > 19.46 {
		t.Errorf("LatitudeDec = %v, want ~19.45 (last non-zero)", r.LatitudeDec)
	}
	if r.LongitudeDec == nil || *r.LongitudeDec > -99.09 || *r.LongitudeDec < -99.11 {
		t.Errorf("LongitudeDec = %v, want ~-99.1 (last non-zero)", r.LongitudeDec)
	}
	if r.Azimuth == nil || *r.Azimuth != 30 {
		t.Errorf("Azimuth = %v, want 30 (first parseable)", r.Azimuth)
	}
	if r.LatitudeRaw == nil || *r.LatitudeRaw != "19.45" {
		t.Errorf("LatitudeRaw = %v, want selected value 19.45, not the raw bracketed cell", r.LatitudeRaw)
	}
	if r.LongitudeRaw == nil || *r.LongitudeRaw != "-99.1" {
		t.Errorf("LongitudeRaw = %v, want selected value -99.1, not the raw bracketed cell", r.LongitudeRaw)
	}
}

func TestATTDedupKeysOnSelectedCoordinate(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := attBlock([]string{
		"5512345678", "5519876543", "123456789012345", "voz", "ent",
		"15-06-24", "10:30:00", "45",
		"[0:19.45]", "[0:-99.1]", "30",
	}, []string{
		"5512345678", "5519876543", "123456789012345", "voz", "ent",
		"15-06-24", "10:30:00", "90",
		"[19.45]", "[-99.1]", "30",
	})

	recs, stats, err := ATT{}.Normalize(1, []*sheet.RawBlock{block}, "cdr_att.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected both rows to dedup to the same selected coordinate, got %d (stats=%+v)", len(recs), stats)
	}
}

func TestATTOneDigitHourPadding(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := attBlock([]string{
		"5512345678", "5519876543", "123456789012345", "voz", "ent",
		"15-06-24", "0:16:06", "45",
		"19.43", "-99.1", "30",
	})

	recs, _, _ := ATT{}.Normalize(1, []*sheet.RawBlock{block}, "cdr_att.xlsx", now)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].EventAt.Hour() != 0 || recs[0].EventAt.Minute() != 16 {
		t.Errorf("EventAt = %v, want 00:16:06", recs[0].EventAt)
	}
}

func TestATTAzimuthZeroDropped(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := attBlock([]string{
		"5512345678", "5519876543", "123456789012345", "voz", "ent",
		"15-06-24", "10:30:00", "45",
		"19.43", "-99.1", "0",
	})

	recs, _, _ := ATT{}.Normalize(1, []*sheet.RawBlock{block}, "cdr_att.xlsx", now)
	if len(recs) != 0 {
		t.Fatalf("expected azimuth=0 row to be dropped, got %d", len(recs))
	}
}
