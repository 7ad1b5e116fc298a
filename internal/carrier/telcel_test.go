package carrier

import (
	"testing"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

func telcelBlock(rows ...[]string) *sheet.RawBlock {
	return &sheet.RawBlock{
		Columns: []string{"telefono", "tipo", "numero_a", "numero_b", "fecha", "hora", "duracion", "imei", "latitud", "longitud", "azimuth"},
		Rows:    rows,
	}
}

func TestTelcelNormalizeKeepsCompleteRow(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := telcelBlock([]string{
		"5512345678", "Voz Saliente", "5512345678", "5519876543",
		"15/06/2024", "10:30:00", "90", "123456789012345",
		"19.4326", "-99.1332", "180",
	})

	recs, stats, err := Telcel{}.Normalize(1, []*sheet.RawBlock{block}, "telcel.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d (stats=%+v)", len(recs), stats)
	}
	r := recs[0]
	if r.RecordType != models.VozSaliente {
		t.Errorf("RecordType = %v, want VozSaliente", r.RecordType)
	}
	if r.NumberA != "5512345678" {
		t.Errorf("NumberA = %q", r.NumberA)
	}
	if r.IMEI == nil || *r.IMEI != "123456789012345" {
		t.Errorf("IMEI = %v", r.IMEI)
	}
}

func TestTelcelNormalizeDropsMissingIMEI(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := telcelBlock([]string{
		"5512345678", "Voz Saliente", "5512345678", "5519876543",
		"15/06/2024", "10:30:00", "90", "",
		"19.4326", "-99.1332", "180",
	})

	recs, stats, err := Telcel{}.Normalize(1, []*sheet.RawBlock{block}, "telcel.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected 0 records, got %d", len(recs))
	}
	if stats.DroppedFilter != 1 {
		t.Errorf("DroppedFilter = %d, want 1", stats.DroppedFilter)
	}
}

func TestTelcelDedupKeepsMaxDuration(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	row := []string{
		"5512345678", "Voz Saliente", "5512345678", "5519876543",
		"15/06/2024", "10:30:00", "30", "123456789012345",
		"19.4326", "-99.1332", "180",
	}
	rowLonger := make([]string, len(row))
	copy(rowLonger, row)
	rowLonger[6] = "300"

	block := telcelBlock(row, rowLonger)
	recs, stats, err := Telcel{}.Normalize(1, []*sheet.RawBlock{block}, "telcel.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected dedup to 1 record, got %d", len(recs))
	}
	if recs[0].DurationSec != 300 {
		t.Errorf("DurationSec = %d, want 300", recs[0].DurationSec)
	}
	if stats.Deduplicated != 1 {
		t.Errorf("Deduplicated = %d, want 1", stats.Deduplicated)
	}
}

func TestTelcelNormalizeCorruptYearFailsBatch(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := telcelBlock([]string{
		"5512345678", "Voz Saliente", "5512345678", "5519876543",
		"15/06/2024", "10:30:00", "90", "123456789012345",
		"19.4326", "-99.1332", "180",
	}, []string{
		"5512345679", "Voz Saliente", "5512345679", "5519876543",
		"15/06/2099", "10:30:00", "90", "123456789012345",
		"19.4326", "-99.1332", "180",
	})

	recs, _, err := Telcel{}.Normalize(1, []*sheet.RawBlock{block}, "telcel.xlsx", now)
	if err == nil {
		t.Fatal("expected error for corrupt future year, got nil")
	}
	if recs != nil {
		t.Errorf("expected nil records on batch failure, got %d", len(recs))
	}
}
