package carrier

import (
	"testing"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

func movistarBlock(rows ...[]string) *sheet.RawBlock {
	return &sheet.RawBlock{
		Columns: []string{"tipo_cdr", "numero_a", "numero_b", "tipo_evento", "fecha_evento", "hora_evento", "duracion", "imei", "imsi", "codbts", "latitud", "longitud"},
		Rows:    rows,
	}
}

func TestMovistarNormalizeVoiceRow(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := movistarBlock([]string{
		"GSM", "5512345678", "5519876543", "ENTRANTE",
		"20240615", "103000", "30", "123456789012345", "999999999999999", "1",
		"19.4326", "-99.1332",
	})

	recs, stats, err := Movistar{}.Normalize(1, []*sheet.RawBlock{block}, "movistar.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d (stats=%+v)", len(recs), stats)
	}
	if recs[0].RecordType != models.VozEntrante {
		t.Errorf("RecordType = %v, want VozEntrante", recs[0].RecordType)
	}
	if recs[0].Azimuth == nil || *recs[0].Azimuth != 360 {
		t.Errorf("Azimuth default not applied: %v", recs[0].Azimuth)
	}
}

func TestMovistarGSMWithoutIMEIDropped(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := movistarBlock([]string{
		"GSM", "5512345678", "5519876543", "ENTRANTE",
		"20240615", "103000", "30", "", "999999999999999", "1",
		"19.4326", "-99.1332",
	})

	recs, _, err := Movistar{}.Normalize(1, []*sheet.RawBlock{block}, "movistar.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected GSM row without IMEI to be dropped, got %d", len(recs))
	}
}

func TestMovistarSMSWithoutIMEIKept(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := movistarBlock([]string{
		"SMS", "5512345678", "5519876543", "SALIENTE",
		"20240615", "103000", "", "", "999999999999999", "1",
		"19.4326", "-99.1332",
	})

	recs, _, err := Movistar{}.Normalize(1, []*sheet.RawBlock{block}, "movistar.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected SMS row without IMEI to survive, got %d", len(recs))
	}
	if recs[0].RecordType != models.Mensaje2ViasSal {
		t.Errorf("RecordType = %v, want Mensaje2ViasSal", recs[0].RecordType)
	}
}

func TestMovistarNormalizeNonMSISDNNumberARetained(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := movistarBlock([]string{
		"SMS", " ANONIMO ", "5519876543", "SALIENTE",
		"20240615", "103000", "", "", "999999999999999", "1",
		"19.4326", "-99.1332",
	})

	recs, _, err := Movistar{}.Normalize(1, []*sheet.RawBlock{block}, "movistar.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected non-MSISDN numero_a to be retained, got %d records", len(recs))
	}
	if recs[0].NumberA != "ANONIMO" {
		t.Errorf("NumberA = %q, want trimmed raw text", recs[0].NumberA)
	}
}
