package carrier

import (
	"testing"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

func altanBlock(rows ...[]string) *sheet.RawBlock {
	return &sheet.RawBlock{
		Columns: []string{"tipo", "numero_origen", "numero_destino", "duracion", "fecha", "hora", "etiqueta", "latitud", "longitud", "imei", "imsi"},
		Rows:    rows,
	}
}

func TestAltanInfersSubscriberAndDirection(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := altanBlock(
		[]string{"VOZ", "5512345678", "5519876543", "30", "15/06/2024", "10:30:00", "x", "19.43", "-99.1", "123456789012345", "999"},
		[]string{"VOZ", "5512345678", "5511112222", "45", "15/06/2024", "11:00:00", "x", "19.40", "-99.2", "123456789012345", "999"},
		[]string{"VOZ", "5519876543", "5512345678", "20", "15/06/2024", "11:30:00", "x", "19.40", "-99.2", "123456789012345", "999"},
	)

	recs, stats, err := Altan{}.Normalize(1, []*sheet.RawBlock{block}, "altan.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d (stats=%+v)", len(recs), stats)
	}

	bySaliente := 0
	byEntrante := 0
	for _, r := range recs {
		switch r.RecordType {
		case models.VozSaliente:
			bySaliente++
		case models.VozEntrante:
			byEntrante++
		}
	}
	if bySaliente != 2 {
		t.Errorf("expected 2 VozSaliente rows (subscriber=5512345678 as origen), got %d", bySaliente)
	}
	if byEntrante != 1 {
		t.Errorf("expected 1 VozEntrante row (subscriber=5512345678 as destino), got %d", byEntrante)
	}
}

func TestAltanVozWithoutIMEIDropped(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := altanBlock(
		[]string{"VOZ", "5512345678", "5519876543", "30", "15/06/2024", "10:30:00", "x", "19.43", "-99.1", "", "999"},
	)
	recs, _, err := Altan{}.Normalize(1, []*sheet.RawBlock{block}, "altan.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected VOZ row without IMEI to be dropped, got %d", len(recs))
	}
}

func TestAltanNormalizeNonMSISDNOrigenRetained(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	block := altanBlock(
		[]string{"VOZ", " DESCONOCIDO ", "5519876543", "30", "15/06/2024", "10:30:00", "x", "19.43", "-99.1", "123456789012345", "999"},
	)
	recs, _, err := Altan{}.Normalize(1, []*sheet.RawBlock{block}, "altan.xlsx", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected non-MSISDN numero_origen to be retained, got %d records", len(recs))
	}
	if recs[0].NumberA != "DESCONOCIDO" {
		t.Errorf("NumberA = %q, want trimmed raw text", recs[0].NumberA)
	}
}
