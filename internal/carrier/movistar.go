package carrier

import (
	"strings"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/normalize"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

// Movistar parses multi-header/multi-block Movistar CDR sheets.
type Movistar struct{}

func NewMovistar() *Movistar { return &Movistar{} }

func (Movistar) Name() string { return "MOVISTAR" }

func (Movistar) ExpectedTokens() []string {
	return []string{"tipo cdr", "numero a", "numero b", "tipo evento", "fecha evento", "hora evento", "duracion", "imei", "imsi", "codbts", "latitud", "longitud"}
}

func (Movistar) Threshold() int        { return 5 }
func (Movistar) SingleBestHeader() bool { return false }

func (Movistar) Aliases() map[string]string {
	return map[string]string{
		"tipo cdr":     "tipo_cdr",
		"numero a":     "numero_a",
		"numero b":     "numero_b",
		"tipo evento":  "tipo_evento",
		"fecha evento": "fecha_evento",
		"hora evento":  "hora_evento",
		"duracion":     "duracion",
		"imei":         "imei",
		"imsi":         "imsi",
		"codbts":       "codbts",
		"latitud":      "latitud",
		"longitud":     "longitud",
	}
}

func (Movistar) Normalize(fileID int64, blocks []*sheet.RawBlock, sourceFilename string, now time.Time) ([]models.CanonicalRecord, Stats, error) {
	stats := Stats{Carrier: "MOVISTAR"}
	var out []models.CanonicalRecord

	for _, rb := range blocks {
		for i := range rb.Rows {
			stats.Seen++
			rec, ok, err := movistarNormalizeRow(fileID, rb, i, now)
			if err != nil {
				return nil, stats, err
			}
			if !ok {
				stats.DroppedFilter++
				continue
			}
			out = append(out, rec)
		}
	}

	var withCoords, withoutCoords []models.CanonicalRecord
	for _, r := range out {
		if r.LatitudeDec != nil && r.LongitudeDec != nil {
			withCoords = append(withCoords, r)
		} else {
			withoutCoords = append(withoutCoords, r)
		}
	}

	dedupedCoords, droppedA := dedupKeepMaxDuration(withCoords, movistarCoordKey)
	dedupedNoCoords, droppedB := dedupKeepMaxDuration(withoutCoords, movistarNoCoordKey)

	deduped := append(dedupedCoords, dedupedNoCoords...)
	orderByEventNumberA(deduped)

	stats.Deduplicated = droppedA + droppedB
	stats.Kept = len(deduped)
	return deduped, stats, nil
}

func movistarCoordKey(r models.CanonicalRecord) string {
	return r.NumberA + "|" + r.EventAt.Format(time.RFC3339) + "|" + floatKey(r.LatitudeDec) + "|" + floatKey(r.LongitudeDec)
}

func movistarNoCoordKey(r models.CanonicalRecord) string {
	return r.NumberA + "|" + numberBOf(r) + "|" + r.EventAt.Format(time.RFC3339) + "|" + recordTypeKey(r.RecordType)
}

func floatKey(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func recordTypeKey(rt models.RecordType) string {
	return string(rune('0' + int(rt)))
}

func movistarNormalizeRow(fileID int64, rb *sheet.RawBlock, i int, now time.Time) (models.CanonicalRecord, bool, error) {
	numberARaw, _ := rb.Value(i, "numero_a")
	numberA, numberAOk := normalize.CleanMSISDN(numberARaw)
	if !numberAOk {
		numberA = strings.TrimSpace(numberARaw)
	}
	if numberA == "" {
		return models.CanonicalRecord{}, false, nil
	}

	fechaRaw, _ := rb.Value(i, "fecha_evento")
	horaRaw, _ := rb.Value(i, "hora_evento")
	eventAt, ok, err := parseMovistarDateTime(fechaRaw, horaRaw, now)
	if err != nil {
		return models.CanonicalRecord{}, false, err
	}
	if !ok {
		return models.CanonicalRecord{}, false, nil
	}

	tipoCDR := strings.ToUpper(strings.TrimSpace(firstNonEmpty(rb, i, "tipo_cdr")))
	tipoEvento := strings.ToUpper(strings.TrimSpace(firstNonEmpty(rb, i, "tipo_evento")))

	imeiRaw, _ := rb.Value(i, "imei")
	imei, imeiOk := normalize.CleanIMEIStrict(imeiRaw)
	if tipoCDR == "GSM" && !imeiOk {
		return models.CanonicalRecord{}, false, nil
	}

	numberBRaw, _ := rb.Value(i, "numero_b")

	var latDec, lonDec *float64
	var latRaw, lonRaw string
	if v, ok := rb.Value(i, "latitud"); ok {
		latRaw = v
		if f, ok := normalize.ParseCoordinate(v); ok {
			latDec = floatPtr(f)
		}
	}
	if v, ok := rb.Value(i, "longitud"); ok {
		lonRaw = v
		if f, ok := normalize.ParseCoordinate(v); ok {
			lonDec = floatPtr(f)
		}
	}

	rec := models.CanonicalRecord{
		FileID:           fileID,
		NumberA:          numberA,
		NumberB:          strPtr(numberBCleaned(numberBRaw)),
		RecordType:       movistarRecordType(tipoCDR, tipoEvento),
		EventAt:          eventAt,
		DurationSec:      normalize.ParseDuration(firstNonEmpty(rb, i, "duracion")),
		LatitudeRaw:      strPtr(latRaw),
		LongitudeRaw:     strPtr(lonRaw),
		Azimuth:          floatPtr(360),
		LatitudeDec:      latDec,
		LongitudeDec:     lonDec,
		Altitude:         0,
		TargetCoordinate: targetCoordinateDefault(latDec, lonDec),
	}
	if imeiOk {
		rec.IMEI = strPtr(imei)
	}
	if numberAOk {
		rec.Phone = strPtr(numberA)
	}
	return rec, true, nil
}

func movistarRecordType(tipoCDR, tipoEvento string) models.RecordType {
	switch {
	case tipoCDR == "GSM" && tipoEvento == "ENTRANTE":
		return models.VozEntrante
	case tipoCDR == "GSM" && tipoEvento == "SALIENTE":
		return models.VozSaliente
	case tipoCDR == "SMS" && tipoEvento == "ENTRANTE":
		return models.Mensaje2ViasEnt
	case tipoCDR == "SMS" && tipoEvento == "SALIENTE":
		return models.Mensaje2ViasSal
	default:
		return models.Ninguno
	}
}

func parseMovistarDateTime(fechaRaw, horaRaw string, now time.Time) (time.Time, bool, error) {
	fecha := strings.TrimSpace(fechaRaw)
	hora := strings.TrimSpace(horaRaw)

	if t, ok := normalize.ParseZeroPaddedDateTime(fecha, hora); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}

	combined := normalize.NormalizeSpanishMonths(strings.TrimSpace(fecha + " " + hora))
	layouts := []string{
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
		"02-01-2006 15:04:05",
		"02-01-2006 15:04",
	}
	if t, ok := normalize.TryLayouts(combined, layouts); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}
