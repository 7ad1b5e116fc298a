package carrier

import (
	"regexp"
	"strings"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/normalize"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

// Telcel parses single-best-header Telcel CDR sheets.
type Telcel struct{}

func NewTelcel() *Telcel { return &Telcel{} }

func (Telcel) Name() string { return "TELCEL" }

func (Telcel) ExpectedTokens() []string {
	return []string{"telefono", "tipo", "numero a", "numero b", "fecha", "hora", "durac", "imei", "latitud", "longitud", "azimuth"}
}

func (Telcel) Threshold() int        { return 5 }
func (Telcel) SingleBestHeader() bool { return true }

func (Telcel) Aliases() map[string]string {
	return map[string]string{
		"telefono":  "telefono",
		"tipo":      "tipo",
		"numero a":  "numero_a",
		"numero b":  "numero_b",
		"fecha":     "fecha",
		"hora":      "hora",
		"duracion":  "duracion",
		"durac":     "duracion",
		"imei":      "imei",
		"latitud":   "latitud",
		"longitud":  "longitud",
		"azimuth":   "azimuth",
	}
}

var telcelExcelAnomaly = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+00:00:00\s+(\d{1,2}:\d{2}:\d{2})$`)
var telcelTwoDigitYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

func (Telcel) Normalize(fileID int64, blocks []*sheet.RawBlock, sourceFilename string, now time.Time) ([]models.CanonicalRecord, Stats, error) {
	stats := Stats{Carrier: "TELCEL"}
	var out []models.CanonicalRecord

	for _, rb := range blocks {
		for i := range rb.Rows {
			stats.Seen++
			rec, ok, err := telcelNormalizeRow(fileID, rb, i, now)
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

	deduped, droppedDup := dedupKeepMaxDuration(out, telcelDedupKey)
	stats.Deduplicated = droppedDup
	stats.Kept = len(deduped)
	return deduped, stats, nil
}

func telcelDedupKey(r models.CanonicalRecord) string {
	var lat, lon string
	if r.LatitudeRaw != nil {
		lat = *r.LatitudeRaw
	}
	if r.LongitudeRaw != nil {
		lon = *r.LongitudeRaw
	}
	return r.NumberA + "|" + r.EventAt.Format(time.RFC3339) + "|" + lat + "|" + lon
}

func telcelNormalizeRow(fileID int64, rb *sheet.RawBlock, i int, now time.Time) (models.CanonicalRecord, bool, error) {
	numberARaw, _ := rb.Value(i, "numero_a")
	numberA, ok := normalize.CleanMSISDN(numberARaw)
	if !ok {
		numberA = strings.TrimSpace(numberARaw)
	}
	if numberA == "" {
		return models.CanonicalRecord{}, false, nil
	}

	fechaRaw, _ := rb.Value(i, "fecha")
	horaRaw, _ := rb.Value(i, "hora")
	eventAt, ok, err := parseTelcelDateTime(fechaRaw, horaRaw, now)
	if err != nil {
		return models.CanonicalRecord{}, false, err
	}
	if !ok {
		return models.CanonicalRecord{}, false, nil
	}

	imeiRaw, _ := rb.Value(i, "imei")
	imei, ok := normalize.CleanIMEITruncate(imeiRaw)
	if !ok {
		return models.CanonicalRecord{}, false, nil
	}

	latRaw, latOk := rb.Value(i, "latitud")
	lonRaw, lonOk := rb.Value(i, "longitud")
	if !latOk || !lonOk {
		return models.CanonicalRecord{}, false, nil
	}
	latDecVal, latDecOk := normalize.ParseCoordinate(latRaw)
	lonDecVal, lonDecOk := normalize.ParseCoordinate(lonRaw)
	if !latDecOk || !lonDecOk {
		return models.CanonicalRecord{}, false, nil
	}

	azimuthRaw, azOk := rb.Value(i, "azimuth")
	azimuth, azParseOk := normalize.ParseAzimuth(azimuthRaw)
	if !azOk || !azParseOk || azimuth == 0 {
		return models.CanonicalRecord{}, false, nil
	}

	tipoRaw, _ := rb.Value(i, "tipo")
	numberBRaw, _ := rb.Value(i, "numero_b")
	telefonoRaw, _ := rb.Value(i, "telefono")

	latDec := floatPtr(latDecVal)
	lonDec := floatPtr(lonDecVal)

	rec := models.CanonicalRecord{
		FileID:           fileID,
		NumberA:          numberA,
		NumberB:          strPtr(numberBCleaned(numberBRaw)),
		RecordType:       telcelRecordType(tipoRaw),
		EventAt:          eventAt,
		DurationSec:      normalize.ParseDuration(firstNonEmpty(rb, i, "duracion")),
		LatitudeRaw:      strPtr(latRaw),
		LongitudeRaw:     strPtr(lonRaw),
		Azimuth:          floatPtr(azimuth),
		LatitudeDec:      latDec,
		LongitudeDec:     lonDec,
		Altitude:         0,
		TargetCoordinate: targetCoordinateDefault(latDec, lonDec),
		IMEI:             strPtr(imei),
	}
	if phone, ok := normalize.CleanMSISDN(telefonoRaw); ok {
		rec.Phone = strPtr(phone)
	}
	return rec, true, nil
}

func firstNonEmpty(rb *sheet.RawBlock, row int, col string) string {
	v, _ := rb.Value(row, col)
	return v
}

func numberBCleaned(raw string) string {
	if v, ok := normalize.CleanMSISDN(raw); ok {
		return v
	}
	return ""
}

func telcelRecordType(tipoRaw string) models.RecordType {
	lower := strings.ToLower(strings.TrimSpace(tipoRaw))
	switch {
	case strings.HasPrefix(lower, "datos"):
		return models.Datos
	case strings.HasPrefix(lower, "mensaje entrante"):
		return models.Mensaje2ViasEnt
	case strings.HasPrefix(lower, "mensaje saliente"):
		return models.Mensaje2ViasSal
	case strings.HasPrefix(lower, "voz entrante"):
		return models.VozEntrante
	case strings.HasPrefix(lower, "voz saliente"):
		return models.VozSaliente
	case strings.HasPrefix(lower, "voz transfer"):
		return models.VozTransfer
	case strings.HasPrefix(lower, "voz transito"):
		return models.VozTransito
	default:
		return models.Ninguno
	}
}

func parseTelcelDateTime(fechaRaw, horaRaw string, now time.Time) (time.Time, bool, error) {
	combined := strings.TrimSpace(fechaRaw)
	if h := strings.TrimSpace(horaRaw); h != "" {
		combined = combined + " " + h
	}
	combined = normalize.NormalizeSpanishMonths(combined)

	if m := telcelExcelAnomaly.FindStringSubmatch(combined); m != nil {
		combined = m[1] + " " + m[2]
	}

	layouts := []string{
		"02/01/2006 15:04:05",
		"02-01-2006 15:04:05",
		"02/01/2006 15:04",
		"02-01-2006 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	if t, ok := normalize.TryLayouts(combined, layouts); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}

	if m := telcelTwoDigitYear.FindStringSubmatch(combined); m != nil {
		day := normalize.ParseIntSafe(m[1])
		month := normalize.ParseIntSafe(m[2])
		year := normalize.TwoDigitYear(normalize.ParseIntSafe(m[3]))
		hour := normalize.ParseIntSafe(m[4])
		minute := normalize.ParseIntSafe(m[5])
		second := normalize.ParseIntSafe(m[6])
		if day == 0 || month == 0 {
			return time.Time{}, false, nil
		}
		t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}

	return time.Time{}, false, nil
}
