package carrier

import (
	"regexp"
	"strings"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/normalize"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

// ATT parses single-best-header AT&T CDR sheets.
type ATT struct{}

func NewATT() *ATT { return &ATT{} }

func (ATT) Name() string { return "ATT" }

func (ATT) ExpectedTokens() []string {
	return []string{"numero a", "numero b", "num a imei", "serv", "t_reg", "fecha", "hora", "dur", "latitud", "longitud", "azimuth"}
}

func (ATT) Threshold() int        { return 5 }
func (ATT) SingleBestHeader() bool { return true }

func (ATT) Aliases() map[string]string {
	return map[string]string{
		"numero a":   "numero_a",
		"numero b":   "numero_b",
		"num a imei": "imei",
		"imei":       "imei",
		"serv":       "serv",
		"t_reg":      "t_reg",
		"fecha":      "fecha",
		"hora":       "hora",
		"dur":        "duracion",
		"latitud":    "latitud",
		"longitud":   "longitud",
		"azimuth":    "azimuth",
	}
}

var attHourOneDigit = regexp.MustCompile(`^(\d):(\d{2}:\d{2})$`)

func (ATT) Normalize(fileID int64, blocks []*sheet.RawBlock, sourceFilename string, now time.Time) ([]models.CanonicalRecord, Stats, error) {
	stats := Stats{Carrier: "ATT"}
	var out []models.CanonicalRecord

	phone := attPhoneFromFilename(sourceFilename)

	for _, rb := range blocks {
		for i := range rb.Rows {
			stats.Seen++
			rec, ok, err := attNormalizeRow(fileID, rb, i, phone, now)
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

	deduped, droppedDup := dedupKeepMaxDuration(out, attDedupKey)
	stats.Deduplicated = droppedDup
	stats.Kept = len(deduped)
	return deduped, stats, nil
}

func attPhoneFromFilename(filename string) string {
	digits, ok := normalize.LongestDigitRun(filename, 8)
	if !ok {
		return ""
	}
	cleaned, ok := normalize.CleanMSISDN(digits)
	if !ok {
		return ""
	}
	return cleaned
}

func attDedupKey(r models.CanonicalRecord) string {
	if r.LatitudeRaw != nil && r.LongitudeRaw != nil {
		return r.NumberA + "|" + r.EventAt.Format(time.RFC3339) + "|" + *r.LatitudeRaw + "|" + *r.LongitudeRaw
	}
	return r.NumberA + "|" + r.EventAt.Format(time.RFC3339) + "|" + numberBOf(r)
}

func attNormalizeRow(fileID int64, rb *sheet.RawBlock, i int, phone string, now time.Time) (models.CanonicalRecord, bool, error) {
	numberARaw, _ := rb.Value(i, "numero_a")
	numberA, numberAOk := normalize.CleanMSISDN(numberARaw)
	if !numberAOk {
		if phone == "" {
			return models.CanonicalRecord{}, false, nil
		}
		numberA = phone
	}

	fechaRaw, _ := rb.Value(i, "fecha")
	horaRaw, _ := rb.Value(i, "hora")
	eventAt, ok, err := parseATTDateTime(fechaRaw, horaRaw, now)
	if err != nil {
		return models.CanonicalRecord{}, false, err
	}
	if !ok {
		return models.CanonicalRecord{}, false, nil
	}

	latCellRaw, latOk := rb.Value(i, "latitud")
	lonCellRaw, lonOk := rb.Value(i, "longitud")
	if !latOk || !lonOk {
		return models.CanonicalRecord{}, false, nil
	}
	latSelected := latCellRaw
	if normalize.IsListForm(latCellRaw) {
		latSelected = normalize.SelectLastNonZero(latCellRaw)
	}
	lonSelected := lonCellRaw
	if normalize.IsListForm(lonCellRaw) {
		lonSelected = normalize.SelectLastNonZero(lonCellRaw)
	}
	latDecVal, latDecOk := normalize.ParseCoordinate(latSelected)
	lonDecVal, lonDecOk := normalize.ParseCoordinate(lonSelected)
	if !latDecOk || !lonDecOk {
		return models.CanonicalRecord{}, false, nil
	}

	azimuthCellRaw, azOk := rb.Value(i, "azimuth")
	if !azOk {
		return models.CanonicalRecord{}, false, nil
	}
	azimuthSelected := azimuthCellRaw
	if normalize.IsListForm(azimuthCellRaw) {
		sel, ok := normalize.SelectFirstParseable(azimuthCellRaw)
		if !ok {
			return models.CanonicalRecord{}, false, nil
		}
		azimuthSelected = sel
	}
	azimuth, azParseOk := normalize.ParseAzimuth(azimuthSelected)
	if !azParseOk || azimuth == 0 {
		return models.CanonicalRecord{}, false, nil
	}

	serv := strings.ToLower(strings.TrimSpace(firstNonEmpty(rb, i, "serv")))
	tReg := strings.ToLower(strings.TrimSpace(firstNonEmpty(rb, i, "t_reg")))
	recordType := attRecordType(serv, tReg, numberA, phone)

	imeiRaw, _ := rb.Value(i, "imei")
	imei, imeiOk := normalize.CleanIMEITruncate(imeiRaw)

	numberBRaw, _ := rb.Value(i, "numero_b")
	latDec := floatPtr(latDecVal)
	lonDec := floatPtr(lonDecVal)

	rec := models.CanonicalRecord{
		FileID:           fileID,
		NumberA:          numberA,
		NumberB:          strPtr(numberBCleaned(numberBRaw)),
		RecordType:       recordType,
		EventAt:          eventAt,
		DurationSec:      normalize.ParseDuration(firstNonEmpty(rb, i, "duracion")),
		LatitudeRaw:      strPtr(latSelected),
		LongitudeRaw:     strPtr(lonSelected),
		Azimuth:          floatPtr(azimuth),
		LatitudeDec:      latDec,
		LongitudeDec:     lonDec,
		Altitude:         0,
		TargetCoordinate: targetCoordinateDefault(latDec, lonDec),
	}
	if imeiOk {
		rec.IMEI = strPtr(imei)
	}
	if phone != "" {
		rec.Phone = strPtr(phone)
	}
	return rec, true, nil
}

func attRecordType(serv, tReg, numberA, phone string) models.RecordType {
	switch {
	case strings.HasPrefix(serv, "data") || strings.HasPrefix(serv, "datos"):
		return models.Datos
	case strings.HasPrefix(serv, "voz"):
		switch {
		case strings.HasPrefix(tReg, "ent"):
			return models.VozEntrante
		case strings.HasPrefix(tReg, "sal"):
			return models.VozSaliente
		case tReg == "" && numberA == phone && numberA != "":
			return models.VozSaliente
		default:
			return models.Ninguno
		}
	case strings.HasPrefix(serv, "sms"):
		switch {
		case strings.HasPrefix(tReg, "ent"):
			return models.Mensaje2ViasEnt
		case strings.HasPrefix(tReg, "sal"):
			return models.Mensaje2ViasSal
		case tReg == "" && numberA == phone && numberA != "":
			return models.Mensaje2ViasSal
		default:
			return models.Ninguno
		}
	case strings.HasPrefix(serv, "mms"):
		return models.MensajeriaMultimedia
	default:
		return models.Ninguno
	}
}

func parseATTDateTime(fechaRaw, horaRaw string, now time.Time) (time.Time, bool, error) {
	fecha := strings.TrimSpace(fechaRaw)
	hora := strings.TrimSpace(horaRaw)
	if m := attHourOneDigit.FindStringSubmatch(hora); m != nil {
		hora = "0" + m[1] + ":" + m[2]
	}

	combined := strings.TrimSpace(fecha + " " + hora)
	layouts := []string{
		"02-01-06 15:04:05",
		"2006-01-02 15:04:05",
	}
	if t, ok := normalize.TryLayouts(combined, layouts); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}
