package carrier

import (
	"strings"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/normalize"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
)

// Altan parses multi-header/multi-block Altán CDR sheets. The original
// Python implementation (original_source/app/services/altan.py) is an
// unimplemented stub, so this parser is built from the shared canonical
// record schema and the Movistar parser's structural idiom: multi-block
// reads plus a cross-row aggregation pass (subscriber-number inference)
// before per-row type mapping.
type Altan struct{}

func NewAltan() *Altan { return &Altan{} }

func (Altan) Name() string { return "ALTAN" }

func (Altan) ExpectedTokens() []string {
	return []string{"tipo de comunicacion", "numero origen", "numero destino", "duracion", "fecha de la comunicacion", "hora de la comunicacion", "etiqueta de localizacion", "latitud", "longitud", "imei", "imsi"}
}

func (Altan) Threshold() int        { return 5 }
func (Altan) SingleBestHeader() bool { return false }

func (Altan) Aliases() map[string]string {
	return map[string]string{
		"tipo de comunicacion":    "tipo",
		"numero origen":           "numero_origen",
		"numero destino":          "numero_destino",
		"duracion":                "duracion",
		"fecha de la comunicacion": "fecha",
		"hora de la comunicacion":  "hora",
		"etiqueta de localizacion": "etiqueta",
		"latitud":                 "latitud",
		"longitud":                "longitud",
		"imei":                    "imei",
		"imsi":                    "imsi",
	}
}

func (Altan) Normalize(fileID int64, blocks []*sheet.RawBlock, sourceFilename string, now time.Time) ([]models.CanonicalRecord, Stats, error) {
	stats := Stats{Carrier: "ALTAN"}

	subscriber := altanInferSubscriber(blocks)

	var out []models.CanonicalRecord
	for _, rb := range blocks {
		for i := range rb.Rows {
			stats.Seen++
			rec, ok, err := altanNormalizeRow(fileID, rb, i, subscriber, now)
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

	deduped, droppedDup := dedupKeepMaxDuration(out, altanDedupKey)
	orderByEventNumberA(deduped)

	stats.Deduplicated = droppedDup
	stats.Kept = len(deduped)
	return deduped, stats, nil
}

// altanInferSubscriber finds the mode of the normalized NUMERO ORIGEN
// column across all blocks, which identifies the file's subscriber.
func altanInferSubscriber(blocks []*sheet.RawBlock) string {
	counts := map[string]int{}
	for _, rb := range blocks {
		for i := range rb.Rows {
			raw, ok := rb.Value(i, "numero_origen")
			if !ok {
				continue
			}
			cleaned, ok := normalize.CleanMSISDN(raw)
			if !ok {
				continue
			}
			counts[cleaned]++
		}
	}
	best := ""
	bestCount := 0
	for v, c := range counts {
		if c > bestCount {
			best = v
			bestCount = c
		}
	}
	return best
}

func altanDedupKey(r models.CanonicalRecord) string {
	return r.NumberA + "|" + numberBOf(r) + "|" + recordTypeKey(r.RecordType) + "|" + r.EventAt.Format(time.RFC3339) + "|" + floatKey(r.LatitudeDec) + "|" + floatKey(r.LongitudeDec)
}

func altanNormalizeRow(fileID int64, rb *sheet.RawBlock, i int, subscriber string, now time.Time) (models.CanonicalRecord, bool, error) {
	origenRaw, _ := rb.Value(i, "numero_origen")
	destinoRaw, _ := rb.Value(i, "numero_destino")
	origen, origenOk := normalize.CleanMSISDN(origenRaw)
	destino, destinoOk := normalize.CleanMSISDN(destinoRaw)

	numberA := origen
	if !origenOk {
		numberA = strings.TrimSpace(origenRaw)
	}
	if numberA == "" {
		return models.CanonicalRecord{}, false, nil
	}

	fechaRaw, _ := rb.Value(i, "fecha")
	horaRaw, _ := rb.Value(i, "hora")
	eventAt, ok, err := parseAltanDateTime(fechaRaw, horaRaw, now)
	if err != nil {
		return models.CanonicalRecord{}, false, err
	}
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

	tipo := strings.ToUpper(strings.TrimSpace(firstNonEmpty(rb, i, "tipo")))
	direction := altanDirection(origen, destino, subscriber, origenOk, destinoOk)

	imeiRaw, _ := rb.Value(i, "imei")
	imei, imeiOk := normalize.CleanIMEIStrict(imeiRaw)
	if strings.HasPrefix(tipo, "VOZ") && !imeiOk {
		return models.CanonicalRecord{}, false, nil
	}

	latDec := floatPtr(latDecVal)
	lonDec := floatPtr(lonDecVal)

	rec := models.CanonicalRecord{
		FileID:           fileID,
		NumberA:          numberA,
		NumberB:          strPtr(destino),
		RecordType:       altanRecordType(tipo, direction),
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
	if subscriber != "" {
		rec.Phone = strPtr(subscriber)
	}
	return rec, true, nil
}

type altanDir int

const (
	altanDirUnknown altanDir = iota
	altanDirEntrante
	altanDirSaliente
)

func altanDirection(origen, destino, subscriber string, origenOk, destinoOk bool) altanDir {
	if subscriber == "" {
		return altanDirUnknown
	}
	if destinoOk && destino == subscriber && origen != subscriber {
		return altanDirEntrante
	}
	if origenOk && origen == subscriber && destino != subscriber {
		return altanDirSaliente
	}
	return altanDirUnknown
}

func altanRecordType(tipo string, dir altanDir) models.RecordType {
	switch {
	case strings.HasPrefix(tipo, "VOZ") && dir == altanDirEntrante:
		return models.VozEntrante
	case strings.HasPrefix(tipo, "VOZ") && dir == altanDirSaliente:
		return models.VozSaliente
	case strings.HasPrefix(tipo, "SMS") && dir == altanDirEntrante:
		return models.Mensaje2ViasEnt
	case strings.HasPrefix(tipo, "SMS") && dir == altanDirSaliente:
		return models.Mensaje2ViasSal
	case strings.HasPrefix(tipo, "REENVIO") && dir == altanDirEntrante:
		return models.ReenvioEnt
	case strings.HasPrefix(tipo, "REENVIO") && dir == altanDirSaliente:
		return models.ReenvioSal
	case strings.HasPrefix(tipo, "DATOS"):
		return models.Datos
	default:
		return models.Ninguno
	}
}

func parseAltanDateTime(fechaRaw, horaRaw string, now time.Time) (time.Time, bool, error) {
	fecha := strings.TrimSpace(fechaRaw)
	hora := strings.TrimSpace(horaRaw)

	combined := fecha + " " + hora
	layouts := []string{
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
	}
	if t, ok := normalize.TryLayouts(combined, layouts); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}

	if t, ok := normalize.ParseZeroPaddedDateTime(fecha, hora); ok {
		if normalize.IsCorruptYear(t, now) {
			return time.Time{}, false, ErrCorruptDate
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}
