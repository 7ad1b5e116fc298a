// Package carrier implements the per-carrier CDR parsers: column mapping,
// type classification, filtering and deduplication over sheet.RawBlocks.
package carrier

import (
	"sort"
	"strconv"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
	apperrors "github.com/phantoooomCam/sabanas-server/pkg/errors"
)

// ErrCorruptDate is returned by Normalize when a row's event date carries a
// corrupt future year (normalize.IsCorruptYear). Per the batch-or-nothing
// ingestion rule this fails the whole file rather than just dropping the
// row: the caller must not persist any records from this file.
var ErrCorruptDate = apperrors.New(apperrors.ErrParseFailure, "corrupt future year in event date")

// Stats tracks row counts through one parser run, surfaced as log fields
// and as the etl_rows_total{carrier,stage} Prometheus counter.
type Stats struct {
	Carrier       string
	Seen          int
	DroppedFilter int
	Deduplicated  int
	Kept          int
}

// Parser is implemented by each carrier's CDR parser.
type Parser interface {
	// Name is the canonical carrier identifier (e.g. "TELCEL").
	Name() string
	// ExpectedTokens is the header-scoring vocabulary for this carrier.
	ExpectedTokens() []string
	// Threshold is the minimum header score to recognize a header row.
	Threshold() int
	// SingleBestHeader selects single-best-row detection (Telcel/AT&T) vs
	// multi-header/multi-block (Movistar/Altán).
	SingleBestHeader() bool
	// Aliases maps raw header tokens to canonical column names.
	Aliases() map[string]string
	// Normalize turns the carrier's raw blocks into canonical records. A
	// non-nil error (ErrCorruptDate) means the entire file must be
	// rejected; the caller must not persist the returned records (nil).
	Normalize(fileID int64, blocks []*sheet.RawBlock, sourceFilename string, now time.Time) ([]models.CanonicalRecord, Stats, error)
}

// Locate runs header detection and block extraction for a parser over raw
// sheets, returning the RawBlocks ready for Normalize.
func Locate(p Parser, sheets []sheet.Sheet) []*sheet.RawBlock {
	var out []*sheet.RawBlock
	for _, sh := range sheets {
		headers := sheet.FindHeaderRows(sh.Rows, p.ExpectedTokens(), p.Threshold(), p.SingleBestHeader())
		if len(headers) == 0 {
			continue
		}
		for _, block := range sheet.ExtractBlocks(sh.Rows, headers) {
			rb := sheet.BuildRawBlock(block, p.Aliases())
			if len(rb.Rows) > 0 {
				out = append(out, rb)
			}
		}
	}
	return out
}

// dedupKeepMaxDuration groups records by keyFn and keeps, per group, the
// record with the largest DurationSec. Order of first occurrence per group
// is preserved for stable output before the caller's final sort.
func dedupKeepMaxDuration(records []models.CanonicalRecord, keyFn func(models.CanonicalRecord) string) ([]models.CanonicalRecord, int) {
	best := make(map[string]models.CanonicalRecord, len(records))
	order := make([]string, 0, len(records))
	dropped := 0
	for _, r := range records {
		k := keyFn(r)
		if existing, ok := best[k]; ok {
			dropped++
			if r.DurationSec > existing.DurationSec {
				best[k] = r
			}
			continue
		}
		best[k] = r
		order = append(order, k)
	}
	out := make([]models.CanonicalRecord, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out, dropped
}

// orderByEventNumberA sorts records ascending by (eventAt, numberA, numberB),
// the output ordering required of Movistar and Altán.
func orderByEventNumberA(records []models.CanonicalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.EventAt.Equal(b.EventAt) {
			return a.EventAt.Before(b.EventAt)
		}
		if a.NumberA != b.NumberA {
			return a.NumberA < b.NumberA
		}
		return numberBOf(a) < numberBOf(b)
	})
}

func numberBOf(r models.CanonicalRecord) string {
	if r.NumberB == nil {
		return ""
	}
	return *r.NumberB
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func boolPtr(b bool) *bool {
	return &b
}

// targetCoordinateDefault implements the shared rule: false iff both
// decimal coordinates are null, else null (unknown).
func targetCoordinateDefault(latDec, lonDec *float64) *bool {
	if latDec == nil && lonDec == nil {
		return boolPtr(false)
	}
	return nil
}
