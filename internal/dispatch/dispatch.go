// Package dispatch selects the carrier.Parser responsible for a given file.
package dispatch

import (
	"path/filepath"
	"strings"

	"github.com/phantoooomCam/sabanas-server/internal/carrier"
)

// carrierIDTable maps the numeric carrier IDs archivos may carry to the
// carrier token used everywhere else.
var carrierIDTable = map[int]string{
	1: "TELCEL", 2: "TELCEL", 3: "TELCEL", 14: "TELCEL",
	4: "ATT", 13: "ATT",
	5: "MOVISTAR",
	12: "ALTAN",
}

var carrierTokens = []string{"ALTAN", "ALTÁN", "MOVISTAR", "TELEFONICA", "TELCEL", "AT&T", "ATT"}

func normalizeCarrierToken(tok string) string {
	switch tok {
	case "ALTÁN":
		return "ALTAN"
	case "TELEFONICA":
		return "MOVISTAR"
	case "AT&T":
		return "ATT"
	default:
		return tok
	}
}

// Resolve picks the carrier for a file by: carrierID table lookup, then
// case-insensitive token match against the given metadata fields, then a
// filename substring match, then a TELCEL default.
func Resolve(carrierID *int, metadataFields []string, localPath string) carrier.Parser {
	if carrierID != nil {
		if tok, ok := carrierIDTable[*carrierID]; ok {
			return ForToken(tok)
		}
	}

	for _, field := range metadataFields {
		if tok, ok := matchToken(field); ok {
			return ForToken(tok)
		}
	}

	if tok, ok := matchToken(filepath.Base(localPath)); ok {
		return ForToken(tok)
	}

	return ForToken("TELCEL")
}

func matchToken(s string) (string, bool) {
	upper := strings.ToUpper(s)
	for _, tok := range carrierTokens {
		if strings.Contains(upper, tok) {
			return normalizeCarrierToken(tok), true
		}
	}
	return "", false
}

// ForToken returns the carrier.Parser for a canonical carrier token,
// defaulting to Telcel for anything unrecognized.
func ForToken(tok string) carrier.Parser {
	switch tok {
	case "ATT":
		return carrier.NewATT()
	case "MOVISTAR":
		return carrier.NewMovistar()
	case "ALTAN":
		return carrier.NewAltan()
	default:
		return carrier.NewTelcel()
	}
}
