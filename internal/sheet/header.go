package sheet

import "strings"

// HeaderRow is a row that scored at or above the detection threshold.
type HeaderRow struct {
	Index int
	Score int
	Cells []string
}

// Block is one data frame: the header row that opened it plus every data
// row up to the next header row (or end of sheet).
type Block struct {
	Header      []string
	HeaderIndex int
	Rows        [][]string
}

// RawBlock is a block after column mapping: Columns holds canonical column
// names, position-aligned with Rows.
type RawBlock struct {
	Columns []string
	Rows    [][]string
}

const maxHeaderScanRows = 600

// ScoreRow counts the distinct expected tokens present among the row's
// non-empty, normalized cells.
func ScoreRow(cells []string, tokens []string) int {
	normCells := make([]string, 0, len(cells))
	for _, c := range cells {
		if nc := normalizeToken(c); nc != "" {
			normCells = append(normCells, nc)
		}
	}
	score := 0
	for _, tok := range tokens {
		nt := normalizeToken(tok)
		for _, nc := range normCells {
			if strings.Contains(nc, nt) {
				score++
				break
			}
		}
	}
	return score
}

// FindHeaderRows scans up to the first 600 rows for rows scoring at or above
// threshold. When singleBest is true only the highest-scoring row survives,
// with an early break once a row reaches score 6 (Telcel/AT&T). Otherwise
// every row clearing the threshold is returned (Movistar/Altán multi-block).
func FindHeaderRows(rows [][]string, tokens []string, threshold int, singleBest bool) []HeaderRow {
	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	if singleBest {
		var best *HeaderRow
		for i := 0; i < limit; i++ {
			score := ScoreRow(rows[i], tokens)
			if score >= threshold && (best == nil || score > best.Score) {
				hr := HeaderRow{Index: i, Score: score, Cells: rows[i]}
				best = &hr
			}
			if score >= 6 {
				break
			}
		}
		if best == nil {
			return nil
		}
		return []HeaderRow{*best}
	}

	var out []HeaderRow
	for i := 0; i < limit; i++ {
		score := ScoreRow(rows[i], tokens)
		if score >= threshold {
			out = append(out, HeaderRow{Index: i, Score: score, Cells: rows[i]})
		}
	}
	return out
}

// ExtractBlocks splits rows into one Block per header row, each block
// running to the next header row (or end of sheet).
func ExtractBlocks(rows [][]string, headers []HeaderRow) []Block {
	blocks := make([]Block, 0, len(headers))
	for i, h := range headers {
		start := h.Index + 1
		end := len(rows)
		if i+1 < len(headers) {
			end = headers[i+1].Index
		}
		if start > end {
			start = end
		}
		blocks = append(blocks, Block{Header: h.Cells, HeaderIndex: h.Index, Rows: rows[start:end]})
	}
	return blocks
}

// MapColumns maps each header cell to a canonical column name by
// longest-prefix match against aliases (alias key -> canonical name). Cells
// matching no alias map to "".
func MapColumns(header []string, aliases map[string]string) []string {
	out := make([]string, len(header))
	for i, raw := range header {
		norm := normalizeToken(raw)
		best := ""
		bestLen := -1
		for k, canonical := range aliases {
			nk := normalizeToken(k)
			if nk == "" {
				continue
			}
			if strings.HasPrefix(norm, nk) && len(nk) > bestLen {
				best = canonical
				bestLen = len(nk)
			}
		}
		out[i] = best
	}
	return out
}

// BuildRawBlock maps a Block's header to canonical columns, drops unmapped
// and entirely-empty columns, strips cell whitespace, and drops rows that
// re-echo the header or are left fully blank.
func BuildRawBlock(block Block, aliases map[string]string) *RawBlock {
	cols := MapColumns(block.Header, aliases)

	dataRows := make([][]string, 0, len(block.Rows))
	for _, r := range block.Rows {
		if !rowEchoesHeader(r, block.Header) {
			dataRows = append(dataRows, r)
		}
	}

	keep := make([]int, 0, len(cols))
	for i, c := range cols {
		if c == "" {
			continue
		}
		if columnIsEmpty(dataRows, i) {
			continue
		}
		keep = append(keep, i)
	}

	outCols := make([]string, len(keep))
	for j, i := range keep {
		outCols[j] = cols[i]
	}

	rb := &RawBlock{Columns: outCols}
	for _, r := range block.Rows {
		if rowEchoesHeader(r, block.Header) {
			continue
		}
		row := make([]string, len(keep))
		blank := true
		for j, i := range keep {
			var v string
			if i < len(r) {
				v = strings.TrimSpace(r[i])
			}
			row[j] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rb.Rows = append(rb.Rows, row)
	}
	return rb
}

// Value returns the trimmed cell at (row, col), and whether it was non-empty.
func (b *RawBlock) Value(row int, col string) (string, bool) {
	for i, c := range b.Columns {
		if c != col {
			continue
		}
		if row < 0 || row >= len(b.Rows) || i >= len(b.Rows[row]) {
			return "", false
		}
		v := b.Rows[row][i]
		return v, v != ""
	}
	return "", false
}

// HasColumn reports whether col is present in the block.
func (b *RawBlock) HasColumn(col string) bool {
	for _, c := range b.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func columnIsEmpty(rows [][]string, col int) bool {
	for _, r := range rows {
		if col < len(r) && strings.TrimSpace(r[col]) != "" {
			return false
		}
	}
	return true
}

func rowEchoesHeader(row, header []string) bool {
	if len(row) == 0 {
		return false
	}
	matches := 0
	total := 0
	for i, cell := range row {
		nc := normalizeToken(cell)
		if nc == "" {
			continue
		}
		total++
		if i < len(header) && normalizeToken(header[i]) == nc {
			matches++
		}
	}
	return total > 0 && matches == total
}

var accentFold = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ñ': 'n', 'ü': 'u',
	'Á': 'a', 'É': 'e', 'Í': 'i', 'Ó': 'o', 'Ú': 'u', 'Ñ': 'n', 'Ü': 'u',
}

// normalizeToken lowercases, folds Spanish accents, and collapses whitespace
// so header tokens compare independent of case/accent/spacing.
func normalizeToken(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range strings.ToLower(s) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if r == ' ' || r == '\t' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
