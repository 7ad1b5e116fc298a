// Package sheet reads carrier CDR workbooks (.xlsx/.xls/.csv/.txt) into raw
// string grids and locates header rows and data blocks within them.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"
)

// Sheet is a single worksheet (or the whole file, for CSV/TXT) read as a raw
// string grid with no header assumption.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadWorkbook reads path and returns one Sheet per worksheet. CSV/TXT files
// produce exactly one Sheet.
func ReadWorkbook(path string) ([]Sheet, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xls":
		return readXLSX(path)
	case ".csv", ".txt":
		rows, err := readDelimited(path)
		if err != nil {
			return nil, err
		}
		return []Sheet{{Name: filepath.Base(path), Rows: rows}}, nil
	default:
		return nil, fmt.Errorf("sheet: unsupported file extension %q", ext)
	}
}

func readXLSX(path string) ([]Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open xlsx %s: %w", path, err)
	}

	out := make([]Sheet, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		rows := make([][]string, 0, len(sh.Rows))
		for _, row := range sh.Rows {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = c.String()
			}
			rows = append(rows, cells)
		}
		out = append(out, Sheet{Name: sh.Name, Rows: rows})
	}
	return out, nil
}

// readDelimited probes comma vs tab on the first non-empty line, then reads
// the whole file with encoding/csv using that delimiter.
func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open %s: %w", path, err)
	}
	defer f.Close()

	delim, err := probeDelimiter(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("sheet: seek %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: parse %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func probeDelimiter(f *os.File) (rune, error) {
	buf := make([]byte, 4096)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("sheet: probe delimiter: %w", err)
	}
	line := strings.TrimLeft(string(buf[:n]), "\r\n")
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return '\t', nil
	}
	return ',', nil
}
