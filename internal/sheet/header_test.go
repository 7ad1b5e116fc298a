package sheet

import "testing"

func telcelTokens() []string {
	return []string{"telefono", "tipo", "numero a", "numero b", "fecha", "hora", "durac", "imei", "latitud", "longitud", "azimuth"}
}

func TestScoreRow(t *testing.T) {
	header := []string{"TELEFONO", "TIPO", "NUMERO A", "NUMERO B", "FECHA", "HORA", "DURACION", "IMEI", "LATITUD", "LONGITUD", "AZIMUTH"}
	if got := ScoreRow(header, telcelTokens()); got != 11 {
		t.Errorf("ScoreRow = %d, want 11", got)
	}

	junk := []string{"", "foo", "bar"}
	if got := ScoreRow(junk, telcelTokens()); got != 0 {
		t.Errorf("ScoreRow(junk) = %d, want 0", got)
	}
}

func TestFindHeaderRowsSingleBest(t *testing.T) {
	rows := [][]string{
		{"some title"},
		{"TELEFONO", "TIPO", "NUMERO A", "NUMERO B", "FECHA", "HORA"},
		{"5512345678", "VOZ", "5512345678", "5519876543", "01/01/2024", "10:00:00"},
	}
	headers := FindHeaderRows(rows, telcelTokens(), 5, true)
	if len(headers) != 1 {
		t.Fatalf("expected exactly 1 header row, got %d", len(headers))
	}
	if headers[0].Index != 1 {
		t.Errorf("header index = %d, want 1", headers[0].Index)
	}
}

func TestFindHeaderRowsMultiBlock(t *testing.T) {
	movistarTokens := []string{"tipo cdr", "numero a", "numero b", "tipo evento", "fecha evento", "hora evento", "duracion", "imei", "imsi", "codbts", "latitud", "longitud"}
	rows := [][]string{
		{"TIPO CDR", "NUMERO A", "NUMERO B", "TIPO EVENTO", "FECHA EVENTO", "HORA EVENTO", "DURACION", "IMEI", "IMSI", "codBTS", "LATITUD", "LONGITUD"},
		{"GSM", "5512345678", "5519876543", "ENTRANTE", "20240101", "100000", "30", "123456789012345", "999", "1", "19.4", "-99.1"},
		{"TIPO CDR", "NUMERO A", "NUMERO B", "TIPO EVENTO", "FECHA EVENTO", "HORA EVENTO", "DURACION", "IMEI", "IMSI", "codBTS", "LATITUD", "LONGITUD"},
		{"SMS", "5512345678", "5519876543", "SALIENTE", "20240102", "110000", "0", "", "999", "1", "19.4", "-99.1"},
	}
	headers := FindHeaderRows(rows, movistarTokens, 5, false)
	if len(headers) != 2 {
		t.Fatalf("expected 2 header rows, got %d", len(headers))
	}

	blocks := ExtractBlocks(rows, headers)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if len(blocks[0].Rows) != 1 || len(blocks[1].Rows) != 1 {
		t.Errorf("unexpected block row counts: %d, %d", len(blocks[0].Rows), len(blocks[1].Rows))
	}
}

func TestMapColumnsLongestPrefix(t *testing.T) {
	aliases := map[string]string{
		"numero a":  "numero_a",
		"numero b":  "numero_b",
		"fecha":     "fecha",
		"fecha evento": "fecha_evento",
	}
	header := []string{"NUMERO A", "NUMERO B", "FECHA EVENTO"}
	got := MapColumns(header, aliases)
	want := []string{"numero_a", "numero_b", "fecha_evento"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MapColumns[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildRawBlockDropsEmptyColumnsAndEchoRows(t *testing.T) {
	block := Block{
		Header: []string{"TELEFONO", "NUMERO A", "UNUSED"},
		Rows: [][]string{
			{"5512345678", "5519876543", ""},
			{"TELEFONO", "NUMERO A", "UNUSED"},
			{"", "", ""},
		},
	}
	aliases := map[string]string{"telefono": "telefono", "numero a": "numero_a", "unused": "unused"}
	rb := BuildRawBlock(block, aliases)

	if rb.HasColumn("unused") {
		t.Errorf("expected empty 'unused' column to be dropped")
	}
	if len(rb.Rows) != 1 {
		t.Fatalf("expected 1 surviving row (echo + blank dropped), got %d", len(rb.Rows))
	}
	v, ok := rb.Value(0, "numero_a")
	if !ok || v != "5519876543" {
		t.Errorf("Value(0, numero_a) = %q, %v, want 5519876543, true", v, ok)
	}
}

func TestNormalizeTokenFoldsAccents(t *testing.T) {
	if got := normalizeToken("NÚMERO  ORIGEN"); got != "numero origen" {
		t.Errorf("normalizeToken = %q, want %q", got, "numero origen")
	}
}
