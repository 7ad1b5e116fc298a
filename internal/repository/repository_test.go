package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/models"
)

func TestBuildInsertQueryEmpty(t *testing.T) {
	query, args := buildInsertQuery(10, nil)
	if !strings.Contains(query, "INSERT INTO registros_telefonicos") {
		t.Fatalf("expected insert statement, got %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args for empty rows, got %d", len(args))
	}
}

func TestBuildInsertQueryMultipleRows(t *testing.T) {
	rows := []models.CanonicalRecord{
		{NumberA: "5512345678", RecordType: models.VozEntrante, EventAt: time.Date(2024, 7, 31, 9, 30, 15, 0, time.UTC)},
		{NumberA: "5598765432", RecordType: models.Datos, EventAt: time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)},
	}

	query, args := buildInsertQuery(99, rows)

	if got := strings.Count(query, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"); got != 2 {
		t.Fatalf("expected 2 value tuples, got %d", got)
	}
	if len(args) != 2*15 {
		t.Fatalf("expected %d args, got %d", 2*15, len(args))
	}
	if args[0].(int64) != 99 {
		t.Fatalf("expected fileID 99 as first arg, got %v", args[0])
	}
	if args[15].(int64) != 99 {
		t.Fatalf("expected fileID repeated for second row, got %v", args[15])
	}
	if args[1].(string) != "5512345678" {
		t.Fatalf("expected numberA for first row, got %v", args[1])
	}
}
