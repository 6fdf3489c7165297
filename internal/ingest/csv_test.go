package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSVHeaderMapping(t *testing.T) {
	input := "Employee Code,Date,Status,Check In,Check Out,Hours Worked\n" +
		"tipl1002,2025-03-15,PRESENT,09:00,18:00,8.5\n" +
		"TIPL1003,2025-03-15,,09:10,,\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Get(FieldEmployeeCode); got != "tipl1002" {
		t.Fatalf("expected raw code preserved, got %q", got)
	}
	if got := rows[0].Get(FieldCheckIn); got != "09:00" {
		t.Fatalf("expected check-in 09:00, got %q", got)
	}
	if rows[1].Line != 2 {
		t.Fatalf("expected row number 2, got %d", rows[1].Line)
	}
}

func TestParseCSVMissingRequiredHeaders(t *testing.T) {
	input := "Name,Status\nJohn,PRESENT\n"
	_, err := ParseCSV(strings.NewReader(input))

	var headerErr *HeaderError
	if !errors.As(err, &headerErr) {
		t.Fatalf("expected HeaderError, got %v", err)
	}
	if len(headerErr.Missing) != 2 {
		t.Fatalf("expected 2 missing headers, got %v", headerErr.Missing)
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := ParseCSV(strings.NewReader("employee_code,date\n")); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile for header-only file, got %v", err)
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	input := "employee_code,date\nTIPL1002,2025-03-15\n,\n"
	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected blank row skipped, got %d rows", len(rows))
	}
}

func TestParseCSVIgnoresUnknownColumns(t *testing.T) {
	input := "employee_code,date,favorite_color\nTIPL1002,2025-03-15,green\n"
	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rows[0].Fields["favorite_color"]; ok {
		t.Fatal("unknown column must not be mapped")
	}
}
