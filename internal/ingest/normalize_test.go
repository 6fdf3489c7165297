package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testDate() time.Time {
	return time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeSRPRow(t *testing.T) {
	result := ParseSRP(srpSample, time.Time{})
	record, err := NewNormalizer().Normalize(result.Rows[0], result.Date, SourceSRP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.EmployeeCode != "TIPL1002" {
		t.Fatalf("expected TIPL1002, got %q", record.EmployeeCode)
	}
	if !record.Date.Equal(testDate()) {
		t.Fatalf("expected date %v, got %v", testDate(), record.Date)
	}
	if record.Status != StatusPresent {
		t.Fatalf("expected PRESENT, got %s", record.Status)
	}
	if !record.HoursWorked.Equal(decimal.RequireFromString("5.92")) {
		t.Fatalf("expected hours 5.92, got %s", record.HoursWorked)
	}
	wantIn := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	if record.CheckIn == nil || !record.CheckIn.Equal(wantIn) {
		t.Fatalf("expected check-in %v, got %v", wantIn, record.CheckIn)
	}
	if record.BreakOut == nil || record.BreakIn == nil {
		t.Fatal("expected break pair to be set")
	}
	if record.LunchOut != nil || record.LunchIn != nil {
		t.Fatal("expected no lunch pair for a 40-minute gap")
	}
}

func TestNormalizeUppercasesEmployeeCode(t *testing.T) {
	row := RawRow{Line: 1, Fields: map[string]string{
		FieldEmployeeCode: "tipl1002",
		FieldDate:         "2025-03-15",
		FieldStatus:       "PRESENT",
	}}
	record, err := NewNormalizer().Normalize(row, time.Time{}, SourceCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.EmployeeCode != "TIPL1002" {
		t.Fatalf("expected uppercased code, got %q", record.EmployeeCode)
	}
}

func TestNormalizeRejectsBadRows(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
	}{
		{"missing code", map[string]string{FieldDate: "2025-03-15"}},
		{"bad code", map[string]string{FieldEmployeeCode: "TIPL 1002!", FieldDate: "2025-03-15"}},
		{"bad date", map[string]string{FieldEmployeeCode: "TIPL1002", FieldDate: "not-a-date"}},
		{"bad status", map[string]string{FieldEmployeeCode: "TIPL1002", FieldDate: "2025-03-15", FieldStatus: "VACATIONING"}},
		{"bad hours", map[string]string{FieldEmployeeCode: "TIPL1002", FieldDate: "2025-03-15", FieldHoursWorked: "lots"}},
		{"negative hours", map[string]string{FieldEmployeeCode: "TIPL1002", FieldDate: "2025-03-15", FieldHoursWorked: "-1"}},
		{"bad clock time", map[string]string{FieldEmployeeCode: "TIPL1002", FieldDate: "2025-03-15", FieldCheckIn: "25:99"}},
	}

	n := NewNormalizer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := n.Normalize(RawRow{Line: 1, Fields: tc.fields}, time.Time{}, SourceCSV); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNormalizeEmptyNumericFieldsCoerceToZero(t *testing.T) {
	row := RawRow{Line: 1, Fields: map[string]string{
		FieldEmployeeCode: "TIPL1002",
		FieldDate:         "2025-03-15",
		FieldStatus:       "ABSENT",
		FieldHoursWorked:  "",
		FieldTaskMinutes:  "",
	}}
	record, err := NewNormalizer().Normalize(row, time.Time{}, SourceCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !record.HoursWorked.IsZero() {
		t.Fatalf("expected zero hours, got %s", record.HoursWorked)
	}
}

func TestNormalizeInfersWhenStatusAbsent(t *testing.T) {
	row := RawRow{Line: 1, Fields: map[string]string{
		FieldEmployeeCode: "TIPL1002",
		FieldDate:         "2025-03-15",
		FieldCheckIn:      "09:10",
	}}
	record, err := NewNormalizer().Normalize(row, time.Time{}, SourceCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != StatusLate {
		t.Fatalf("expected inferred LATE on the csv path, got %s", record.Status)
	}

	record, err = NewNormalizer().Normalize(row, time.Time{}, SourceSRP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != StatusHalfDay {
		t.Fatalf("expected inferred HALF_DAY on the srp path, got %s", record.Status)
	}
}

func TestNormalizeDeviceStatusAliases(t *testing.T) {
	for raw, want := range map[string]Status{"P": StatusPresent, "A": StatusAbsent, "MIS": StatusPresent, "present": StatusPresent} {
		row := RawRow{Line: 1, Fields: map[string]string{
			FieldEmployeeCode: "TIPL1002",
			FieldDate:         "2025-03-15",
			FieldStatus:       raw,
		}}
		record, err := NewNormalizer().Normalize(row, time.Time{}, SourceCSV)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if record.Status != want {
			t.Fatalf("expected %s for %q, got %s", want, raw, record.Status)
		}
	}
}

func TestNormalizeMissingDateFails(t *testing.T) {
	row := RawRow{Line: 1, Fields: map[string]string{FieldEmployeeCode: "TIPL1002"}}
	if _, err := NewNormalizer().Normalize(row, time.Time{}, SourceSRP); err == nil {
		t.Fatal("expected error for missing date")
	}
}
