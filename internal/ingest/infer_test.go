package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInferStatusEvidencePriority(t *testing.T) {
	cases := []struct {
		name   string
		ev     Evidence
		source Source
		want   Status
	}{
		{"hours worked", Evidence{HoursWorked: decimal.RequireFromString("5.92")}, SourceSRP, StatusPresent},
		{"full punch pair", Evidence{HasCheckIn: true, HasCheckOut: true}, SourceCSV, StatusPresent},
		{"task minutes only", Evidence{TaskMinutes: 90}, SourceCSV, StatusPresent},
		{"no evidence srp", Evidence{}, SourceSRP, StatusAbsent},
		{"no evidence csv", Evidence{}, SourceCSV, StatusAbsent},
		{"lone check-in srp", Evidence{HasCheckIn: true}, SourceSRP, StatusHalfDay},
		{"lone check-out srp", Evidence{HasCheckOut: true}, SourceSRP, StatusHalfDay},
		{"lone check-in csv", Evidence{HasCheckIn: true}, SourceCSV, StatusLate},
		{"lone check-out csv", Evidence{HasCheckOut: true}, SourceCSV, StatusLate},
		{"hours beat lone punch", Evidence{HoursWorked: decimal.NewFromInt(8), HasCheckIn: true}, SourceCSV, StatusPresent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferStatus(tc.ev, tc.source); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// The two sources must disagree on the partial-evidence case and agree on
// everything else.
func TestInferStatusSourcesDivergeOnlyOnPartialEvidence(t *testing.T) {
	partial := Evidence{HasCheckIn: true}
	if InferStatus(partial, SourceSRP) == InferStatus(partial, SourceCSV) {
		t.Fatal("expected SRP and CSV to diverge on a lone punch")
	}

	for _, ev := range []Evidence{
		{},
		{HoursWorked: decimal.NewFromInt(8)},
		{HasCheckIn: true, HasCheckOut: true},
		{TaskMinutes: 30},
	} {
		if srp, csv := InferStatus(ev, SourceSRP), InferStatus(ev, SourceCSV); srp != csv {
			t.Fatalf("expected agreement for %+v, got srp=%s csv=%s", ev, srp, csv)
		}
	}
}
