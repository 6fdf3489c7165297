package ingest

import "github.com/shopspring/decimal"

// Evidence is what a row offers when it carries no explicit status.
type Evidence struct {
	HoursWorked decimal.Decimal
	HasCheckIn  bool
	HasCheckOut bool
	// TaskMinutes covers secondary work signals recorded outside the
	// timesheet, e.g. tracked task or activity minutes.
	TaskMinutes int
}

var halfDayHours = decimal.NewFromInt(4)

// InferStatus decides a status from partial evidence. The partial-evidence
// case deliberately differs by source: a lone punch on a device export reads
// as a half day, the same thing on a hand-maintained CSV reads as late.
func InferStatus(ev Evidence, source Source) Status {
	worked := ev.HoursWorked.IsPositive()
	fullPair := ev.HasCheckIn && ev.HasCheckOut

	if worked || fullPair || ev.TaskMinutes > 0 {
		return StatusPresent
	}

	if ev.HasCheckIn != ev.HasCheckOut {
		if source == SourceSRP && ev.HoursWorked.LessThan(halfDayHours) {
			return StatusHalfDay
		}
		if source == SourceCSV {
			return StatusLate
		}
	}

	if !ev.HasCheckIn && !ev.HasCheckOut {
		return StatusAbsent
	}

	// Conservative default for anything the table above does not cover.
	return StatusPresent
}
