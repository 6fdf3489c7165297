package attendance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/ingest"
)

// Record is a persisted attendance row. At most one exists per
// (employee, date) pair; re-import overwrites in place.
type Record struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeCode string          `json:"employeeCode"`
	Date         time.Time       `json:"attendanceDate"`
	Status       ingest.Status   `json:"status"`
	CheckIn      *time.Time      `json:"checkInTime,omitempty"`
	CheckOut     *time.Time      `json:"checkOutTime,omitempty"`
	LunchOut     *time.Time      `json:"lunchOutTime,omitempty"`
	LunchIn      *time.Time      `json:"lunchInTime,omitempty"`
	BreakOut     *time.Time      `json:"breakOutTime,omitempty"`
	BreakIn      *time.Time      `json:"breakInTime,omitempty"`
	HoursWorked  decimal.Decimal `json:"hoursWorked"`
	Shift        string          `json:"shift,omitempty"`
	ShiftStart   string          `json:"shiftStart,omitempty"`
	ImportSource string          `json:"importSource"`
	ImportBatch  string          `json:"importBatch"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// Line is the 1-based source row, carried for error attribution only.
	Line int `json:"-"`
}

// FromNormalized binds a normalized row to a resolved employee and an
// upload batch.
func FromNormalized(rec ingest.Record, employeeID, batchID string) Record {
	return Record{
		EmployeeID:   employeeID,
		EmployeeCode: rec.EmployeeCode,
		Date:         rec.Date,
		Status:       rec.Status,
		CheckIn:      rec.CheckIn,
		CheckOut:     rec.CheckOut,
		LunchOut:     rec.LunchOut,
		LunchIn:      rec.LunchIn,
		BreakOut:     rec.BreakOut,
		BreakIn:      rec.BreakIn,
		HoursWorked:  rec.HoursWorked,
		Shift:        rec.Shift,
		ShiftStart:   rec.ShiftStart,
		ImportSource: string(rec.Source),
		ImportBatch:  batchID,
		Line:         rec.Line,
	}
}

// Warning is a non-fatal note surfaced to the caller, e.g. an employee
// auto-created from a device export.
type Warning struct {
	Row      int    `json:"row"`
	Warning  string `json:"warning"`
	Employee string `json:"employee"`
}

// Filter narrows attendance queries.
type Filter struct {
	EmployeeCode string
	From         time.Time
	To           time.Time
}
