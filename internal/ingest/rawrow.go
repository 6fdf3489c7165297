package ingest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source tags which parser produced a row.
type Source string

const (
	SourceSRP Source = "srp"
	SourceCSV Source = "csv"
)

// Status is the canonical attendance classification.
type Status string

const (
	StatusPresent       Status = "PRESENT"
	StatusAbsent        Status = "ABSENT"
	StatusLeaveApproved Status = "LEAVE_APPROVED"
	StatusWFHApproved   Status = "WFH_APPROVED"
	StatusLate          Status = "LATE"
	StatusHalfDay       Status = "HALF_DAY"
)

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusLeaveApproved, StatusWFHApproved, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// Canonical RawRow field names shared by both parsers.
const (
	FieldEmployeeCode = "employee_code"
	FieldName         = "name"
	FieldCardNo       = "card_no"
	FieldDate         = "date"
	FieldStatus       = "status"
	FieldCheckIn      = "check_in"
	FieldCheckOut     = "check_out"
	FieldLunchOut     = "lunch_out"
	FieldLunchIn      = "lunch_in"
	FieldBreakOut     = "break_out"
	FieldBreakIn      = "break_in"
	FieldHoursWorked  = "hours_worked"
	FieldShift        = "shift"
	FieldShiftStart   = "shift_start"
	FieldTaskMinutes  = "task_minutes"
)

// RawRow is one physical input line reduced to field name -> raw string.
// It only lives between parsing and normalization.
type RawRow struct {
	Line   int
	Fields map[string]string
}

func (r RawRow) Get(field string) string {
	return r.Fields[field]
}

// RowError describes a single rejected row; Row is 1-based over data rows.
type RowError struct {
	Row     int               `json:"row"`
	Message string            `json:"error"`
	Data    map[string]string `json:"data,omitempty"`
}

// Record is a normalized attendance row, keyed by employee code until the
// resolver maps it to a stored employee.
type Record struct {
	EmployeeCode string
	EmployeeName string
	Date         time.Time
	Status       Status
	CheckIn      *time.Time
	CheckOut     *time.Time
	LunchOut     *time.Time
	LunchIn      *time.Time
	BreakOut     *time.Time
	BreakIn      *time.Time
	HoursWorked  decimal.Decimal
	Shift        string
	ShiftStart   string
	Source       Source
	Line         int
}
