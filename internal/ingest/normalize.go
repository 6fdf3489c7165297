package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// rowSchema is the field-level contract a raw row must satisfy before it
// becomes a Record.
type rowSchema struct {
	EmployeeCode string `validate:"required,alphanum,max=32"`
	Status       string `validate:"omitempty,oneof=PRESENT ABSENT LEAVE_APPROVED WFH_APPROVED LATE HALF_DAY"`
	Shift        string `validate:"omitempty,max=32"`
}

type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer() *Normalizer {
	return &Normalizer{validate: validator.New()}
}

// Normalize validates and coerces one raw row. defaultDate supplies the
// attendance date for rows without one (the SRP file-level date). Numeric
// fields tolerate empty strings, coercing to zero.
func (n *Normalizer) Normalize(row RawRow, defaultDate time.Time, source Source) (Record, error) {
	code := strings.ToUpper(strings.TrimSpace(row.Get(FieldEmployeeCode)))
	status := normalizeStatusValue(row.Get(FieldStatus))

	schema := rowSchema{
		EmployeeCode: code,
		Status:       status,
		Shift:        strings.TrimSpace(row.Get(FieldShift)),
	}
	if err := n.validate.Struct(schema); err != nil {
		return Record{}, schemaError(err)
	}

	date := defaultDate
	if raw := strings.TrimSpace(row.Get(FieldDate)); raw != "" {
		parsed, err := parseRowDate(raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid date %q", raw)
		}
		date = parsed
	}
	if date.IsZero() {
		return Record{}, fmt.Errorf("missing attendance date")
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	hours := decimal.Zero
	if raw := strings.TrimSpace(row.Get(FieldHoursWorked)); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid hours value %q", raw)
		}
		if parsed.IsNegative() {
			return Record{}, fmt.Errorf("hours must not be negative, got %s", raw)
		}
		hours = parsed
	}

	taskMinutes := 0
	if raw := strings.TrimSpace(row.Get(FieldTaskMinutes)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return Record{}, fmt.Errorf("invalid task minutes %q", raw)
		}
		taskMinutes = parsed
	}

	record := Record{
		EmployeeCode: code,
		EmployeeName: strings.TrimSpace(row.Get(FieldName)),
		Date:         date,
		HoursWorked:  hours,
		Shift:        schema.Shift,
		ShiftStart:   strings.TrimSpace(row.Get(FieldShiftStart)),
		Source:       source,
		Line:         row.Line,
	}

	for field, target := range map[string]**time.Time{
		FieldCheckIn:  &record.CheckIn,
		FieldCheckOut: &record.CheckOut,
		FieldLunchOut: &record.LunchOut,
		FieldLunchIn:  &record.LunchIn,
		FieldBreakOut: &record.BreakOut,
		FieldBreakIn:  &record.BreakIn,
	} {
		parsed, err := parseClockOnDate(date, row.Get(field))
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s value %q", field, row.Get(field))
		}
		*target = parsed
	}

	if status != "" {
		record.Status = Status(status)
	} else {
		record.Status = InferStatus(Evidence{
			HoursWorked: hours,
			HasCheckIn:  record.CheckIn != nil,
			HasCheckOut: record.CheckOut != nil,
			TaskMinutes: taskMinutes,
		}, source)
	}

	return record, nil
}

// normalizeStatusValue widens device-style single letters to the canonical
// enum; anything else is passed through uppercased for schema validation.
func normalizeStatusValue(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	switch cleaned {
	case "P", "MIS":
		return string(StatusPresent)
	case "A":
		return string(StatusAbsent)
	}
	return cleaned
}

func parseRowDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseClockOnDate pins an HH:MM (or HH:MM:SS) stamp onto the attendance
// date. Empty input is not an error; it yields nil.
func parseClockOnDate(date time.Time, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			stamp := time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
			return &stamp, nil
		}
	}
	return nil, fmt.Errorf("unrecognized clock time %q", raw)
}

func schemaError(err error) error {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		first := invalid[0]
		return fmt.Errorf("field %s failed %s validation", strings.ToLower(first.Field()), first.Tag())
	}
	return err
}
