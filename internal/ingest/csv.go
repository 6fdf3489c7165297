package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSV exports are header-driven: columns are located by name, not position.
// A file missing its required headers fails as a whole before any row is
// looked at; individual bad rows are the normalizer's problem.

var requiredCSVHeaders = []string{FieldEmployeeCode, FieldDate}

// csvHeaderAliases maps normalized header spellings seen in the wild onto
// canonical field names.
var csvHeaderAliases = map[string]string{
	"employee_code":    FieldEmployeeCode,
	"employeecode":     FieldEmployeeCode,
	"emp_code":         FieldEmployeeCode,
	"code":             FieldEmployeeCode,
	"employee_name":    FieldName,
	"name":             FieldName,
	"date":             FieldDate,
	"attendance_date":  FieldDate,
	"status":           FieldStatus,
	"check_in":         FieldCheckIn,
	"checkin":          FieldCheckIn,
	"in_time":          FieldCheckIn,
	"check_out":        FieldCheckOut,
	"checkout":         FieldCheckOut,
	"out_time":         FieldCheckOut,
	"lunch_out":        FieldLunchOut,
	"lunch_in":         FieldLunchIn,
	"break_out":        FieldBreakOut,
	"break_in":         FieldBreakIn,
	"hours_worked":     FieldHoursWorked,
	"hours":            FieldHoursWorked,
	"shift":            FieldShift,
	"shift_start":      FieldShiftStart,
	"task_minutes":     FieldTaskMinutes,
	"activity_minutes": FieldTaskMinutes,
}

// HeaderError is the structural failure for a CSV missing required columns.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

var ErrEmptyFile = errors.New("file contains no data rows")

// ParseCSV reads delimited text with a header row into raw rows. Row numbers
// are 1-based over data rows.
func ParseCSV(reader io.Reader) ([]RawRow, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := map[string]bool{}
	for i, raw := range header {
		canonical, ok := csvHeaderAliases[normalizeHeader(raw)]
		if !ok {
			continue
		}
		columns[i] = canonical
		seen[canonical] = true
	}

	var missing []string
	for _, required := range requiredCSVHeaders {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}

	var rows []RawRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		fields := make(map[string]string, len(columns))
		empty := true
		for i, value := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			value = strings.TrimSpace(value)
			fields[columns[i]] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, RawRow{Line: len(rows) + 1, Fields: fields})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func normalizeHeader(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "\ufeff")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	return cleaned
}
