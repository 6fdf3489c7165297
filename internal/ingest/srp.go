package ingest

import (
	"regexp"
	"strings"
	"time"
)

// SRP exports are loosely space-delimited fixed-device dumps: a few lines of
// header noise (device id, report date) followed by one line per employee.
// Parsing is heuristic; lines that do not look like data are skipped rather
// than reported, and per-line anomalies surface later during normalization.

var (
	srpDataLineRe   = regexp.MustCompile(`^\s*\d+\s+[A-Za-z]+\d+\b`)
	srpHeaderDateRe = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	srpEmpCodeRe    = regexp.MustCompile(`^[A-Za-z]+\d+$`)
	srpShiftCodeRe  = regexp.MustCompile(`^S\d+$`)
	srpClockTimeRe  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	srpHoursRe      = regexp.MustCompile(`^\d+\.\d{1,2}$`)
)

type SRPResult struct {
	Rows []RawRow
	// Date is the file-level attendance date: caller override, header
	// recovery, or today, in that order.
	Date time.Time
}

// ParseSRP tokenizes raw SRP text. overrideDate, when non-zero, wins over
// any date recovered from the file header.
func ParseSRP(text string, overrideDate time.Time) SRPResult {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	dataStart := len(lines)
	for i, line := range lines {
		if srpDataLineRe.MatchString(line) {
			dataStart = i
			break
		}
	}

	result := SRPResult{Date: resolveSRPDate(lines[:dataStart], overrideDate)}

	for i := dataStart; i < len(lines); i++ {
		row, ok := parseSRPLine(lines[i])
		if !ok {
			continue
		}
		row.Line = len(result.Rows) + 1
		result.Rows = append(result.Rows, row)
	}
	return result
}

func resolveSRPDate(headerLines []string, overrideDate time.Time) time.Time {
	if !overrideDate.IsZero() {
		return overrideDate
	}
	for _, line := range headerLines {
		if m := srpHeaderDateRe.FindStringSubmatch(line); m != nil {
			if parsed, err := time.Parse("02/01/2006", m[0]); err == nil {
				return parsed
			}
		}
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseSRPLine scans one data line. Layout, left to right: serial, employee
// code, card number, name tokens, shift code, shift start, then a mix of
// clock times and an hours value, optionally terminated by a status token.
func parseSRPLine(line string) (RawRow, bool) {
	tokens := strings.Fields(line)

	codeIdx := -1
	for i, token := range tokens {
		if srpEmpCodeRe.MatchString(token) {
			codeIdx = i
			break
		}
	}
	if codeIdx == -1 || codeIdx+1 >= len(tokens) {
		return RawRow{}, false
	}

	shiftIdx := -1
	for i := codeIdx + 2; i < len(tokens); i++ {
		if srpShiftCodeRe.MatchString(tokens[i]) {
			shiftIdx = i
			break
		}
	}
	if shiftIdx == -1 {
		return RawRow{}, false
	}

	fields := map[string]string{
		FieldEmployeeCode: strings.ToUpper(tokens[codeIdx]),
		FieldCardNo:       tokens[codeIdx+1],
		FieldName:         strings.Join(tokens[codeIdx+2:shiftIdx], " "),
		FieldShift:        tokens[shiftIdx],
	}
	if shiftIdx+1 < len(tokens) {
		fields[FieldShiftStart] = tokens[shiftIdx+1]
	}

	var times []string
	for i := shiftIdx + 1; i < len(tokens); i++ {
		token := tokens[i]
		if status, ok := srpStatusToken(token); ok {
			fields[FieldStatus] = status
			break
		}
		if srpClockTimeRe.MatchString(token) {
			times = append(times, token)
			continue
		}
		if srpHoursRe.MatchString(token) {
			// last hours-shaped token wins
			fields[FieldHoursWorked] = token
		}
	}

	slots := AssignSlots(times)
	setIfPresent(fields, FieldCheckIn, slots.CheckIn)
	setIfPresent(fields, FieldCheckOut, slots.CheckOut)
	setIfPresent(fields, FieldLunchOut, slots.LunchOut)
	setIfPresent(fields, FieldLunchIn, slots.LunchIn)
	setIfPresent(fields, FieldBreakOut, slots.BreakOut)
	setIfPresent(fields, FieldBreakIn, slots.BreakIn)

	return RawRow{Fields: fields}, true
}

func setIfPresent(fields map[string]string, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// srpStatusToken maps explicit device status markers; MIS (missed punch)
// counts as present.
func srpStatusToken(token string) (string, bool) {
	switch strings.ToUpper(token) {
	case "P", "PRESENT", "MIS":
		return string(StatusPresent), true
	case "A", "ABSENT":
		return string(StatusAbsent), true
	}
	return "", false
}
