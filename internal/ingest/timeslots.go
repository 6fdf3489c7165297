package ingest

import (
	"strconv"
	"strings"
)

// SlotAssignment maps an ordered list of clock times onto the attendance
// time fields. Values are raw HH:MM strings.
type SlotAssignment struct {
	CheckIn  string
	CheckOut string
	LunchOut string
	LunchIn  string
	BreakOut string
	BreakIn  string
}

// lunchThresholdMinutes splits a paired out/in window on a 4-time line:
// strictly greater than 45 minutes counts as lunch, otherwise as a break.
const lunchThresholdMinutes = 45

type slotRule struct {
	count  int
	assign func(times []string) SlotAssignment
}

// slotRules is evaluated in order; the first matching count wins. New device
// export variants slot in as extra rules without touching the scan loop.
var slotRules = []slotRule{
	{count: 2, assign: func(t []string) SlotAssignment {
		return SlotAssignment{CheckIn: t[0], CheckOut: t[1]}
	}},
	{count: 3, assign: func(t []string) SlotAssignment {
		return SlotAssignment{CheckIn: t[0], BreakOut: t[1], CheckOut: t[2]}
	}},
	{count: 4, assign: func(t []string) SlotAssignment {
		out := SlotAssignment{CheckIn: t[0], CheckOut: t[3]}
		if gapMinutes(t[1], t[2]) > lunchThresholdMinutes {
			out.LunchOut, out.LunchIn = t[1], t[2]
		} else {
			out.BreakOut, out.BreakIn = t[1], t[2]
		}
		return out
	}},
	{count: 6, assign: func(t []string) SlotAssignment {
		return SlotAssignment{CheckIn: t[0], BreakOut: t[1], BreakIn: t[2], LunchOut: t[3], LunchIn: t[4], CheckOut: t[5]}
	}},
}

// AssignSlots applies the first slot rule matching len(times). Any other
// count maps only the first and last time to check-in/check-out.
func AssignSlots(times []string) SlotAssignment {
	for _, rule := range slotRules {
		if rule.count == len(times) {
			return rule.assign(times)
		}
	}
	if len(times) == 0 {
		return SlotAssignment{}
	}
	if len(times) == 1 {
		return SlotAssignment{CheckIn: times[0]}
	}
	return SlotAssignment{CheckIn: times[0], CheckOut: times[len(times)-1]}
}

// gapMinutes returns the minutes between two HH:MM stamps on the same day.
// A window crossing midnight wraps forward.
func gapMinutes(from, to string) int {
	start, okFrom := clockMinutes(from)
	end, okTo := clockMinutes(to)
	if !okFrom || !okTo {
		return 0
	}
	diff := end - start
	if diff < 0 {
		diff += 24 * 60
	}
	return diff
}

func clockMinutes(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
