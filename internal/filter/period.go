package filter

import (
	"fmt"
	"strings"
	"time"
)

type layout struct {
	format  string
	hasDate bool
	hasTime bool
	hasYear bool
}

// Day-first layouts come before ISO ones; Go's "2" and "1" accept one or two digits.
var periodLayouts = []layout{
	{"2.1.2006 15:04:05", true, true, true},
	{"2.1.2006 15:04", true, true, true},
	{"2.1.2006", true, false, true},
	{"2/1/2006 15:04", true, true, true},
	{"2/1/2006", true, false, true},
	{"2006-1-2 15:04:05", true, true, true},
	{"2006-1-2 15:04", true, true, true},
	{"2006-1-2", true, false, true},
	{"2.1 15:04", true, true, false},
	{"2.1", true, false, false},
	{"15:04:05", false, true, false},
	{"15:04", false, true, false},
}

// ParsePeriodBound parses one side of the period filter.
//
// A time-only input is placed on ref's date. A date without a year takes the
// year of ref. An end bound given without a time of day covers the whole day.
func ParsePeriodBound(input string, ref time.Time, isStart bool) (time.Time, error) {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, l := range periodLayouts {
		t, err := time.ParseInLocation(l.format, input, ref.Location())
		if err != nil {
			continue
		}

		year, month, day := t.Date()
		if !l.hasDate {
			year, month, day = ref.Date()
		} else if !l.hasYear {
			year = ref.Year()
		}

		hour, minute, sec := t.Clock()
		if !l.hasTime && !isStart {
			hour, minute, sec = 23, 59, 59
		}
		return time.Date(year, month, day, hour, minute, sec, 0, ref.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", input)
}
