package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dayKeys maps time.Weekday (Sunday = 0) to the JSON keys used in the
// stored working-hours document.
var dayKeys = [7]string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

type DayHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// WeeklySchedule is either a 24/7 flag or seven per-day windows. It is
// consumed read-only; malformed entries degrade instead of erroring.
type WeeklySchedule struct {
	Is24x7 bool                `json:"is24_7"`
	Days   map[string]DayHours `json:"days"`
}

// NextOpening names the first upcoming day delivery opens again.
// DaysAhead is 0 for later today, 1 for tomorrow, and so on.
type NextOpening struct {
	Weekday   time.Weekday `json:"-"`
	Day       string       `json:"day"`
	Start     string       `json:"start"`
	DaysAhead int          `json:"days_ahead"`
}

// AvailableAt reports whether delivery is open at t. The window is start
// inclusive, end exclusive, so a day with start == end is never open.
// Unparsable times make the day count as open.
func (s WeeklySchedule) AvailableAt(t time.Time) bool {
	if s.Is24x7 {
		return true
	}

	day, ok := s.Days[dayKeys[t.Weekday()]]
	if !ok {
		return true
	}
	if !day.Enabled {
		return false
	}

	start, err := parseClock(day.Start)
	if err != nil {
		return true
	}
	end, err := parseClock(day.End)
	if err != nil {
		return true
	}

	now := t.Hour()*60 + t.Minute()
	return start <= now && now < end
}

// NextOpeningAt scans forward from t (today inclusive) across the 7-day
// cycle. Today only qualifies when its start time is still ahead of t.
// Nil means no day in the cycle is enabled, so there is no ETA to give.
func (s WeeklySchedule) NextOpeningAt(t time.Time) *NextOpening {
	if s.Is24x7 {
		return nil
	}

	now := t.Hour()*60 + t.Minute()
	for offset := 0; offset < 7; offset++ {
		weekday := time.Weekday((int(t.Weekday()) + offset) % 7)
		day, ok := s.Days[dayKeys[weekday]]
		if !ok || !day.Enabled {
			continue
		}
		start, err := parseClock(day.Start)
		if err != nil {
			continue
		}
		if offset == 0 && now >= start {
			continue
		}
		return &NextOpening{
			Weekday:   weekday,
			Day:       dayKeys[weekday],
			Start:     day.Start,
			DaysAhead: offset,
		}
	}
	return nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("malformed clock value %q", s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("malformed hours in clock value %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("malformed minutes in clock value %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hours*60 + minutes, nil
}
