package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mondayAt returns a fixed Monday with the given clock time.
// 2024-11-18 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2024, time.November, 18, hour, minute, 0, 0, time.UTC)
}

func workweekSchedule() WeeklySchedule {
	return WeeklySchedule{
		Days: map[string]DayHours{
			"monday":    {Enabled: true, Start: "09:00", End: "22:00"},
			"tuesday":   {Enabled: true, Start: "10:00", End: "22:00"},
			"wednesday": {Enabled: true, Start: "09:00", End: "22:00"},
			"thursday":  {Enabled: true, Start: "09:00", End: "22:00"},
			"friday":    {Enabled: true, Start: "09:00", End: "23:00"},
			"saturday":  {Enabled: false, Start: "09:00", End: "22:00"},
			"sunday":    {Enabled: false, Start: "09:00", End: "22:00"},
		},
	}
}

func TestAvailableAt(t *testing.T) {
	tests := []struct {
		name     string
		schedule WeeklySchedule
		at       time.Time
		expected bool
	}{
		{
			name:     "given 24x7 schedule should always be available",
			schedule: WeeklySchedule{Is24x7: true},
			at:       mondayAt(3, 0),
			expected: true,
		},
		{
			name:     "given time inside window should be available",
			schedule: workweekSchedule(),
			at:       mondayAt(12, 30),
			expected: true,
		},
		{
			name:     "given time at window start should be available",
			schedule: workweekSchedule(),
			at:       mondayAt(9, 0),
			expected: true,
		},
		{
			name:     "given time at window end should not be available",
			schedule: workweekSchedule(),
			at:       mondayAt(22, 0),
			expected: false,
		},
		{
			name:     "given time after window should not be available",
			schedule: workweekSchedule(),
			at:       mondayAt(23, 0),
			expected: false,
		},
		{
			name:     "given disabled day should not be available",
			schedule: workweekSchedule(),
			at:       mondayAt(12, 0).AddDate(0, 0, 5), // Saturday
			expected: false,
		},
		{
			name: "given start equal to end the day is never open",
			schedule: WeeklySchedule{
				Days: map[string]DayHours{
					"monday": {Enabled: true, Start: "09:00", End: "09:00"},
				},
			},
			at:       mondayAt(9, 0),
			expected: false,
		},
		{
			name: "given malformed times the day degrades to open",
			schedule: WeeklySchedule{
				Days: map[string]DayHours{
					"monday": {Enabled: true, Start: "whenever", End: "22:00"},
				},
			},
			at:       mondayAt(3, 0),
			expected: true,
		},
		{
			name:     "given day missing from schedule should degrade to open",
			schedule: WeeklySchedule{Days: map[string]DayHours{}},
			at:       mondayAt(3, 0),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.schedule.AvailableAt(tt.at))
		})
	}
}

func TestNextOpeningAt(t *testing.T) {
	tests := []struct {
		name     string
		schedule WeeklySchedule
		at       time.Time
		expected *NextOpening
	}{
		{
			name:     "given 24x7 schedule there is no next opening to compute",
			schedule: WeeklySchedule{Is24x7: true},
			at:       mondayAt(3, 0),
			expected: nil,
		},
		{
			name:     "given time before todays start should open later today",
			schedule: workweekSchedule(),
			at:       mondayAt(7, 0),
			expected: &NextOpening{
				Weekday:   time.Monday,
				Day:       "monday",
				Start:     "09:00",
				DaysAhead: 0,
			},
		},
		{
			name:     "given time after close should open tomorrow",
			schedule: workweekSchedule(),
			at:       mondayAt(23, 0),
			expected: &NextOpening{
				Weekday:   time.Tuesday,
				Day:       "tuesday",
				Start:     "10:00",
				DaysAhead: 1,
			},
		},
		{
			name:     "given weekend disabled friday night should skip to monday",
			schedule: workweekSchedule(),
			at:       mondayAt(23, 30).AddDate(0, 0, 4), // Friday 23:30
			expected: &NextOpening{
				Weekday:   time.Monday,
				Day:       "monday",
				Start:     "09:00",
				DaysAhead: 3,
			},
		},
		{
			name: "given no enabled day should return nil",
			schedule: WeeklySchedule{
				Days: map[string]DayHours{
					"monday":  {Enabled: false, Start: "09:00", End: "22:00"},
					"tuesday": {Enabled: false, Start: "09:00", End: "22:00"},
				},
			},
			at:       mondayAt(12, 0),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.schedule.NextOpeningAt(tt.at))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input     string
		expected  int
		expectErr bool
	}{
		{input: "09:00", expected: 540},
		{input: "00:00", expected: 0},
		{input: "23:59", expected: 1439},
		{input: "24:00", expectErr: true},
		{input: "12:60", expectErr: true},
		{input: "noon", expectErr: true},
		{input: "", expectErr: true},
	}

	for _, tt := range tests {
		minutes, err := parseClock(tt.input)
		if tt.expectErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, minutes, "input %q", tt.input)
	}
}
