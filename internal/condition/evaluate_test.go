package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2024-01-01 is a Monday.
func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestSteps_Evaluate(t *testing.T) {
	tests := []struct {
		name         string
		steps        int
		target       int
		wantMet      bool
		wantStatus   string
		wantProgress int
	}{
		{"half way", 5000, 10000, false, "5000/10000 steps", 50},
		{"exactly met", 10000, 10000, true, "10000/10000 steps", 100},
		{"over target is capped", 15000, 10000, true, "15000/10000 steps", 100},
		{"nothing yet", 0, 10000, false, "0/10000 steps", 0},
		{"rounds to nearest", 3335, 10000, false, "3335/10000 steps", 33},
		{"zero target counts as done", 0, 0, true, "0/0 steps", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Steps{Target: tt.target}.Evaluate(Input{Steps: tt.steps, Now: at(12, 0)})
			assert.Equal(t, tt.wantMet, got.Met)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantProgress, got.Progress)
		})
	}
}

func TestWorkout_Evaluate(t *testing.T) {
	got := Workout{Minutes: 30}.Evaluate(Input{WorkoutMinutes: 15})
	assert.False(t, got.Met)
	assert.Equal(t, "15/30 min", got.Status)
	assert.Equal(t, 50, got.Progress)

	got = Workout{Minutes: 30}.Evaluate(Input{WorkoutMinutes: 45})
	assert.True(t, got.Met)
	assert.Equal(t, 100, got.Progress)
}

func TestTime_Evaluate(t *testing.T) {
	target := MustClockTime("17:00")

	tests := []struct {
		name         string
		now          time.Time
		wantMet      bool
		wantStatus   string
		wantProgress int
	}{
		{"hours left", at(12, 0), false, "5h 0m left", 71},
		{"hours and minutes left", at(14, 25), false, "2h 35m left", 85},
		{"exactly one hour is minutes only", at(16, 0), false, "60m left", 94},
		{"minutes left", at(16, 45), false, "15m left", 99},
		{"partial minute rounds up", time.Date(2024, 1, 1, 16, 59, 30, 0, time.UTC), false, "1m left", 100},
		{"partial minute past the hour", time.Date(2024, 1, 1, 15, 59, 30, 0, time.UTC), false, "1h 1m left", 94},
		{"exactly at target", at(17, 0), true, "Time reached", 100},
		{"after target", at(20, 0), true, "Time reached", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Time{At: target}.Evaluate(Input{Now: tt.now})
			assert.Equal(t, tt.wantMet, got.Met)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantProgress, got.Progress)
		})
	}
}

func TestTimeRange_Evaluate_SameDay(t *testing.T) {
	r := TimeRange{Start: MustClockTime("09:00"), End: MustClockTime("17:00")}

	tests := []struct {
		now        time.Time
		wantActive bool
		desc       string
	}{
		{at(8, 59), false, "before start"},
		{at(9, 0), true, "exactly at start"},
		{at(12, 0), true, "middle"},
		{at(16, 59), true, "just before end"},
		{at(17, 0), false, "exactly at end"},
		{at(20, 0), false, "evening"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := r.Evaluate(Input{Now: tt.now})
			assert.Equal(t, tt.wantActive, got.Met)
			if tt.wantActive {
				assert.Equal(t, 100, got.Progress)
				assert.Equal(t, "Active until 17:00", got.Status)
			} else {
				assert.Equal(t, 0, got.Progress)
				assert.Equal(t, "Starts at 09:00", got.Status)
			}
		})
	}
}

func TestTimeRange_Evaluate_Overnight(t *testing.T) {
	r := TimeRange{Start: MustClockTime("22:00"), End: MustClockTime("06:00")}

	tests := []struct {
		now        time.Time
		wantActive bool
		desc       string
	}{
		{at(23, 30), true, "late evening"},
		{at(2, 0), true, "after midnight"},
		{at(5, 59), true, "just before end"},
		{at(6, 0), false, "exactly at end"},
		{at(12, 0), false, "midday"},
		{at(22, 0), true, "exactly at start"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.wantActive, r.Evaluate(Input{Now: tt.now}).Met)
		})
	}
}

func TestTimeRange_EqualBoundsCoverWholeDay(t *testing.T) {
	r := TimeRange{Start: MustClockTime("08:00"), End: MustClockTime("08:00")}
	assert.True(t, r.Evaluate(Input{Now: at(3, 0)}).Met)
	assert.True(t, r.Evaluate(Input{Now: at(8, 0)}).Met)
}

func TestSchedule_Evaluate(t *testing.T) {
	weekdays := Schedule{Days: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}}
	weekends := Schedule{Days: []Weekday{Saturday, Sunday}}

	monday := at(10, 0)
	sunday := time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)

	got := weekdays.Evaluate(Input{Now: monday})
	assert.True(t, got.Met)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "Active today (weekdays)", got.Status)

	assert.False(t, weekdays.Evaluate(Input{Now: sunday}).Met)
	assert.True(t, weekends.Evaluate(Input{Now: sunday}).Met, "sunday maps to 7")

	got = weekends.Evaluate(Input{Now: monday})
	assert.False(t, got.Met)
	assert.Equal(t, "Inactive today (weekends)", got.Status)
}

func TestSchedule_Label(t *testing.T) {
	tests := []struct {
		days []Weekday
		want string
	}{
		{[]Weekday{1, 2, 3, 4, 5}, "weekdays"},
		{[]Weekday{5, 4, 3, 2, 1}, "weekdays"},
		{[]Weekday{6, 7}, "weekends"},
		{[]Weekday{1, 2, 3, 4}, "custom"},
		{[]Weekday{1, 2, 3, 4, 5, 6}, "custom"},
		{[]Weekday{7}, "custom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Schedule{Days: tt.days}.Label(), "%v", tt.days)
	}
}

func TestAlwaysUnmetConditions(t *testing.T) {
	in := Input{Steps: 1 << 20, WorkoutMinutes: 1 << 20, Now: at(23, 59)}

	for _, c := range []Condition{Location{Name: "Gym"}, Tomorrow{}, Password{}, Unrecognized{Type: "geofence"}} {
		got := c.Evaluate(in)
		assert.False(t, got.Met, "%T", c)
		assert.Zero(t, got.Progress, "%T", c)
		assert.NotEmpty(t, got.Status, "%T", c)
	}

	assert.Equal(t, "Not at Gym", Location{Name: "Gym"}.Evaluate(in).Status)
	assert.Equal(t, "Unknown condition", Unrecognized{Type: "geofence"}.Evaluate(in).Status)
	assert.Equal(t, "Unknown condition", Evaluate(nil, in).Status)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "10000 steps", Steps{Target: 10000}.Describe())
	assert.Equal(t, "17:00", Time{At: MustClockTime("17:00")}.Describe())
	assert.Equal(t, "22:00-06:00", TimeRange{Start: MustClockTime("22:00"), End: MustClockTime("6:00")}.Describe())
	assert.Equal(t, "30min workout", Workout{Minutes: 30}.Describe())
	assert.Equal(t, "weekends", Schedule{Days: []Weekday{Saturday, Sunday}}.Describe())
	assert.Equal(t, "Mon, Wed", Schedule{Days: []Weekday{Monday, Wednesday}}.Describe())
	assert.Equal(t, "at Gym", Location{Name: "Gym"}.Describe())
	assert.Equal(t, "tomorrow", Tomorrow{}.Describe())
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"17:00", ClockTime{17, 0}, false},
		{"9:05", ClockTime{9, 5}, false},
		{" 06:30 ", ClockTime{6, 30}, false},
		{"00:00", ClockTime{0, 0}, false},
		{"24:00", ClockTime{}, true},
		{"12:60", ClockTime{}, true},
		{"12:5", ClockTime{}, true},
		{"noon", ClockTime{}, true},
		{"", ClockTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClockTime)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Saturday, WeekdayOf(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
}
