// Package condition defines the progress and clock conditions a rule waits on.
// Conditions form a closed set: every variant lives in this package and
// implements the unexported sealed method, so code outside the package can
// only construct the variants declared here.
package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the persisted tag of a condition variant.
type Kind string

const (
	KindSteps     Kind = "steps"
	KindTime      Kind = "time"
	KindTimeRange Kind = "timeRange"
	KindWorkout   Kind = "workout"
	KindSchedule  Kind = "schedule"
	KindLocation  Kind = "location"
	KindTomorrow  Kind = "tomorrow"
	KindPassword  Kind = "password"
)

var (
	ErrInvalidClockTime = errors.New("invalid clock time")
	ErrInvalidCondition = errors.New("invalid condition")
)

// Condition is a criterion a rule is tied to.
type Condition interface {
	// Kind returns the persisted type tag.
	Kind() Kind

	// Evaluate reports whether the condition is met (or active, for
	// DURING-style conditions) for the given progress and wall-clock time.
	Evaluate(in Input) Evaluation

	// Describe returns the short form used in "NO X UNTIL Y".
	Describe() string

	sealed()
}

// Input is the snapshot a condition is evaluated against.
type Input struct {
	Steps          int
	WorkoutMinutes int
	Now            time.Time
}

// Evaluation is the outcome of evaluating a condition.
type Evaluation struct {
	Met      bool
	Status   string
	Progress int // 0..100
}

// ClockTime is a local wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (or "H:MM").
func ParseClockTime(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustClockTime is ParseClockTime for literals known to be valid.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns c on the calendar day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// Weekday numbers days 1=Monday through 7=Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf converts Go's Sunday=0 numbering.
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// Valid reports whether w is in 1..7.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Steps is met once today's step count reaches Target.
type Steps struct {
	Target int
}

// Time is met once the local clock reaches At.
type Time struct {
	At ClockTime
}

// TimeRange is active while the local clock is in [Start, End).
// End <= Start wraps past midnight.
type TimeRange struct {
	Start ClockTime
	End   ClockTime
}

// Workout is met once today's workout minutes reach Minutes.
type Workout struct {
	Minutes int
}

// Schedule is active on the listed weekdays.
type Schedule struct {
	Days []Weekday
}

// Location is display-only; geofencing is not evaluated here.
type Location struct {
	Name string
}

// Tomorrow locks until the next calendar day.
type Tomorrow struct{}

// Password locks until a password is confirmed through the unlock channel.
type Password struct{}

// Unrecognized holds a persisted condition whose type tag is not known to
// this build. It never evaluates as met.
type Unrecognized struct {
	Type string
}

func (Steps) Kind() Kind          { return KindSteps }
func (Time) Kind() Kind           { return KindTime }
func (TimeRange) Kind() Kind      { return KindTimeRange }
func (Workout) Kind() Kind        { return KindWorkout }
func (Schedule) Kind() Kind       { return KindSchedule }
func (Location) Kind() Kind       { return KindLocation }
func (Tomorrow) Kind() Kind       { return KindTomorrow }
func (Password) Kind() Kind       { return KindPassword }
func (u Unrecognized) Kind() Kind { return Kind(u.Type) }

func (Steps) sealed()        {}
func (Time) sealed()         {}
func (TimeRange) sealed()    {}
func (Workout) sealed()      {}
func (Schedule) sealed()     {}
func (Location) sealed()     {}
func (Tomorrow) sealed()     {}
func (Password) sealed()     {}
func (Unrecognized) sealed() {}

// Ensure every variant implements Condition.
var (
	_ Condition = Steps{}
	_ Condition = Time{}
	_ Condition = TimeRange{}
	_ Condition = Workout{}
	_ Condition = Schedule{}
	_ Condition = Location{}
	_ Condition = Tomorrow{}
	_ Condition = Password{}
	_ Condition = Unrecognized{}
)
