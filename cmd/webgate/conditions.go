package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
)

var errConditionFlags = errors.New("exactly one condition flag is required")

// conditionFlags are the `rules add` flags that pick a rule's condition.
type conditionFlags struct {
	steps    int
	workout  int
	at       string
	between  string
	days     string
	location string
	tomorrow bool
	password string
	raw      string
}

func (f *conditionFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.steps, "steps", 0, "Steps target")
	fs.IntVar(&f.workout, "workout", 0, "Workout minutes target")
	fs.StringVar(&f.at, "at", "", "Time of day, HH:MM")
	fs.StringVar(&f.between, "between", "", "Time window, HH:MM-HH:MM (may wrap past midnight)")
	fs.StringVar(&f.days, "days", "", "Weekdays 1-7 (Monday=1), comma separated")
	fs.StringVar(&f.location, "location", "", "Location name")
	fs.BoolVar(&f.tomorrow, "tomorrow", false, "Unlockable from tomorrow on")
	fs.StringVar(&f.password, "password", "", "Unlockable with this password")
	fs.StringVar(&f.raw, "condition", "", `Condition as JSON, e.g. {"type":"steps","target":8000}`)
}

// build returns the single condition the flags describe.
func (f *conditionFlags) build() (condition.Condition, error) {
	var conds []condition.Condition

	if f.steps > 0 {
		conds = append(conds, condition.Steps{Target: f.steps})
	}
	if f.workout > 0 {
		conds = append(conds, condition.Workout{Minutes: f.workout})
	}
	if f.at != "" {
		t, err := condition.ParseClockTime(f.at)
		if err != nil {
			return nil, err
		}
		conds = append(conds, condition.Time{At: t})
	}
	if f.between != "" {
		r, err := parseBetween(f.between)
		if err != nil {
			return nil, err
		}
		conds = append(conds, r)
	}
	if f.days != "" {
		s, err := parseDays(f.days)
		if err != nil {
			return nil, err
		}
		conds = append(conds, s)
	}
	if f.location != "" {
		conds = append(conds, condition.Location{Name: f.location})
	}
	if f.tomorrow {
		conds = append(conds, condition.Tomorrow{})
	}
	if f.password != "" {
		conds = append(conds, condition.Password{})
	}
	if f.raw != "" {
		c, err := condition.Unmarshal([]byte(f.raw))
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}

	if len(conds) != 1 {
		return nil, errConditionFlags
	}
	return conds[0], nil
}

func parseBetween(s string) (condition.TimeRange, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return condition.TimeRange{}, fmt.Errorf("%w: want HH:MM-HH:MM, got %q", condition.ErrInvalidCondition, s)
	}
	st, err := condition.ParseClockTime(start)
	if err != nil {
		return condition.TimeRange{}, err
	}
	en, err := condition.ParseClockTime(end)
	if err != nil {
		return condition.TimeRange{}, err
	}
	return condition.TimeRange{Start: st, End: en}, nil
}

func parseDays(s string) (condition.Schedule, error) {
	var days []condition.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || !condition.Weekday(n).Valid() {
			return condition.Schedule{}, fmt.Errorf("%w: weekday %q out of range 1..7", condition.ErrInvalidCondition, part)
		}
		days = append(days, condition.Weekday(n))
	}
	return condition.Schedule{Days: days}, nil
}
