package condition

import (
	"encoding/json"
	"fmt"
)

// wire is the persisted form of a condition. Canonical fields are written;
// the alias fields are only read, so records written by older clients
// normalize into one schema here and nowhere else.
type wire struct {
	Type string `json:"type"`

	Target  *int   `json:"target,omitempty"`
	Time    string `json:"time,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Minutes *int   `json:"minutes,omitempty"`
	Days    []int  `json:"days,omitempty"`
	Name    string `json:"name,omitempty"`

	StepsTarget         *int           `json:"steps_target,omitempty"`
	StepsTargetCamel    *int           `json:"stepsTarget,omitempty"`
	TimeTarget          string         `json:"time_target,omitempty"`
	TimeTargetCamel     string         `json:"timeTarget,omitempty"`
	WorkoutMinutes      *int           `json:"workout_minutes,omitempty"`
	WorkoutMinutesCamel *int           `json:"workoutMinutes,omitempty"`
	TargetMinutes       *int           `json:"targetMinutes,omitempty"`
	LocationObject      *locationAlias `json:"location,omitempty"`
}

type locationAlias struct {
	Name string `json:"name"`
}

// Marshal encodes c in the canonical schema.
func Marshal(c Condition) ([]byte, error) {
	w := wire{}
	switch v := c.(type) {
	case Steps:
		w.Type = string(KindSteps)
		w.Target = &v.Target
	case Time:
		w.Type = string(KindTime)
		w.Time = v.At.String()
	case TimeRange:
		w.Type = string(KindTimeRange)
		w.Start = v.Start.String()
		w.End = v.End.String()
	case Workout:
		w.Type = string(KindWorkout)
		w.Minutes = &v.Minutes
	case Schedule:
		w.Type = string(KindSchedule)
		w.Days = make([]int, len(v.Days))
		for i, d := range v.Days {
			w.Days[i] = int(d)
		}
	case Location:
		w.Type = string(KindLocation)
		w.Name = v.Name
	case Tomorrow:
		w.Type = string(KindTomorrow)
	case Password:
		w.Type = string(KindPassword)
	case Unrecognized:
		w.Type = v.Type
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", ErrInvalidCondition, c)
	}
	return json.Marshal(w)
}

// Unmarshal decodes a condition, accepting the legacy alias fields.
// An unknown type tag yields Unrecognized rather than an error so that a
// rule written by a newer client keeps blocking.
func Unmarshal(data []byte) (Condition, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode condition: %w", err)
	}
	return w.normalize()
}

func (w wire) normalize() (Condition, error) {
	switch Kind(w.Type) {
	case KindSteps:
		target, err := firstCount("steps target", w.Target, w.StepsTarget, w.StepsTargetCamel)
		if err != nil {
			return nil, err
		}
		return Steps{Target: target}, nil

	case KindTime:
		at, err := ParseClockTime(firstString(w.Time, w.TimeTarget, w.TimeTargetCamel))
		if err != nil {
			return nil, err
		}
		return Time{At: at}, nil

	case KindTimeRange, "time_range":
		start, err := ParseClockTime(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := ParseClockTime(w.End)
		if err != nil {
			return nil, err
		}
		return TimeRange{Start: start, End: end}, nil

	case KindWorkout:
		minutes, err := firstCount("workout minutes", w.Minutes, w.WorkoutMinutes, w.WorkoutMinutesCamel, w.TargetMinutes)
		if err != nil {
			return nil, err
		}
		return Workout{Minutes: minutes}, nil

	case KindSchedule:
		if len(w.Days) == 0 {
			return nil, fmt.Errorf("%w: schedule needs at least one day", ErrInvalidCondition)
		}
		days := make([]Weekday, 0, len(w.Days))
		for _, d := range w.Days {
			wd := Weekday(d)
			if !wd.Valid() {
				return nil, fmt.Errorf("%w: weekday %d out of range 1..7", ErrInvalidCondition, d)
			}
			days = append(days, wd)
		}
		return Schedule{Days: days}, nil

	case KindLocation:
		name := w.Name
		if name == "" && w.LocationObject != nil {
			name = w.LocationObject.Name
		}
		return Location{Name: name}, nil

	case KindTomorrow:
		return Tomorrow{}, nil

	case KindPassword:
		return Password{}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidCondition)

	default:
		return Unrecognized{Type: w.Type}, nil
	}
}

func firstCount(field string, candidates ...*int) (int, error) {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if *c < 0 {
			return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidCondition, field)
		}
		return *c, nil
	}
	return 0, fmt.Errorf("%w: %s is required", ErrInvalidCondition, field)
}

func firstString(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
