package condition

import (
	"fmt"
	"math"
	"strings"
)

// Evaluate runs c against in. A nil condition is treated as unrecognized.
func Evaluate(c Condition, in Input) Evaluation {
	if c == nil {
		return Unrecognized{}.Evaluate(in)
	}
	return c.Evaluate(in)
}

func (c Steps) Evaluate(in Input) Evaluation {
	return Evaluation{
		Met:      in.Steps >= c.Target,
		Status:   fmt.Sprintf("%d/%d steps", in.Steps, c.Target),
		Progress: percent(in.Steps, c.Target),
	}
}

func (c Time) Evaluate(in Input) Evaluation {
	target := c.At.On(in.Now)
	current := in.Now.Hour()*60 + in.Now.Minute()
	progress := percent(current, c.At.Minutes())

	if !in.Now.Before(target) {
		return Evaluation{Met: true, Status: "Time reached", Progress: progress}
	}

	// Round up so a partial minute never reads as "0m left".
	mins := int(math.Ceil(target.Sub(in.Now).Minutes()))
	status := fmt.Sprintf("%dm left", mins)
	if mins > 60 {
		status = fmt.Sprintf("%dh %dm left", mins/60, mins%60)
	}
	return Evaluation{Met: false, Status: status, Progress: progress}
}

func (c TimeRange) Evaluate(in Input) Evaluation {
	if c.Contains(in.Now.Hour()*60 + in.Now.Minute()) {
		return Evaluation{Met: true, Status: "Active until " + c.End.String(), Progress: 100}
	}
	return Evaluation{Met: false, Status: "Starts at " + c.Start.String(), Progress: 0}
}

// Contains reports whether minutes-since-midnight falls inside the range.
func (c TimeRange) Contains(minutes int) bool {
	start, end := c.Start.Minutes(), c.End.Minutes()
	if end > start {
		return minutes >= start && minutes < end
	}
	// Overnight, e.g. 22:00-06:00.
	return minutes >= start || minutes < end
}

func (c Workout) Evaluate(in Input) Evaluation {
	return Evaluation{
		Met:      in.WorkoutMinutes >= c.Minutes,
		Status:   fmt.Sprintf("%d/%d min", in.WorkoutMinutes, c.Minutes),
		Progress: percent(in.WorkoutMinutes, c.Minutes),
	}
}

func (c Schedule) Evaluate(in Input) Evaluation {
	today := WeekdayOf(in.Now)
	for _, d := range c.Days {
		if d == today {
			return Evaluation{Met: true, Status: "Active today (" + c.Label() + ")", Progress: 100}
		}
	}
	return Evaluation{Met: false, Status: "Inactive today (" + c.Label() + ")", Progress: 0}
}

// Label names the day set: "weekdays", "weekends" or "custom".
func (c Schedule) Label() string {
	set := make(map[Weekday]bool, len(c.Days))
	for _, d := range c.Days {
		set[d] = true
	}
	switch {
	case sameDays(set, Monday, Tuesday, Wednesday, Thursday, Friday):
		return "weekdays"
	case sameDays(set, Saturday, Sunday):
		return "weekends"
	default:
		return "custom"
	}
}

func sameDays(set map[Weekday]bool, days ...Weekday) bool {
	if len(set) != len(days) {
		return false
	}
	for _, d := range days {
		if !set[d] {
			return false
		}
	}
	return true
}

func (c Location) Evaluate(Input) Evaluation {
	if c.Name == "" {
		return Evaluation{Status: "Location unknown"}
	}
	return Evaluation{Status: "Not at " + c.Name}
}

func (Tomorrow) Evaluate(Input) Evaluation {
	return Evaluation{Status: "Blocked until tomorrow"}
}

func (Password) Evaluate(Input) Evaluation {
	return Evaluation{Status: "Enter password to unlock"}
}

func (Unrecognized) Evaluate(Input) Evaluation {
	return Evaluation{Status: "Unknown condition"}
}

func (c Steps) Describe() string     { return fmt.Sprintf("%d steps", c.Target) }
func (c Time) Describe() string      { return c.At.String() }
func (c TimeRange) Describe() string { return c.Start.String() + "-" + c.End.String() }
func (c Workout) Describe() string   { return fmt.Sprintf("%dmin workout", c.Minutes) }
func (c Location) Describe() string  { return "at " + c.Name }
func (Tomorrow) Describe() string    { return "tomorrow" }
func (Password) Describe() string    { return "password" }
func (Unrecognized) Describe() string {
	return "unknown"
}

func (c Schedule) Describe() string {
	if label := c.Label(); label != "custom" {
		return label
	}
	names := make([]string, 0, len(c.Days))
	for _, d := range c.Days {
		if d.Valid() {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ", ")
}

var weekdayNames = map[Weekday]string{
	Monday: "Mon", Tuesday: "Tue", Wednesday: "Wed", Thursday: "Thu",
	Friday: "Fri", Saturday: "Sat", Sunday: "Sun",
}

// percent returns round(value/target*100) clamped to 0..100.
// A non-positive target counts as complete.
func percent(value, target int) int {
	if target <= 0 {
		return 100
	}
	p := int(math.Round(float64(value) / float64(target) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
