package clock

import "time"

// Period names accepted by Resolve.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// lastMillisecond is the nanosecond offset of HH:59:59.999.
const lastMillisecond = 999 * int(time.Millisecond)

// Window is a closed interval [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Resolve maps a period name and reference time to its window. Unknown
// periods fall back to the daily window.
func Resolve(period string, ref time.Time) Window {
	switch period {
	case PeriodWeekly:
		return WeekWindow(ref)
	case PeriodMonthly:
		return MonthWindow(ref)
	case PeriodYearly:
		return YearWindow(ref)
	default:
		return DayWindow(ref)
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, lastMillisecond, t.Location())
}

// DayWindow covers the calendar day containing t.
func DayWindow(t time.Time) Window {
	return Window{Start: StartOfDay(t), End: EndOfDay(t)}
}

// WeekWindow covers the ISO week (Monday to Sunday) containing t.
func WeekWindow(t time.Time) Window {
	monday := StartOfWeek(t)
	sunday := time.Date(monday.Year(), monday.Month(), monday.Day()+6, 0, 0, 0, 0, t.Location())
	return Window{Start: monday, End: EndOfDay(sunday)}
}

// MonthWindow covers the calendar month containing t.
func MonthWindow(t time.Time) Window {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	// Day 0 of the next month is the last day of this one.
	last := time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, lastMillisecond, t.Location())
	return Window{Start: first, End: last}
}

// YearWindow covers the calendar year containing t.
func YearWindow(t time.Time) Window {
	return Window{
		Start: time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location()),
		End:   time.Date(t.Year(), time.December, 31, 23, 59, 59, lastMillisecond, t.Location()),
	}
}

// StartOfWeek returns Monday 00:00 of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// WeekDays returns midnight of each day in t's ISO week, Monday first.
func WeekDays(t time.Time) [7]time.Time {
	monday := StartOfWeek(t)
	var days [7]time.Time
	for i := range days {
		days[i] = time.Date(monday.Year(), monday.Month(), monday.Day()+i, 0, 0, 0, 0, t.Location())
	}
	return days
}
