// Package recurrence implements the recurrence rules used by sermon
// schedules and presentation templates.
//
// A Rule is a closed tagged union: Once, Weekly, Monthly or Yearly.
// Rules are plain comparable values; equality is structural (kind + payload).
//
// Weekday numbering follows the host calendar convention: 1..7 with
// 1 = Sunday.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the active rule case.
type Kind int

const (
	Once Kind = iota
	Weekly
	Monthly
	Yearly
)

func (k Kind) String() string {
	switch k {
	case Once:
		return "once"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// WeekdaySet is a set of weekday numbers (1..7, 1 = Sunday) packed into a
// bitmask so Rule stays comparable.
type WeekdaySet uint8

// NewWeekdaySet builds a set from weekday numbers. Numbers outside 1..7 are
// ignored.
func NewWeekdaySet(days ...int) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= 1 && d <= 7 {
			s |= 1 << uint(d-1)
		}
	}
	return s
}

func (s WeekdaySet) Has(day int) bool {
	if day < 1 || day > 7 {
		return false
	}
	return s&(1<<uint(day-1)) != 0
}

func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Days returns the member weekday numbers in ascending order.
func (s WeekdaySet) Days() []int {
	if s == 0 {
		return nil
	}
	out := make([]int, 0, 7)
	for d := 1; d <= 7; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Rule is one recurrence rule. The zero value is Once.
//
// Payload fields are meaningful only for their kind: Days for Weekly,
// Day for Monthly and Yearly, Month for Yearly.
type Rule struct {
	Kind  Kind
	Days  WeekdaySet
	Day   int
	Month int
}

var (
	errEmptyWeekday = errors.New("recurrence: weekly rule needs at least one weekday")
	errDayRange     = errors.New("recurrence: day of month must be 1..31")
	errMonthRange   = errors.New("recurrence: month must be 1..12")
)

// NewOnce returns the non-recurring rule.
func NewOnce() Rule { return Rule{Kind: Once} }

// NewWeekly builds a weekly rule from weekday numbers (1..7, 1 = Sunday).
// An empty or fully out-of-range set is rejected: expanding such a rule
// would otherwise scan forever without ever landing on a matching day.
func NewWeekly(days ...int) (Rule, error) {
	s := NewWeekdaySet(days...)
	if s.IsEmpty() {
		return Rule{}, errEmptyWeekday
	}
	return Rule{Kind: Weekly, Days: s}, nil
}

// NewMonthly builds a monthly rule for the given day of month (1..31).
func NewMonthly(day int) (Rule, error) {
	if day < 1 || day > 31 {
		return Rule{}, errDayRange
	}
	return Rule{Kind: Monthly, Day: day}, nil
}

// NewYearly builds a yearly rule for the given month (1..12) and day (1..31).
func NewYearly(month, day int) (Rule, error) {
	if month < 1 || month > 12 {
		return Rule{}, errMonthRange
	}
	if day < 1 || day > 31 {
		return Rule{}, errDayRange
	}
	return Rule{Kind: Yearly, Month: month, Day: day}, nil
}

// IsRecurring reports whether the rule repeats. False only for Once.
func (r Rule) IsRecurring() bool { return r.Kind != Once }

// Occurs reports whether the rule selects the given date.
//
// The anchor is the date the rule is attached to (a schedule's start date or
// a presentation's datetime); only Once consults it, comparing calendar days.
//
// Monthly deliberately does not clamp here: a day-31 rule never matches a
// 30-day month even though occurrence generation clamps (see Expand). The
// two operations are intentionally asymmetric.
func (r Rule) Occurs(date, anchor time.Time) bool {
	switch r.Kind {
	case Once:
		return SameDay(date, anchor)
	case Weekly:
		return r.Days.Has(WeekdayNumber(date))
	case Monthly:
		return date.Day() == r.Day
	case Yearly:
		return int(date.Month()) == r.Month && date.Day() == r.Day
	default:
		return false
	}
}

func (r Rule) String() string {
	switch r.Kind {
	case Weekly:
		return "weekly" + r.Days.String()
	case Monthly:
		return fmt.Sprintf("monthly(%d)", r.Day)
	case Yearly:
		return fmt.Sprintf("yearly(%d-%d)", r.Month, r.Day)
	default:
		return "once"
	}
}

// WeekdayNumber converts a time to the 1..7 weekday convention (1 = Sunday).
func WeekdayNumber(t time.Time) int { return int(t.Weekday()) + 1 }

// SameDay reports whether two times fall on the same calendar day,
// ignoring time-of-day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayAfter reports whether a falls on a later calendar day than b.
func DayAfter(a, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() > b.Year()
	}
	if a.Month() != b.Month() {
		return a.Month() > b.Month()
	}
	return a.Day() > b.Day()
}

// DaysInMonth returns the number of days in the given month of year.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
