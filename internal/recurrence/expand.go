package recurrence

import "time"

// maxOccurrences caps a single expansion so a miswired caller (e.g. an
// until date centuries away) cannot produce an unbounded slice.
const maxOccurrences = 5000

// Next computes the first occurrence strictly after cur, preserving cur's
// time-of-day. It returns the zero time for Once (and for a weekly rule
// whose day set is empty, which degrades to Once semantics).
func Next(r Rule, cur time.Time) time.Time {
	switch r.Kind {
	case Weekly:
		if r.Days.IsEmpty() {
			return time.Time{}
		}
		t := cur.AddDate(0, 0, 1)
		for !r.Days.Has(WeekdayNumber(t)) {
			t = t.AddDate(0, 0, 1)
		}
		return t
	case Monthly:
		// First day of the month after cur; time.Date normalizes December+1.
		y, m := cur.Year(), cur.Month()+1
		day := min(r.Day, DaysInMonth(y, m))
		return clockOf(cur, y, m, day)
	case Yearly:
		y := cur.Year() + 1
		m := time.Month(r.Month)
		// Clamp Feb 29 rules on non-leap years rather than skipping the year.
		day := min(r.Day, DaysInMonth(y, m))
		return clockOf(cur, y, m, day)
	default:
		return time.Time{}
	}
}

// Expand materializes the ordered occurrence sequence of a rule anchored at
// the given datetime, up to and including the calendar day of until.
//
// The anchor itself is always the first element. The sequence is strictly
// increasing and finite; generation clamps short months (a day-31 monthly
// rule yields Feb 28/29) even though the match predicate does not.
func Expand(r Rule, anchor, until time.Time) []time.Time {
	out := []time.Time{anchor}
	if !r.IsRecurring() {
		return out
	}
	cur := anchor
	for len(out) < maxOccurrences {
		next := Next(r, cur)
		if next.IsZero() || DayAfter(next, until) {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}

// clockOf builds a date in cur's location carrying cur's time-of-day.
func clockOf(cur time.Time, y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, cur.Hour(), cur.Minute(), cur.Second(), cur.Nanosecond(), cur.Location())
}
