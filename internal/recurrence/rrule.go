package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// FromRRule maps an iCalendar RRULE string onto the closed rule set.
//
// Only the shapes this engine can represent survive the mapping:
// FREQ=WEEKLY with BYDAY, FREQ=MONTHLY with a positive BYMONTHDAY,
// FREQ=YEARLY with BYMONTH/BYMONTHDAY, and FREQ=DAILY (every weekday).
// Missing BY* parts fall back to the event's start. Anything richer —
// intervals > 1, negative month days, sub-day frequencies — degrades to
// Once, matching the engine's malformed-payload policy.
func FromRRule(raw string, dtstart time.Time) Rule {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "RRULE:"))
	if raw == "" {
		return NewOnce()
	}
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return NewOnce()
	}
	if opt.Interval > 1 {
		return NewOnce()
	}

	switch opt.Freq {
	case rrule.DAILY:
		rule, err := NewWeekly(1, 2, 3, 4, 5, 6, 7)
		if err != nil {
			return NewOnce()
		}
		return rule
	case rrule.WEEKLY:
		days := make([]int, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			days = append(days, fromRRuleWeekday(wd))
		}
		if len(days) == 0 {
			days = append(days, WeekdayNumber(dtstart))
		}
		rule, err := NewWeekly(days...)
		if err != nil {
			return NewOnce()
		}
		return rule
	case rrule.MONTHLY:
		day := dtstart.Day()
		if len(opt.Bymonthday) == 1 {
			day = opt.Bymonthday[0]
		} else if len(opt.Bymonthday) > 1 {
			return NewOnce()
		}
		rule, err := NewMonthly(day)
		if err != nil {
			return NewOnce()
		}
		return rule
	case rrule.YEARLY:
		month := int(dtstart.Month())
		day := dtstart.Day()
		if len(opt.Bymonth) == 1 {
			month = opt.Bymonth[0]
		}
		if len(opt.Bymonthday) == 1 {
			day = opt.Bymonthday[0]
		}
		rule, err := NewYearly(month, day)
		if err != nil {
			return NewOnce()
		}
		return rule
	default:
		return NewOnce()
	}
}

// ToRRule renders a recurring rule as an RRULE value (without the
// property name). Once yields "".
func ToRRule(r Rule) string {
	switch r.Kind {
	case Weekly:
		names := []string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}
		parts := make([]string, 0, 7)
		for _, d := range r.Days.Days() {
			parts = append(parts, names[d-1])
		}
		return "FREQ=WEEKLY;BYDAY=" + strings.Join(parts, ",")
	case Monthly:
		return fmt.Sprintf("FREQ=MONTHLY;BYMONTHDAY=%d", r.Day)
	case Yearly:
		return fmt.Sprintf("FREQ=YEARLY;BYMONTH=%d;BYMONTHDAY=%d", r.Month, r.Day)
	default:
		return ""
	}
}

// fromRRuleWeekday converts rrule's Monday-based weekday to 1..7 Sunday-based.
func fromRRuleWeekday(wd rrule.Weekday) int {
	return (wd.Day()+1)%7 + 1
}
