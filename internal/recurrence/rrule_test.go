package recurrence

import (
	"testing"
	"time"
)

func TestFromRRule(t *testing.T) {
	t.Parallel()
	weeklySun, _ := NewWeekly(1)
	weeklySunWed, _ := NewWeekly(1, 4)
	allDays, _ := NewWeekly(1, 2, 3, 4, 5, 6, 7)
	monthly15, _ := NewMonthly(15)
	yearly, _ := NewYearly(12, 25)

	dtstart := time.Date(2024, time.January, 7, 9, 0, 0, 0, time.Local) // a Sunday

	tests := []struct {
		name string
		raw  string
		want Rule
	}{
		{name: "weekly byday", raw: "FREQ=WEEKLY;BYDAY=SU", want: weeklySun},
		{name: "weekly multiple", raw: "FREQ=WEEKLY;BYDAY=SU,WE", want: weeklySunWed},
		{name: "weekly from dtstart", raw: "FREQ=WEEKLY", want: weeklySun},
		{name: "rrule prefix", raw: "RRULE:FREQ=WEEKLY;BYDAY=SU", want: weeklySun},
		{name: "daily", raw: "FREQ=DAILY", want: allDays},
		{name: "monthly", raw: "FREQ=MONTHLY;BYMONTHDAY=15", want: monthly15},
		{name: "monthly negative day", raw: "FREQ=MONTHLY;BYMONTHDAY=-1", want: NewOnce()},
		{name: "yearly", raw: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", want: yearly},
		{name: "interval unsupported", raw: "FREQ=WEEKLY;INTERVAL=2;BYDAY=SU", want: NewOnce()},
		{name: "hourly unsupported", raw: "FREQ=HOURLY", want: NewOnce()},
		{name: "garbage", raw: "FREQ=SOMETIMES", want: NewOnce()},
		{name: "empty", raw: "", want: NewOnce()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := FromRRule(tt.raw, dtstart); got != tt.want {
				t.Fatalf("FromRRule(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToRRule(t *testing.T) {
	t.Parallel()
	weekly, _ := NewWeekly(1, 4)
	monthly, _ := NewMonthly(31)
	yearly, _ := NewYearly(2, 29)

	tests := []struct {
		rule Rule
		want string
	}{
		{rule: NewOnce(), want: ""},
		{rule: weekly, want: "FREQ=WEEKLY;BYDAY=SU,WE"},
		{rule: monthly, want: "FREQ=MONTHLY;BYMONTHDAY=31"},
		{rule: yearly, want: "FREQ=YEARLY;BYMONTH=2;BYMONTHDAY=29"},
	}
	for _, tt := range tests {
		if got := ToRRule(tt.rule); got != tt.want {
			t.Fatalf("ToRRule(%s) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}

func TestRRuleRoundTripThroughImport(t *testing.T) {
	t.Parallel()
	weekly, _ := NewWeekly(1, 4)
	dtstart := time.Date(2024, time.January, 7, 9, 0, 0, 0, time.Local)
	if got := FromRRule(ToRRule(weekly), dtstart); got != weekly {
		t.Fatalf("round trip = %s, want %s", got, weekly)
	}
}
