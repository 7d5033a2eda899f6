package recurrence

import "encoding/json"

// Wire shape: a tagged object.
//
//	{"kind":"once"}
//	{"kind":"weekly","days":[1,7]}
//	{"kind":"monthly","day":31}
//	{"kind":"yearly","month":2,"day":29}
//
// Decoding is lenient: an unknown kind or an unusable payload degrades to
// Once instead of failing, so one corrupt rule cannot make a whole document's
// records unreadable.
type ruleJSON struct {
	Kind  string `json:"kind"`
	Days  []int  `json:"days,omitempty"`
	Day   int    `json:"day,omitempty"`
	Month int    `json:"month,omitempty"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	w := ruleJSON{Kind: r.Kind.String()}
	switch r.Kind {
	case Weekly:
		w.Days = r.Days.Days()
	case Monthly:
		w.Day = r.Day
	case Yearly:
		w.Month = r.Month
		w.Day = r.Day
	}
	return json.Marshal(w)
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = decodeRule(w)
	return nil
}

func decodeRule(w ruleJSON) Rule {
	switch w.Kind {
	case "weekly":
		rule, err := NewWeekly(w.Days...)
		if err != nil {
			return NewOnce()
		}
		return rule
	case "monthly":
		rule, err := NewMonthly(w.Day)
		if err != nil {
			return NewOnce()
		}
		return rule
	case "yearly":
		rule, err := NewYearly(w.Month, w.Day)
		if err != nil {
			return NewOnce()
		}
		return rule
	default:
		return NewOnce()
	}
}
