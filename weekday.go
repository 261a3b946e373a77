package availability

import (
	"fmt"
	"strings"
	"time"
)

// Weekdays is a set of days of the week stored as a bitmask.  The zero value
// is the empty set.  A rule with an empty set applies to every day; see
// [Rule.IsAbsolute].
type Weekdays uint8

// Weekday bits, one per day.
const (
	Monday Weekdays = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays is the set containing every day of the week.
const AllWeekdays = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday

// weekdayBits maps [time.Weekday] values to their bits.
var weekdayBits = [7]Weekdays{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// WeekdaysOf returns the singleton set containing wd.
func WeekdaysOf(wd time.Weekday) (w Weekdays) {
	return weekdayBits[wd]
}

// IsEmpty returns true if w contains no days.
func (w Weekdays) IsEmpty() (ok bool) {
	return w == 0
}

// Has returns true if w contains wd.
func (w Weekdays) Has(wd time.Weekday) (ok bool) {
	return w&weekdayBits[wd] != 0
}

// Intersects returns true if w and other share at least one day.
func (w Weekdays) Intersects(other Weekdays) (ok bool) {
	return w&other != 0
}

// Union returns the set of days contained in either w or other.
func (w Weekdays) Union(other Weekdays) (res Weekdays) {
	return w | other
}

// weekdayNames are the canonical token names, ordered Monday to Sunday to
// match the bit order.
var weekdayNames = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// Days returns the canonical names of the days in w, ordered Monday to
// Sunday.  It returns nil for the empty set.
func (w Weekdays) Days() (days []string) {
	for i, name := range weekdayNames {
		if w&(1<<i) != 0 {
			days = append(days, name)
		}
	}

	return days
}

// String implements the [fmt.Stringer] interface for Weekdays.
func (w Weekdays) String() (s string) {
	return strings.Join(w.Days(), ",")
}

// ParseWeekdays returns the set of days named by tokens.  Tokens are matched
// case-insensitively against full English day names and their three-letter
// abbreviations.  An unknown token fails the whole parse.
func ParseWeekdays(tokens ...string) (w Weekdays, err error) {
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "monday", "mon":
			w |= Monday
		case "tuesday", "tue":
			w |= Tuesday
		case "wednesday", "wed":
			w |= Wednesday
		case "thursday", "thu":
			w |= Thursday
		case "friday", "fri":
			w |= Friday
		case "saturday", "sat":
			w |= Saturday
		case "sunday", "sun":
			w |= Sunday
		default:
			return 0, fmt.Errorf("unknown weekday %q", tok)
		}
	}

	return w, nil
}
