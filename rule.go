package availability

import (
	"fmt"
	"reflect"
	"time"

	"github.com/AdguardTeam/golibs/timeutil"
	"gopkg.in/yaml.v3"
)

// TimeLayout is the datetime format accepted by the string-based
// [RuleBuilder] setters and used by the YAML representation of rules and
// frames.  Datetimes are naive wall-clock values; the engine never converts
// between time zones.
const TimeLayout = "2006-01-02 15:04:05"

// Rule is a time-bounded availability directive: a half-open datetime span,
// an optional weekday filter, an on/off status, and an optional payload.
// Rules are immutable once constructed.  Use [NewRule] or [RuleBuilder] to
// obtain one.
type Rule[T any] struct {
	start    time.Time
	end      time.Time
	payload  *T
	weekdays Weekdays
	off      bool
}

// NewRule returns a rule spanning the half-open interval [start, end).  An
// empty weekdays set means the rule is absolute and applies to every day in
// its span; a non-empty set restricts it to the enabled days.  payload may be
// nil and is never inspected by the engine.
func NewRule[T any](
	start time.Time,
	end time.Time,
	weekdays Weekdays,
	off bool,
	payload *T,
) (r Rule[T], err error) {
	if !start.Before(end) {
		return Rule[T]{}, fmt.Errorf(
			"%w: start %s, end %s",
			ErrInvalidRange,
			start.Format(TimeLayout),
			end.Format(TimeLayout),
		)
	}

	return Rule[T]{
		start:    start,
		end:      end,
		payload:  payload,
		weekdays: weekdays,
		off:      off,
	}, nil
}

// Start returns the inclusive start of the rule's span.
func (r Rule[T]) Start() (t time.Time) { return r.start }

// End returns the exclusive end of the rule's span.
func (r Rule[T]) End() (t time.Time) { return r.end }

// Weekdays returns the rule's weekday filter.  It is empty for absolute
// rules.
func (r Rule[T]) Weekdays() (w Weekdays) { return r.weekdays }

// IsOff returns true if the rule switches its span off.
func (r Rule[T]) IsOff() (ok bool) { return r.off }

// IsOn returns true if the rule switches its span on.
func (r Rule[T]) IsOn() (ok bool) { return !r.off }

// Payload returns the rule's payload, or nil.
func (r Rule[T]) Payload() (p *T) { return r.payload }

// IsAbsolute returns true if the rule applies to every calendar day in its
// span regardless of weekday.
func (r Rule[T]) IsAbsolute() (ok bool) {
	return r.weekdays.IsEmpty()
}

// IsRelative returns true if the rule applies only on calendar days enabled
// in its weekday set.
func (r Rule[T]) IsRelative() (ok bool) {
	return !r.weekdays.IsEmpty()
}

// midnightOf returns the midnight beginning the calendar day of t.
//
// NOTE: Do not use [time.Truncate] since it requires UTC time zone.
func midnightOf(t time.Time) (day time.Time) {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// clockOf returns the offset of t from the midnight of its day.
func clockOf(t time.Time) (offset time.Duration) {
	return t.Sub(midnightOf(t))
}

// dailyWindow returns the rule's daily time window as offsets from midnight.
// An end at midnight counts as the end of the day, so a rule from 00:00 to
// 00:00 covers whole days.
func (r Rule[T]) dailyWindow() (start, end time.Duration) {
	start, end = clockOf(r.start), clockOf(r.end)
	if end == 0 {
		end = timeutil.Day
	}

	return start, end
}

// IsActive returns true if t falls within the rule's span, within its daily
// time window, and, for relative rules, on an enabled weekday.
func (r Rule[T]) IsActive(t time.Time) (ok bool) {
	if t.Before(r.start) || !t.Before(r.end) {
		return false
	}

	winStart, winEnd := r.dailyWindow()
	if c := clockOf(t); c < winStart || c >= winEnd {
		return false
	}

	return r.weekdays.IsEmpty() || r.weekdays.Has(t.Weekday())
}

// Overlaps returns true if the [start, end) spans of r and other intersect.
// Weekday filters are not considered.
func (r Rule[T]) Overlaps(other Rule[T]) (ok bool) {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// SharesWeekdaysWith returns true if both r and other are relative and their
// weekday sets intersect.  It is false whenever either rule is absolute.
func (r Rule[T]) SharesWeekdaysWith(other Rule[T]) (ok bool) {
	return r.weekdays.Intersects(other.weekdays)
}

// SamePayload returns true if r and other carry equal payloads.  Two absent
// payloads are equal.  The engine itself never compares payloads; this is a
// deduplication helper for callers.
func (r Rule[T]) SamePayload(other Rule[T]) (ok bool) {
	switch {
	case r.payload == nil && other.payload == nil:
		return true
	case r.payload == nil || other.payload == nil:
		return false
	default:
		return reflect.DeepEqual(*r.payload, *other.payload)
	}
}

// Expand splits a relative rule into one absolute rule per enabled calendar
// day, ascending by date.  Absolute rules expand to themselves unchanged.
// An end at midnight is treated as the end of the previous day, so a rule
// ending at midnight produces whole-day pieces without a zero-width tail.
// Days whose daily window is empty produce nothing.
func (r Rule[T]) Expand() (rules []Rule[T], err error) {
	if r.IsAbsolute() {
		return []Rule[T]{r}, nil
	}

	first, last := midnightOf(r.start), midnightOf(r.end)
	if first.Equal(last) {
		return nil, fmt.Errorf(
			"%w: %s to %s",
			ErrUndividableRange,
			r.start.Format(TimeLayout),
			r.end.Format(TimeLayout),
		)
	}

	winStart, winEnd := r.dailyWindow()
	if clockOf(r.end) == 0 {
		// The span ends exactly at midnight, so the end date itself
		// contributes no time.
		last = last.AddDate(0, 0, -1)
	}

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !r.weekdays.Has(day.Weekday()) {
			continue
		}

		start, end := day.Add(winStart), day.Add(winEnd)
		if !start.Before(end) {
			continue
		}

		rules = append(rules, Rule[T]{
			start:   start,
			end:     end,
			payload: r.payload,
			off:     r.off,
		})
	}

	return rules, nil
}

// ruleConfig is the YAML configuration structure of Rule.
type ruleConfig[T any] struct {
	Payload  *T       `yaml:"payload,omitempty"`
	Start    string   `yaml:"start"`
	End      string   `yaml:"end"`
	Weekdays []string `yaml:"weekdays,omitempty"`
	Off      bool     `yaml:"off,omitempty"`
}

// type check
var _ yaml.Marshaler = Rule[struct{}]{}

// MarshalYAML implements the [yaml.Marshaler] interface for Rule.
func (r Rule[T]) MarshalYAML() (v any, err error) {
	return ruleConfig[T]{
		Payload:  r.payload,
		Start:    r.start.Format(TimeLayout),
		End:      r.end.Format(TimeLayout),
		Weekdays: r.weekdays.Days(),
		Off:      r.off,
	}, nil
}

// type check
var _ yaml.Unmarshaler = (*Rule[struct{}])(nil)

// UnmarshalYAML implements the [yaml.Unmarshaler] interface for *Rule.
// Decoding goes through [NewRule], so a decoded rule satisfies the same
// invariants as a constructed one.
func (r *Rule[T]) UnmarshalYAML(value *yaml.Node) (err error) {
	conf := &ruleConfig[T]{}

	err = value.Decode(conf)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return err
	}

	start, err := time.Parse(TimeLayout, conf.Start)
	if err != nil {
		return fmt.Errorf("rule start: %w", err)
	}

	end, err := time.Parse(TimeLayout, conf.End)
	if err != nil {
		return fmt.Errorf("rule end: %w", err)
	}

	w, err := ParseWeekdays(conf.Weekdays...)
	if err != nil {
		return fmt.Errorf("rule weekdays: %w", err)
	}

	rule, err := NewRule(start, end, w, conf.Off, conf.Payload)
	if err != nil {
		return err
	}

	*r = rule

	return nil
}
