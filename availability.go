// Package availability derives flat, chronologically ordered,
// non-overlapping frame sequences from prioritized, weekday-aware
// availability rules.  It answers "what is the status and payload at time
// T?" and "what is the full schedule between T1 and T2?" for domains such as
// store hours, resource bookings, or on-call rotations.
//
// An [Availability] is not safe for concurrent use; callers sharing one
// across goroutines must serialize access to it.
package availability

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/errors"
)

// CompactTimeLayout is the timestamp format accepted by the string-based
// query and mutation shortcuts, such as [Availability.IsOpenString].
const CompactTimeLayout = "20060102150405"

// Bounds of the base rule's span.  The base rule provides default off
// coverage over an effectively unbounded date range.
const (
	baseMinYear = 2000
	baseMaxYear = 3000
)

// baseRule returns the fixed rule occupying priority 0: absolute, off, no
// payload.
func baseRule[T any]() (r Rule[T]) {
	return Rule[T]{
		start: time.Date(baseMinYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(baseMaxYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		off:   true,
	}
}

// Availability owns an ordered sequence of priority layers of rules and the
// frame sequence last derived from them.  Layer 0 always holds exactly the
// base rule and is read-only; higher layers override lower ones wherever
// their spans overlap.  The type parameter is the payload type attached to
// rules and carried into frames.
type Availability[T any] struct {
	layers [][]Rule[T]
	frames []Frame[T]
}

// New returns an availability containing only the base rule and no derived
// frames.
func New[T any]() (a *Availability[T]) {
	return &Availability[T]{
		layers: [][]Rule[T]{{baseRule[T]()}},
	}
}

// Layers returns the number of priority layers, including the base layer.
func (a *Availability[T]) Layers() (n int) {
	return len(a.layers)
}

// RulesAt returns the rules at the given priority in insertion order, or nil
// if the priority does not exist.  The returned slice must not be modified.
func (a *Availability[T]) RulesAt(priority int) (rules []Rule[T]) {
	if priority < 0 || priority >= len(a.layers) {
		return nil
	}

	return a.layers[priority]
}

// Frames returns the frame sequence computed by the most recent derivation.
// The sequence is a cache: it is valid only for the rule set, and for ranged
// derivations the window, it was computed from.  The returned slice must not
// be modified.
func (a *Availability[T]) Frames() (frames []Frame[T]) {
	return a.frames
}

// AddRule validates rule against the layer at the given priority and appends
// it there, growing the layer list with empty layers as needed.  Two rules
// at the same priority may overlap in time only if the existing one is
// relative and the two share no enabled weekday.  A rejected rule leaves the
// table unchanged.
func (a *Availability[T]) AddRule(rule Rule[T], priority int) (err error) {
	defer func() { err = errors.Annotate(err, "adding rule at priority %d: %w", priority) }()

	if priority == 0 {
		return ErrReservedPriority
	}

	if priority < 0 {
		return fmt.Errorf("%w: %d", ErrPriorityNotFound, priority)
	}

	for len(a.layers) <= priority {
		a.layers = append(a.layers, nil)
	}

	for _, e := range a.layers[priority] {
		if !e.Overlaps(rule) {
			continue
		}

		if e.IsAbsolute() {
			return fmt.Errorf(
				"%w: new rule %s to %s, existing rule %s to %s",
				ErrAbsoluteConflict,
				rule.start.Format(TimeLayout),
				rule.end.Format(TimeLayout),
				e.start.Format(TimeLayout),
				e.end.Format(TimeLayout),
			)
		}

		if e.SharesWeekdaysWith(rule) {
			return fmt.Errorf(
				"%w: new rule %s to %s, existing rule %s to %s",
				ErrWeekdayConflict,
				rule.start.Format(TimeLayout),
				rule.end.Format(TimeLayout),
				e.start.Format(TimeLayout),
				e.end.Format(TimeLayout),
			)
		}
	}

	a.layers[priority] = append(a.layers[priority], rule)

	return nil
}

// RemoveRuleByIndex removes and returns the rule at the given priority and
// index.  If the removal empties the highest layer, that layer is dropped;
// emptied layers below the highest remain as placeholders.
func (a *Availability[T]) RemoveRuleByIndex(priority, index int) (r Rule[T], err error) {
	defer func() { err = errors.Annotate(err, "removing rule: %w") }()

	if priority == 0 {
		return Rule[T]{}, ErrReservedPriority
	}

	if priority < 0 || priority >= len(a.layers) {
		return Rule[T]{}, fmt.Errorf(
			"%w: %d, highest is %d",
			ErrPriorityNotFound,
			priority,
			len(a.layers)-1,
		)
	}

	layer := a.layers[priority]
	if index < 0 || index >= len(layer) {
		return Rule[T]{}, fmt.Errorf("%w: %d at priority %d", ErrIndexNotFound, index, priority)
	}

	r = layer[index]
	a.layers[priority] = append(layer[:index], layer[index+1:]...)

	if priority == len(a.layers)-1 && len(a.layers[priority]) == 0 {
		a.layers = a.layers[:priority]
	}

	return r, nil
}

// RemoveRuleByDatetime removes and returns the first rule at the given
// priority that is active at t, in insertion order.  It returns nil when the
// priority is the base layer, does not exist, or holds no matching rule.
func (a *Availability[T]) RemoveRuleByDatetime(priority int, t time.Time) (r *Rule[T]) {
	if priority <= 0 || priority >= len(a.layers) {
		return nil
	}

	layer := a.layers[priority]
	for i, rule := range layer {
		if rule.IsActive(t) {
			rule := rule
			a.layers[priority] = append(layer[:i], layer[i+1:]...)

			return &rule
		}
	}

	return nil
}

// RemoveRuleByString is like [Availability.RemoveRuleByDatetime] but accepts
// a compact [CompactTimeLayout] timestamp.  Malformed input removes nothing.
func (a *Availability[T]) RemoveRuleByString(priority int, timestamp string) (r *Rule[T]) {
	t, err := time.Parse(CompactTimeLayout, timestamp)
	if err != nil {
		return nil
	}

	return a.RemoveRuleByDatetime(priority, t)
}

// FrameAt returns the derived frame containing t, or nil.  Derivation
// produces non-overlapping frames, so at most one frame matches.
func (a *Availability[T]) FrameAt(t time.Time) (f *Frame[T]) {
	for i := range a.frames {
		if a.frames[i].contains(t) {
			return &a.frames[i]
		}
	}

	return nil
}

// IsOpenAt returns true if a derived frame contains t and is on.
func (a *Availability[T]) IsOpenAt(t time.Time) (ok bool) {
	f := a.FrameAt(t)

	return f != nil && f.IsOn()
}

// PayloadAt returns the payload of the derived frame containing t, or nil.
func (a *Availability[T]) PayloadAt(t time.Time) (p *T) {
	f := a.FrameAt(t)
	if f == nil {
		return nil
	}

	return f.payload
}

// IsOpenString is like [Availability.IsOpenAt] but accepts a compact
// [CompactTimeLayout] timestamp.  Malformed input reports closed.
func (a *Availability[T]) IsOpenString(timestamp string) (ok bool) {
	t, err := time.Parse(CompactTimeLayout, timestamp)
	if err != nil {
		return false
	}

	return a.IsOpenAt(t)
}

// PayloadString is like [Availability.PayloadAt] but accepts a compact
// [CompactTimeLayout] timestamp.  Malformed input yields nil.
func (a *Availability[T]) PayloadString(timestamp string) (p *T) {
	t, err := time.Parse(CompactTimeLayout, timestamp)
	if err != nil {
		return nil
	}

	return a.PayloadAt(t)
}
