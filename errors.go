package availability

import "github.com/AdguardTeam/golibs/errors"

// Errors returned by rule construction and rule table mutation.
const (
	// ErrInvalidRange is returned by [NewRule] when start is not strictly
	// before end.
	ErrInvalidRange errors.Error = "start is not before end"

	// ErrReservedPriority is returned when a mutation targets priority 0,
	// which holds the base rule.
	ErrReservedPriority errors.Error = "priority 0 is reserved for the base rule"

	// ErrAbsoluteConflict is returned by [Availability.AddRule] when the new
	// rule overlaps an absolute rule at the same priority.
	ErrAbsoluteConflict errors.Error = "overlaps an absolute rule"

	// ErrWeekdayConflict is returned by [Availability.AddRule] when the new
	// rule overlaps a relative rule at the same priority and shares one of
	// its weekdays.
	ErrWeekdayConflict errors.Error = "overlaps a relative rule with clashing weekdays"

	// ErrPriorityNotFound is returned by [Availability.AddRule] for a
	// negative priority and by [Availability.RemoveRuleByIndex] when no
	// layer exists at the given priority.
	ErrPriorityNotFound errors.Error = "no such priority"

	// ErrIndexNotFound is returned by [Availability.RemoveRuleByIndex] when
	// the layer holds no rule at the given index.
	ErrIndexNotFound errors.Error = "no rule at index"

	// ErrUndividableRange is returned by [Rule.Expand] when a relative rule
	// spans a single calendar day and cannot be split into per-day rules.
	ErrUndividableRange errors.Error = "relative rule spans a single day"
)
