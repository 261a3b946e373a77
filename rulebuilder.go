package availability

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/errors"
)

// Builder validation errors.
const (
	errNoStart errors.Error = "start time is required and was never set"
	errNoEnd   errors.Error = "end time is required and was never set"
)

// RuleBuilder assembles a [Rule] from raw string or structured input.
// Setters record values without validating them and return the builder for
// chaining; [RuleBuilder.Build] performs all validation and reports the
// first failure, so malformed input never reaches the engine.
type RuleBuilder[T any] struct {
	err      error
	payload  *T
	startStr string
	endStr   string
	weekdays Weekdays
	off      bool
}

// NewRuleBuilder returns an empty builder.  A rule built without calling any
// weekday setter is absolute.
func NewRuleBuilder[T any]() (b *RuleBuilder[T]) {
	return &RuleBuilder[T]{}
}

// StartString sets the start of the rule from a [TimeLayout] datetime
// string.  The string is validated by Build.
func (b *RuleBuilder[T]) StartString(s string) (self *RuleBuilder[T]) {
	b.startStr = s

	return b
}

// EndString sets the end of the rule from a [TimeLayout] datetime string.
// The string is validated by Build.
func (b *RuleBuilder[T]) EndString(s string) (self *RuleBuilder[T]) {
	b.endStr = s

	return b
}

// Start sets the start of the rule from t.
func (b *RuleBuilder[T]) Start(t time.Time) (self *RuleBuilder[T]) {
	b.startStr = t.Format(TimeLayout)

	return b
}

// End sets the end of the rule from t.
func (b *RuleBuilder[T]) End(t time.Time) (self *RuleBuilder[T]) {
	b.endStr = t.Format(TimeLayout)

	return b
}

// Weekdays adds the days named by tokens to the rule's weekday set.  Tokens
// follow [ParseWeekdays].  A single unknown token fails the whole build.
func (b *RuleBuilder[T]) Weekdays(tokens ...string) (self *RuleBuilder[T]) {
	w, err := ParseWeekdays(tokens...)
	if err != nil && b.err == nil {
		b.err = err
	}

	b.weekdays = b.weekdays.Union(w)

	return b
}

// Monday adds Monday to the rule's weekday set.
func (b *RuleBuilder[T]) Monday() (self *RuleBuilder[T]) {
	b.weekdays |= Monday

	return b
}

// Tuesday adds Tuesday to the rule's weekday set.
func (b *RuleBuilder[T]) Tuesday() (self *RuleBuilder[T]) {
	b.weekdays |= Tuesday

	return b
}

// Wednesday adds Wednesday to the rule's weekday set.
func (b *RuleBuilder[T]) Wednesday() (self *RuleBuilder[T]) {
	b.weekdays |= Wednesday

	return b
}

// Thursday adds Thursday to the rule's weekday set.
func (b *RuleBuilder[T]) Thursday() (self *RuleBuilder[T]) {
	b.weekdays |= Thursday

	return b
}

// Friday adds Friday to the rule's weekday set.
func (b *RuleBuilder[T]) Friday() (self *RuleBuilder[T]) {
	b.weekdays |= Friday

	return b
}

// Saturday adds Saturday to the rule's weekday set.
func (b *RuleBuilder[T]) Saturday() (self *RuleBuilder[T]) {
	b.weekdays |= Saturday

	return b
}

// Sunday adds Sunday to the rule's weekday set.
func (b *RuleBuilder[T]) Sunday() (self *RuleBuilder[T]) {
	b.weekdays |= Sunday

	return b
}

// AllWeekdays sets the rule's weekday set to every day of the week.
func (b *RuleBuilder[T]) AllWeekdays() (self *RuleBuilder[T]) {
	b.weekdays = AllWeekdays

	return b
}

// Off sets whether the rule switches its span off.
func (b *RuleBuilder[T]) Off(off bool) (self *RuleBuilder[T]) {
	b.off = off

	return b
}

// Payload attaches p to the rule.
func (b *RuleBuilder[T]) Payload(p T) (self *RuleBuilder[T]) {
	b.payload = &p

	return b
}

// Build parses and validates the collected fields and returns the resulting
// rule.  It reports the first failure: a previously recorded weekday error,
// a missing or malformed datetime, or an inverted range.
func (b *RuleBuilder[T]) Build() (r Rule[T], err error) {
	defer func() { err = errors.Annotate(err, "building rule: %w") }()

	if b.err != nil {
		return Rule[T]{}, b.err
	}

	if b.startStr == "" {
		return Rule[T]{}, errNoStart
	}

	if b.endStr == "" {
		return Rule[T]{}, errNoEnd
	}

	start, err := time.Parse(TimeLayout, b.startStr)
	if err != nil {
		return Rule[T]{}, fmt.Errorf("parsing start: %w", err)
	}

	end, err := time.Parse(TimeLayout, b.endStr)
	if err != nil {
		return Rule[T]{}, fmt.Errorf("parsing end: %w", err)
	}

	return NewRule(start, end, b.weekdays, b.off, b.payload)
}
