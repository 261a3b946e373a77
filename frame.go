package availability

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Frame is a derived, half-open time interval carrying an on/off status and
// an optional payload.  Frames are produced by [Availability] derivation
// only and cannot be constructed outside this package.  The frame sequence
// is replaced wholesale on every derivation.
type Frame[T any] struct {
	start   time.Time
	end     time.Time
	payload *T
	off     bool
}

// Start returns the inclusive start of the frame.
func (f *Frame[T]) Start() (t time.Time) { return f.start }

// End returns the exclusive end of the frame.
func (f *Frame[T]) End() (t time.Time) { return f.end }

// IsOff returns true if the frame is off.
func (f *Frame[T]) IsOff() (ok bool) { return f.off }

// IsOn returns true if the frame is on.
func (f *Frame[T]) IsOn() (ok bool) { return !f.off }

// Payload returns the frame's payload, or nil.
func (f *Frame[T]) Payload() (p *T) { return f.payload }

// contains returns true if t is within [start, end).
func (f *Frame[T]) contains(t time.Time) (ok bool) {
	return !t.Before(f.start) && t.Before(f.end)
}

// frameConfig is the YAML representation of Frame.
type frameConfig[T any] struct {
	Payload *T     `yaml:"payload,omitempty"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Off     bool   `yaml:"off,omitempty"`
}

// type check
var _ yaml.Marshaler = Frame[struct{}]{}

// MarshalYAML implements the [yaml.Marshaler] interface for Frame.  Frames
// are derived only, so there is no unmarshaling counterpart.
func (f Frame[T]) MarshalYAML() (v any, err error) {
	return frameConfig[T]{
		Payload: f.payload,
		Start:   f.start.Format(TimeLayout),
		End:     f.end.Format(TimeLayout),
		Off:     f.off,
	}, nil
}
