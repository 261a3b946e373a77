package availability

import (
	"time"

	"github.com/AdguardTeam/golibs/log"
	"golang.org/x/exp/slices"
)

// ToFrames replaces the frame sequence with the full derivation of every
// layer, the base layer included.  The base rule provides total coverage of
// its span, so the result has no gaps within it.
func (a *Availability[T]) ToFrames() {
	var frames []Frame[T]
	for priority := len(a.layers) - 1; priority >= 0; priority-- {
		frames = overlay(frames, a.layerFrames(priority))
	}

	sortFrames(frames)
	a.frames = frames
}

// ToFramesInRange replaces the frame sequence with the derivation of every
// layer above the base, clipped to the window [start, end).  Stretches of
// the window covered by no rule are filled with synthetic off frames, so the
// result partitions the window completely.
func (a *Availability[T]) ToFramesInRange(start, end time.Time) {
	var frames []Frame[T]
	for priority := len(a.layers) - 1; priority >= 1; priority-- {
		frames = overlay(frames, clipFrames(a.layerFrames(priority), start, end))
	}

	sortFrames(frames)
	a.frames = fillGaps(frames, start, end)
}

// ToFramesInRangeString is like [Availability.ToFramesInRange] but accepts
// compact [CompactTimeLayout] timestamps.  Malformed input leaves the frame
// sequence untouched.
func (a *Availability[T]) ToFramesInRangeString(start, end string) {
	startTime, err := time.Parse(CompactTimeLayout, start)
	if err != nil {
		return
	}

	endTime, err := time.Parse(CompactTimeLayout, end)
	if err != nil {
		return
	}

	a.ToFramesInRange(startTime, endTime)
}

// layerFrames expands every rule at the given priority into absolute pieces
// and converts them to frames, sorted by start and non-overlapping.  Rules
// at one priority may legally overlap when an absolute rule was added over a
// relative one; the later rule wins, so each rule's frames are overlaid onto
// the frames of the rules added before it.  A rule that cannot be expanded
// is skipped rather than aborting the whole derivation.
func (a *Availability[T]) layerFrames(priority int) (frames []Frame[T]) {
	for _, r := range a.layers[priority] {
		pieces, err := r.Expand()
		if err != nil {
			log.Error("availability: expanding rule at priority %d: %s", priority, err)

			continue
		}

		ruleFrames := make([]Frame[T], 0, len(pieces))
		for _, piece := range pieces {
			ruleFrames = append(ruleFrames, Frame[T]{
				start:   piece.start,
				end:     piece.end,
				payload: piece.payload,
				off:     piece.off,
			})
		}

		frames = overlay(ruleFrames, frames)
	}

	sortFrames(frames)

	return frames
}

// sortFrames sorts frames ascending by start time.
func sortFrames[T any](frames []Frame[T]) {
	slices.SortFunc(frames, func(a, b Frame[T]) (less bool) {
		return a.start.Before(b.start)
	})
}

// overlay merges a lower-priority frame set into a higher-priority one.
// Higher frames are kept whole; lower frames are fragmented around them so
// that the result stays non-overlapping.  Both inputs must be sorted by
// start and internally non-overlapping.  lower is consumed and may be
// modified.
func overlay[T any](higher, lower []Frame[T]) (merged []Frame[T]) {
	if len(higher) == 0 {
		return lower
	}

	merged = make([]Frame[T], 0, len(higher)+len(lower))

	i, j := 0, 0
	for i < len(higher) && j < len(lower) {
		h, l := higher[i], lower[j]
		switch {
		case !h.start.Before(l.end):
			// l lies entirely before h.
			merged = append(merged, l)
			j++
		case !l.start.Before(h.end):
			// h lies entirely before l.
			merged = append(merged, h)
			i++
		default:
			if l.start.Before(h.start) {
				merged = append(merged, Frame[T]{
					start:   l.start,
					end:     h.start,
					payload: l.payload,
					off:     l.off,
				})
			}

			if l.end.After(h.end) {
				// The remainder of l competes with later higher frames.
				merged = append(merged, h)
				i++
				lower[j].start = h.end
			} else {
				// l is fully covered; h may still cover following lower
				// frames, so it is not emitted yet.
				j++
			}
		}
	}

	merged = append(merged, higher[i:]...)
	merged = append(merged, lower[j:]...)

	return merged
}

// clipFrames clamps frames to the window [start, end), discarding frames
// entirely outside it.
func clipFrames[T any](frames []Frame[T], start, end time.Time) (clipped []Frame[T]) {
	for _, f := range frames {
		if !f.end.After(start) || !f.start.Before(end) {
			continue
		}

		if f.start.Before(start) {
			f.start = start
		}
		if f.end.After(end) {
			f.end = end
		}

		clipped = append(clipped, f)
	}

	return clipped
}

// fillGaps pads the sorted frame sequence with synthetic off frames so that
// it covers the window [start, end) without gaps, then drops zero-width
// artifacts left over from clipping.
func fillGaps[T any](frames []Frame[T], start, end time.Time) (filled []Frame[T]) {
	if len(frames) == 0 {
		if !start.Before(end) {
			return nil
		}

		return []Frame[T]{{start: start, end: end, off: true}}
	}

	filled = make([]Frame[T], 0, len(frames)+2)
	if frames[0].start.After(start) {
		filled = append(filled, Frame[T]{start: start, end: frames[0].start, off: true})
	}

	for i, f := range frames {
		filled = append(filled, f)
		if i+1 < len(frames) && frames[i+1].start.After(f.end) {
			filled = append(filled, Frame[T]{start: f.end, end: frames[i+1].start, off: true})
		}
	}

	if last := frames[len(frames)-1]; last.end.Before(end) {
		filled = append(filled, Frame[T]{start: last.end, end: end, off: true})
	}

	n := 0
	for _, f := range filled {
		if f.end.After(f.start) {
			filled[n] = f
			n++
		}
	}

	return filled[:n]
}
