package engine

import (
	"math"

	"github.com/stlalpha/clipplay/internal/script"
)

// computeOffset applies spec.md's time formula for one timestamp,
// given the scope's current BPM and the last non-Continuation offset.
// It returns the new offset in milliseconds and whether ts was a
// Continuation (in which case the caller must not update "last").
func computeOffset(ts script.Timestamp, bpm, last float64) (offset float64, isContinuation bool) {
	msPerBeat := 60000.0 / bpm

	switch t := ts.(type) {
	case script.AbsoluteMs:
		return roundMs(t.MS), false
	case script.AbsoluteBeat:
		return roundMs(t.Beat * msPerBeat), false
	case script.AbsoluteBeatPlusMs:
		return roundMs(t.Beat*msPerBeat) + roundMs(t.MS), false
	case script.AbsoluteBeatPlusFraction:
		return roundMs(t.Beat*msPerBeat + (t.Num/t.Den)*msPerBeat), false
	case script.RelativeMs:
		return last + roundMs(t.MS), false
	case script.RelativeBeat:
		return last + roundMs(t.Beat*msPerBeat), false
	case script.RelativeFractionBeat:
		return last + roundMs((t.Num/t.Den)*msPerBeat), false
	case script.Continuation:
		return last, true
	}
	return last, true
}

// roundMs rounds to the nearest integer millisecond, half away from
// zero. spec.md allows either half-to-even or half-away-from-zero as
// long as the implementation is internally consistent.
func roundMs(ms float64) float64 {
	return math.Round(ms)
}
