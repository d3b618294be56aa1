package segment

import "fmt"

// TimeInterval is a span of a video in seconds. Start <= End.
type TimeInterval struct {
	Start float64
	End   float64
}

// Duration returns the length of the interval in seconds.
func (t TimeInterval) Duration() float64 {
	return t.End - t.Start
}

func (t TimeInterval) String() string {
	return fmt.Sprintf("%.3fs-%.3fs", t.Start, t.End)
}

// Derive returns the spans of [0, videoDuration] not covered by silence.
//
// silence is expected sorted by start and non-overlapping; it is not checked.
// The running end is advanced to every silence end, even when that silence
// starts at or before it, so overlapping or zero-length silences suppress a
// keep interval rather than being merged.
func Derive(silence []TimeInterval, videoDuration float64) []TimeInterval {
	keep := make([]TimeInterval, 0, len(silence)+1)

	previousEnd := 0.0
	for _, s := range silence {
		if s.Start > previousEnd {
			keep = append(keep, TimeInterval{Start: previousEnd, End: s.Start})
		}
		previousEnd = s.End
	}

	if previousEnd < videoDuration {
		keep = append(keep, TimeInterval{Start: previousEnd, End: videoDuration})
	}

	return keep
}
