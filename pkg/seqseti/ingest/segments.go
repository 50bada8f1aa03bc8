package ingest

import (
	"fmt"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

const secondsPerDay = 86400

// Split divides triggers into parts consecutive chunks in input order. The
// first len%parts chunks hold one extra trigger; chunks may be empty when
// parts exceeds the number of triggers.
func Split(triggers []trigger.Trigger, parts int) ([][]trigger.Trigger, error) {
	if parts < 1 {
		return nil, fmt.Errorf("cannot split into %d parts", parts)
	}
	size, extra := len(triggers)/parts, len(triggers)%parts

	out := make([][]trigger.Trigger, parts)
	start := 0
	for p := range out {
		end := start + size
		if p < extra {
			end++
		}
		out[p] = triggers[start:end:end]
		start = end
	}
	return out, nil
}

// SpanDays returns the detector-time extent of a segment in days.
func SpanDays(segment []trigger.Trigger) float64 {
	if len(segment) == 0 {
		return 0
	}
	lo, hi := segment[0].Time, segment[0].Time
	for _, t := range segment[1:] {
		lo = min(lo, t.Time)
		hi = max(hi, t.Time)
	}
	return (hi - lo) / secondsPerDay
}

// FilterByDuration keeps segments whose span lies strictly between minDays
// and maxDays.
func FilterByDuration(segments [][]trigger.Trigger, minDays, maxDays float64) [][]trigger.Trigger {
	var out [][]trigger.Trigger
	for _, s := range segments {
		if d := SpanDays(s); d > minDays && d < maxDays {
			out = append(out, s)
		}
	}
	return out
}
