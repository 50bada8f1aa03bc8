// Package locator predicts where further members of an artificial sequence
// would arrive, given two anchor triggers and a sequence scale.
package locator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sequence"
)

var (
	// ErrDegenerateScale is returned when a scale has no finite time unit.
	ErrDegenerateScale = errors.New("degenerate sequence scale")
	// ErrDegenerateSequence is returned when the index ring cannot advance time.
	ErrDegenerateSequence = errors.New("degenerate sequence")
)

// Params fixes everything except the anchor pair.
type Params struct {
	MinTime   float64 // exclusive lower bound, already padded by TimeError
	MaxTime   float64 // exclusive upper bound, already padded by TimeError
	Sequence  sequence.Sequence
	MaxSeq    int     // ring size before the sequence restarts
	MinDelta  float64 // smallest accepted time unit, seconds
	TimeError float64 // base 1-sigma timing error, seconds
}

// CandidateSet holds the predicted arrival times for one anchor pair and scale.
type CandidateSet struct {
	Start, End int     // sequence indices spanning the anchors
	Delta      float64 // seconds per sequence unit
	Times      []float64
	Windows    []float64
	Labels     []float64 // sequence term of the step ending at each time
}

func (c CandidateSet) Len() int { return len(c.Times) }

type Locator struct {
	p    Params
	ring *sequence.Ring
	step float64 // smallest positive ring term
	ulp  float64 // float64 spacing at the largest time in range
}

func New(p Params) (*Locator, error) {
	if p.Sequence == nil {
		return nil, errors.New("locator: sequence is required")
	}
	if p.MaxSeq < 1 {
		return nil, fmt.Errorf("locator: maxSeq must be positive, got %d", p.MaxSeq)
	}
	if !(p.MinDelta > 0) || math.IsInf(p.MinDelta, 0) {
		return nil, fmt.Errorf("locator: minDelta must be positive and finite, got %v", p.MinDelta)
	}
	if !(p.TimeError > 0) || math.IsInf(p.TimeError, 0) {
		return nil, fmt.Errorf("locator: time error must be positive and finite, got %v", p.TimeError)
	}
	if math.IsInf(p.MinTime, 0) || math.IsInf(p.MaxTime, 0) {
		return nil, fmt.Errorf("locator: time range [%v, %v] must be finite", p.MinTime, p.MaxTime)
	}
	if !(p.MinTime < p.MaxTime) {
		return nil, fmt.Errorf("locator: empty time range [%v, %v]", p.MinTime, p.MaxTime)
	}

	ring, err := sequence.NewRing(p.Sequence, p.MaxSeq)
	if err != nil {
		return nil, fmt.Errorf("locator: %w: %w", ErrDegenerateSequence, err)
	}
	values := ring.Values()
	for k, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("locator: %s term %d is %v: %w", p.Sequence.Name(), k+1, v, ErrDegenerateSequence)
		}
	}
	// walks beyond the anchors advance by one full ring per cycle
	if floats.Sum(values) <= 0 {
		return nil, fmt.Errorf("locator: %s sums to zero over [1, %d]: %w", p.Sequence.Name(), p.MaxSeq, ErrDegenerateSequence)
	}

	step := math.Inf(1)
	for _, v := range values {
		if v > 0 {
			step = min(step, v)
		}
	}
	edge := math.Max(math.Abs(p.MinTime), math.Abs(p.MaxTime))
	ulp := math.Nextafter(edge, math.Inf(1)) - edge

	return &Locator{p: p, ring: ring, step: step, ulp: ulp}, nil
}

// Locate returns the accepted candidate sets for every scale 1 <= i <= j <= MaxSeq,
// ordered by i then j.
func (l *Locator) Locate(t1, t2 float64) ([]CandidateSet, error) {
	var sets []CandidateSet
	for i := 1; i <= l.p.MaxSeq; i++ {
		for j := i; j <= l.p.MaxSeq; j++ {
			set, ok, err := l.Scale(t1, t2, i, j)
			if err != nil {
				return nil, err
			}
			if ok {
				sets = append(sets, set)
			}
		}
	}
	return sets, nil
}

// Scale builds the candidate set for indices i..j between the anchors. It
// reports false when the time unit is at or below MinDelta or no candidate
// falls strictly inside (MinTime, MaxTime).
func (l *Locator) Scale(t1, t2 float64, i, j int) (CandidateSet, bool, error) {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	seq := l.p.Sequence.Generate(i, j)
	if len(seq) == 0 {
		return CandidateSet{}, false, fmt.Errorf("%s(%d, %d) is empty: %w", l.p.Sequence.Name(), i, j, ErrDegenerateScale)
	}
	sum := floats.Sum(seq)
	if sum == 0 {
		return CandidateSet{}, false, fmt.Errorf("%s(%d, %d) sums to zero: %w", l.p.Sequence.Name(), i, j, ErrDegenerateScale)
	}
	delta := (t2 - t1) / sum
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return CandidateSet{}, false, fmt.Errorf("%s(%d, %d) gives delta %v: %w", l.p.Sequence.Name(), i, j, delta, ErrDegenerateScale)
	}
	if delta <= l.p.MinDelta {
		return CandidateSet{}, false, nil
	}
	// every walk step must move time, or the walks never reach the bounds
	if delta*l.step < l.ulp {
		return CandidateSet{}, false, fmt.Errorf("%s(%d, %d): delta %v is below time resolution %v: %w",
			l.p.Sequence.Name(), i, j, delta, l.ulp, ErrDegenerateScale)
	}

	set := CandidateSet{Start: i, End: j, Delta: delta}
	l.backward(&set, t1, i)
	between(&set, t1, seq)
	l.forward(&set, t2, j)

	if len(set.Times) == 0 {
		return CandidateSet{}, false, nil
	}

	set.Windows = make([]float64, len(set.Times))
	for k, t := range set.Times {
		w := Window(t, t1, t2, delta, l.p.TimeError)
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return CandidateSet{}, false, fmt.Errorf("window at %v for scale (%d, %d): %w", t, i, j, ErrDegenerateScale)
		}
		set.Windows[k] = w
	}
	return set, true, nil
}

// backward steps from t1 with indices start-1, start-2, ... wrapping below 1
// to MaxSeq, and stops once a time would fall at or before MinTime.
func (l *Locator) backward(set *CandidateSet, t1 float64, start int) {
	var times, labels []float64
	t := t1
	for k := start - 1; ; k-- {
		v := l.ring.Value(k)
		t -= set.Delta * v
		if t <= l.p.MinTime {
			break
		}
		times = append(times, t)
		labels = append(labels, v)
	}
	slices.Reverse(times)
	slices.Reverse(labels)
	set.Times = append(set.Times, times...)
	set.Labels = append(set.Labels, labels...)
}

// between walks t1 -> t2 through seq; the final term lands on t2 itself and is
// not emitted.
func between(set *CandidateSet, t1 float64, seq []float64) {
	t := t1
	for _, v := range seq[:len(seq)-1] {
		t += set.Delta * v
		set.Times = append(set.Times, t)
		set.Labels = append(set.Labels, v)
	}
}

// forward steps from t2 with indices end+1, end+2, ... wrapping past MaxSeq
// to 1, and stops once a time would reach or pass MaxTime.
func (l *Locator) forward(set *CandidateSet, t2 float64, end int) {
	t := t2
	for k := end + 1; ; k++ {
		v := l.ring.Value(k)
		t += set.Delta * v
		if t >= l.p.MaxTime {
			break
		}
		set.Times = append(set.Times, t)
		set.Labels = append(set.Labels, v)
	}
}

// Window returns the 1-sigma uncertainty of a candidate at t. The error grows
// with k, the distance in delta units to the nearer anchor, relative to n,
// the anchor separation in delta units: base * sqrt(1 + 2k²/n²).
func Window(t, t1, t2, delta, base float64) float64 {
	n := math.Round(math.Abs(t1-t2) / delta)
	near := t1
	if math.Abs(t-t1) > math.Abs(t-t2) {
		near = t2
	}
	k := math.Round(math.Abs(t-near) / delta)
	return base * math.Sqrt(1+2*k*k/(n*n))
}
