package locator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sequence"
)

func newLocator(t *testing.T, p Params) *Locator {
	t.Helper()
	l, err := New(p)
	require.NoError(t, err)
	return l
}

func TestScaleInsertsBetweenAnchors(t *testing.T) {
	const d = 1e5
	l := newLocator(t, Params{
		MinTime:   990,
		MaxTime:   1000 + 5*d + 10,
		Sequence:  sequence.Primes{},
		MaxSeq:    5,
		MinDelta:  1,
		TimeError: 10,
	})

	set, ok, err := l.Scale(1000, 1000+5*d, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d, set.Delta)
	assert.Equal(t, []float64{1000 + 2*d}, set.Times)
	assert.Equal(t, []float64{2}, set.Labels)
	assert.InDelta(t, 10*math.Sqrt(1.32), set.Windows[0], 1e-12)

	// single term: nothing between, neighbours fall outside the range
	_, ok, err = l.Scale(1000, 1000+5*d, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScaleSwapsAnchors(t *testing.T) {
	const d = 1e5
	l := newLocator(t, Params{
		MinTime: 990, MaxTime: 1000 + 5*d + 10,
		Sequence: sequence.Primes{}, MaxSeq: 5, MinDelta: 1, TimeError: 10,
	})
	a, okA, err := l.Scale(1000, 1000+5*d, 1, 2)
	require.NoError(t, err)
	b, okB, err := l.Scale(1000+5*d, 1000, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestScaleWrapsAroundRing(t *testing.T) {
	// ring [2 3 5], delta 10
	l := newLocator(t, Params{
		MinTime: -5, MaxTime: 230,
		Sequence: sequence.Primes{}, MaxSeq: 3, MinDelta: 1, TimeError: 1,
	})

	set, ok, err := l.Scale(100, 120, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10.0, set.Delta)
	assert.Equal(t, []float64{0, 20, 50, 150, 200, 220}, set.Times)
	assert.Equal(t, []float64{2, 3, 5, 3, 5, 2}, set.Labels)
	require.Len(t, set.Windows, 6)
	assert.InDelta(t, math.Sqrt(51), set.Windows[0], 1e-12)
	assert.InDelta(t, math.Sqrt(13.5), set.Windows[2], 1e-12)
}

func TestScaleDiscardsSmallDelta(t *testing.T) {
	l := newLocator(t, Params{
		MinTime: 0, MaxTime: 1000,
		Sequence: sequence.ConstantOne{}, MaxSeq: 4, MinDelta: 50, TimeError: 1,
	})
	// delta == MinDelta is discarded
	_, ok, err := l.Scale(100, 200, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.Scale(100, 100, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocateBoundsAndChronology(t *testing.T) {
	p := Params{
		MinTime: 0, MaxTime: 10000,
		Sequence: sequence.Primes{}, MaxSeq: 6, MinDelta: 0.5, TimeError: 5,
	}
	sets, err := newLocator(t, p).Locate(3100, 4900)
	require.NoError(t, err)
	require.NotEmpty(t, sets)
	checkSets(t, p, sets)
}

func TestLocateBoundsAndChronologyRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	seqs := []sequence.Sequence{sequence.Primes{}, sequence.Fibonacci{}, sequence.ConstantOne{}}

	for _, seq := range seqs {
		for _, maxSeq := range []int{1, 2, 3, 5, 8} {
			for n := 0; n < 25; n++ {
				minTime := 1e9 + rng.Float64()*1e6
				span := 1e5 + rng.Float64()*1e7
				p := Params{
					MinTime:   minTime,
					MaxTime:   minTime + span,
					Sequence:  seq,
					MaxSeq:    maxSeq,
					MinDelta:  span / 250,
					TimeError: 1 + rng.Float64()*500,
				}
				t1 := p.MinTime + rng.Float64()*span
				t2 := p.MinTime + rng.Float64()*span

				sets, err := newLocator(t, p).Locate(t1, t2)
				require.NoError(t, err, "%s maxSeq=%d t1=%v t2=%v", seq.Name(), maxSeq, t1, t2)
				checkSets(t, p, sets)
			}
		}
	}
}

func checkSets(t *testing.T, p Params, sets []CandidateSet) {
	t.Helper()
	prevI, prevJ := 0, 0
	for _, s := range sets {
		assert.True(t, s.Start > prevI || (s.Start == prevI && s.End > prevJ), "scales ordered")
		assert.LessOrEqual(t, s.Start, s.End)
		prevI, prevJ = s.Start, s.End

		require.NotZero(t, s.Len())
		assert.Len(t, s.Windows, s.Len())
		assert.Len(t, s.Labels, s.Len())
		assert.Greater(t, s.Delta, p.MinDelta)
		for k, x := range s.Times {
			assert.Greater(t, x, p.MinTime)
			assert.Less(t, x, p.MaxTime)
			assert.GreaterOrEqual(t, s.Windows[k], p.TimeError)
			if k > 0 {
				assert.Greater(t, x, s.Times[k-1], "chronological")
			}
		}
	}
}

func TestScaleBelowTimeResolution(t *testing.T) {
	t1 := 1.2e9
	t2 := math.Nextafter(t1, math.Inf(1))
	l := newLocator(t, Params{
		MinTime: t1 - 1e-6, MaxTime: t2 + 1e-6,
		Sequence: sequence.ConstantOne{}, MaxSeq: 3, MinDelta: 1e-12, TimeError: 1,
	})

	// (1, 1) steps by exactly one ulp and is still walkable
	set, ok, err := l.Scale(t1, t2, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Less(t, set.Len(), 20)

	done := make(chan error, 1)
	go func() {
		_, _, err := l.Scale(t1, t2, 1, 3)
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrDegenerateScale)
	case <-time.After(3 * time.Second):
		t.Fatal("Scale did not return")
	}

	_, err = l.Locate(t1, t2)
	assert.ErrorIs(t, err, ErrDegenerateScale)
}

func TestWindowsGrowAwayFromAnchors(t *testing.T) {
	l := newLocator(t, Params{
		MinTime: 0, MaxTime: 100000,
		Sequence: sequence.ConstantOne{}, MaxSeq: 3, MinDelta: 1, TimeError: 2,
	})
	t1, t2 := 50000.0, 50300.0
	set, ok, err := l.Scale(t1, t2, 1, 3)
	require.NoError(t, err)
	require.True(t, ok)

	var before, after []float64
	for k, x := range set.Times {
		switch {
		case x < t1:
			before = append(before, set.Windows[k])
		case x > t2:
			after = append(after, set.Windows[k])
		}
	}
	require.NotEmpty(t, before)
	require.NotEmpty(t, after)
	for k := 1; k < len(before); k++ {
		assert.Less(t, before[k], before[k-1])
	}
	for k := 1; k < len(after); k++ {
		assert.Greater(t, after[k], after[k-1])
	}
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 3.0, Window(10, 10, 20, 5, 3), "at an anchor")
	assert.InDelta(t, 3*math.Sqrt(1.5), Window(15, 10, 20, 5, 3), 1e-12)
	assert.InDelta(t, 3*math.Sqrt(1+2*16.0/4), Window(40, 10, 20, 5, 3), 1e-12)
}

func TestNewRejectsDegenerateSequence(t *testing.T) {
	zeros := sequence.Func(func(a, b int) []float64 { return make([]float64, b-a+1) })
	_, err := New(Params{MinTime: 0, MaxTime: 1, Sequence: zeros, MaxSeq: 3, MinDelta: 1, TimeError: 1})
	assert.ErrorIs(t, err, ErrDegenerateSequence)

	negative := sequence.Func(func(a, b int) []float64 {
		out := make([]float64, b-a+1)
		for i := range out {
			out[i] = -1
		}
		return out
	})
	_, err = New(Params{MinTime: 0, MaxTime: 1, Sequence: negative, MaxSeq: 3, MinDelta: 1, TimeError: 1})
	assert.ErrorIs(t, err, ErrDegenerateSequence)
}

func TestNewValidatesParams(t *testing.T) {
	good := Params{MinTime: 0, MaxTime: 10, Sequence: sequence.Primes{}, MaxSeq: 3, MinDelta: 1, TimeError: 1}

	tests := map[string]func(p *Params){
		"no sequence":    func(p *Params) { p.Sequence = nil },
		"zero maxSeq":    func(p *Params) { p.MaxSeq = 0 },
		"zero minDelta":  func(p *Params) { p.MinDelta = 0 },
		"zero timeError": func(p *Params) { p.TimeError = 0 },
		"empty range":    func(p *Params) { p.MaxTime = p.MinTime },
		"infinite range": func(p *Params) { p.MinTime = math.Inf(-1) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := good
			mutate(&p)
			_, err := New(p)
			assert.Error(t, err)
		})
	}

	_, err := New(good)
	assert.NoError(t, err)
}

func TestScaleZeroSum(t *testing.T) {
	// first term zero, the rest ones
	seq := sequence.Func(func(a, b int) []float64 {
		out := make([]float64, 0, b-a+1)
		for k := a; k <= b; k++ {
			if k == 1 {
				out = append(out, 0)
			} else {
				out = append(out, 1)
			}
		}
		return out
	})
	l := newLocator(t, Params{MinTime: 0, MaxTime: 1000, Sequence: seq, MaxSeq: 3, MinDelta: 1, TimeError: 1})

	_, _, err := l.Scale(100, 200, 1, 1)
	assert.ErrorIs(t, err, ErrDegenerateScale)

	_, err = l.Locate(100, 200)
	assert.ErrorIs(t, err, ErrDegenerateScale)
}

func TestScaleZeroSeparationUnits(t *testing.T) {
	quarter := sequence.Func(func(a, b int) []float64 {
		out := make([]float64, b-a+1)
		for i := range out {
			out[i] = 0.25
		}
		return out
	})
	l := newLocator(t, Params{MinTime: 0, MaxTime: 1000, Sequence: quarter, MaxSeq: 2, MinDelta: 1, TimeError: 1})

	// n rounds to zero, so the window is undefined
	_, _, err := l.Scale(100, 110, 1, 1)
	assert.ErrorIs(t, err, ErrDegenerateScale)
}
