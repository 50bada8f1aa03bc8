package background

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{3, 1, 2, 10, 9, 4, 5, 8, 7, 6})
	require.NoError(t, err)

	assert.Equal(t, 10, s.Count)
	assert.InDelta(t, 5.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.25), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 5.5, s.Median, 1e-12)
	assert.Equal(t, 9.0, s.P90)
	assert.Equal(t, 10.0, s.Max)
}

func TestSummarizeSingle(t *testing.T) {
	s, err := Summarize([]float64{-4})
	require.NoError(t, err)
	assert.Equal(t, -4.0, s.Max)
	assert.Equal(t, -4.0, s.P99)
	assert.Zero(t, s.StdDev)
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoBackground)

	_, err = Summarize([]float64{1, math.NaN()})
	assert.Error(t, err)
}

func TestFalseAlarmProbability(t *testing.T) {
	bg := []float64{-3, -1, 0, 2, 5}

	p, err := FalseAlarmProbability(2, bg)
	require.NoError(t, err)
	assert.Equal(t, 0.4, p)

	p, err = FalseAlarmProbability(6, bg)
	require.NoError(t, err)
	assert.Zero(t, p)

	p, err = FalseAlarmProbability(-10, bg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	_, err = FalseAlarmProbability(0, nil)
	assert.ErrorIs(t, err, ErrNoBackground)
}
