package trigger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shift float64

func (s shift) Correct(gps, ra, dec float64) float64 { return gps + float64(s) + ra }

func tableOf(t *testing.T, times ...float64) *Table {
	t.Helper()
	rows := make([]Trigger, len(times))
	for i, x := range times {
		rows[i] = New(x, 0, 90, 0, 0, nil)
	}
	tbl, err := NewTable(rows, nil)
	require.NoError(t, err)
	return tbl
}

func TestNewDerivesPosition(t *testing.T) {
	tr := New(100, 300, 30, 10, 20, map[string]float64{"snr": 8})
	assert.Equal(t, 100.0, tr.BaryTime)
	assert.Equal(t, -60.0, tr.Longitude)
	assert.Equal(t, 60.0, tr.Latitude)
	assert.Equal(t, -60.0, tr.Position().Lon)

	v, ok := tr.Param("snr")
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)
	_, ok = tr.Param("missing")
	assert.False(t, ok)
}

func TestNewCopiesParams(t *testing.T) {
	params := map[string]float64{"snr": 8}
	tr := New(1, 0, 0, 0, 0, params)
	params["snr"] = 99

	v, _ := tr.Param("snr")
	assert.Equal(t, 8.0, v)

	out := tr.Params()
	out["snr"] = 42
	v, _ = tr.Param("snr")
	assert.Equal(t, 8.0, v)
}

func TestNewTableSortsByBaryTime(t *testing.T) {
	rows := []Trigger{
		New(30, 0, 0, 0, 0, nil),
		New(10, 0, 0, 0, 0, nil),
		New(20, 0, 0, 0, 0, nil),
	}
	tbl, err := NewTable(rows, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 30}, tbl.Times())
	assert.Equal(t, 30.0, rows[0].Time, "input left untouched")

	first, last := tbl.Span()
	assert.Equal(t, 10.0, first)
	assert.Equal(t, 30.0, last)
}

func TestNewTableAppliesCorrector(t *testing.T) {
	rows := []Trigger{
		New(10, 0, 0, 50, 0, nil), // 10 + 5 + 50
		New(20, 0, 0, 0, 0, nil),  // 20 + 5
	}
	tbl, err := NewTable(rows, shift(5))
	require.NoError(t, err)

	assert.Equal(t, []float64{25, 65}, tbl.Times())
	assert.Equal(t, 20.0, tbl.At(0).Time)
	assert.Equal(t, 10.0, tbl.At(1).Time)
}

func TestNewTableRejectsNonFinite(t *testing.T) {
	_, err := NewTable([]Trigger{New(math.NaN(), 0, 0, 0, 0, nil)}, nil)
	assert.ErrorIs(t, err, ErrNonFiniteTime)
}

func TestNewTableStableForEqualTimes(t *testing.T) {
	rows := []Trigger{
		New(5, 1, 0, 0, 0, nil),
		New(5, 2, 0, 0, 0, nil),
		New(1, 3, 0, 0, 0, nil),
	}
	tbl, err := NewTable(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, tbl.At(0).Phi)
	assert.Equal(t, 1.0, tbl.At(1).Phi)
	assert.Equal(t, 2.0, tbl.At(2).Phi)
}

func TestNearest(t *testing.T) {
	tbl := tableOf(t, 10, 20, 20, 40)

	tests := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{10, 0},
		{14, 0},
		{15, 0}, // tie goes to the earlier trigger
		{16, 1},
		{20, 1}, // first of the duplicated times
		{29, 1},
		{30, 1}, // tie between the duplicate block and 40
		{31, 3},
		{100, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.Nearest(tt.x), "Nearest(%v)", tt.x)
	}
}

func TestNearestEmpty(t *testing.T) {
	tbl := tableOf(t)
	assert.Equal(t, -1, tbl.Nearest(3))
	first, last := tbl.Span()
	assert.Zero(t, first)
	assert.Zero(t, last)
}

func TestNearestDuplicateAtEnd(t *testing.T) {
	tbl := tableOf(t, 1, 7, 7)
	assert.Equal(t, 1, tbl.Nearest(50))
}
