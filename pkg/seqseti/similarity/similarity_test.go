package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
)

func lookup(values map[string]float64) func(string) (float64, bool) {
	return func(name string) (float64, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestFullSkyAlwaysAllows(t *testing.T) {
	w := FullSky()
	assert.False(t, w.Enabled())
	assert.Equal(t, 360.0, w.Degrees())
	assert.True(t, w.Allows(sky.Point{Lat: 90}, sky.Point{Lat: -90}))
	assert.Equal(t, "full-sky", w.String())
	assert.NoError(t, w.Validate())
}

func TestWithinChecksSeparation(t *testing.T) {
	w := Within(10)
	assert.True(t, w.Enabled())
	assert.Equal(t, 10.0, w.Degrees())

	origin := sky.Point{}
	assert.True(t, w.Allows(origin, sky.Point{Lat: 0, Lon: 9.9}))
	assert.True(t, w.Allows(origin, sky.Point{Lat: 9.9999, Lon: 0}))
	assert.False(t, w.Allows(origin, sky.Point{Lat: 0, Lon: 10.1}))
	assert.False(t, w.Allows(origin, sky.Point{Lat: -45, Lon: 0}))
}

func TestWithinValidate(t *testing.T) {
	assert.NoError(t, Within(0).Validate())
	assert.Error(t, Within(-1).Validate())
}

func TestNewParamFilterEmpty(t *testing.T) {
	f, err := NewParamFilter(nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.True(t, f.Allows(lookup(nil)), "nil filter accepts everything")
	assert.Nil(t, f.Names())
}

func TestNewParamFilterRejectsPartialConfig(t *testing.T) {
	_, err := NewParamFilter([]string{"snr"}, nil, map[string]float64{"snr": 1})
	assert.ErrorIs(t, err, ErrParamConfig)

	_, err = NewParamFilter([]string{"snr"}, map[string]float64{"snr": 1}, nil)
	assert.ErrorIs(t, err, ErrParamConfig)

	_, err = NewParamFilter([]string{"snr", "freq"},
		map[string]float64{"snr": 1, "freq": 2},
		map[string]float64{"snr": 1})
	assert.ErrorIs(t, err, ErrParamConfig)

	_, err = NewParamFilter([]string{"snr"}, map[string]float64{"snr": 1}, map[string]float64{"snr": -1})
	assert.ErrorIs(t, err, ErrParamConfig)
}

func TestParamFilterAllows(t *testing.T) {
	f, err := NewParamFilter([]string{"snr", "freq"},
		map[string]float64{"snr": 10, "freq": 200},
		map[string]float64{"snr": 1, "freq": 25})
	require.NoError(t, err)
	assert.Equal(t, []string{"snr", "freq"}, f.Names())

	assert.True(t, f.Allows(lookup(map[string]float64{"snr": 10, "freq": 200})))
	assert.True(t, f.Allows(lookup(map[string]float64{"snr": 12, "freq": 150})), "2x window is inclusive")
	assert.False(t, f.Allows(lookup(map[string]float64{"snr": 12.1, "freq": 200})))
	assert.False(t, f.Allows(lookup(map[string]float64{"snr": 10, "freq": 251})))
	assert.False(t, f.Allows(lookup(map[string]float64{"snr": 10})), "missing parameter fails")
}

func TestParamFilterShortCircuits(t *testing.T) {
	f, err := NewParamFilter([]string{"a", "b"},
		map[string]float64{"a": 0, "b": 0},
		map[string]float64{"a": 1, "b": 1})
	require.NoError(t, err)

	var seen []string
	f.Allows(func(name string) (float64, bool) {
		seen = append(seen, name)
		return 100, true
	})
	assert.Equal(t, []string{"a"}, seen)
}
