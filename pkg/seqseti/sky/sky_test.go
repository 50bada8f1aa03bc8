package sky

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDetector(t *testing.T) {
	assert.Equal(t, Point{Lat: 90, Lon: 0}, FromDetector(0, 0))
	assert.Equal(t, Point{Lat: 0, Lon: -90}, FromDetector(270, 90))
	assert.Equal(t, Point{Lat: -30, Lon: 180}, FromDetector(180, 120))
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		a, b Point
		want float64
	}{
		{Point{0, 0}, Point{0, 0}, 0},
		{Point{0, 0}, Point{0, 90}, 90},
		{Point{0, 0}, Point{90, 0}, 90},
		{Point{0, 0}, Point{0, 180}, 180},
		{Point{45, 10}, Point{-45, -170}, 180},
		{Point{0, 170}, Point{0, -170}, 20},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Haversine(tt.a, tt.b), 1e-5, "%v -> %v", tt.a, tt.b)
		assert.InDelta(t, tt.want, Haversine(tt.b, tt.a), 1e-5, "symmetric")
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point{0, 0}, Point{0, 90})
	assert.InDelta(t, 0, m.Lat, 1e-9)
	assert.InDelta(t, 45, m.Lon, 1e-9)

	m = Midpoint(Point{0, 170}, Point{0, -170})
	assert.InDelta(t, 0, m.Lat, 1e-9)
	assert.InDelta(t, 180, math.Abs(m.Lon), 1e-9)

	a, b := Point{20, 30}, Point{-10, 60}
	m = Midpoint(a, b)
	assert.InDelta(t, Haversine(a, m), Haversine(m, b), 1e-9, "equidistant from both ends")
	assert.InDelta(t, Haversine(a, b)/2, Haversine(a, m), 1e-9)
}

func TestEarthPositionNearOneAU(t *testing.T) {
	for gps := 1.0e9; gps < 1.0e9+400*secondsDay; gps += 20 * secondsDay {
		x, y, z := EarthPosition(gps)
		r := math.Sqrt(x*x + y*y + z*z)
		assert.InDelta(t, 1.0, r, 0.02, "gps=%v", gps)
	}
}

func TestBarycentreDelayBounds(t *testing.T) {
	b := Barycentre{}
	gps := 1.25e9

	// Ecliptic north pole sits perpendicular to the orbit plane.
	pole := b.Correct(gps, 270, 66.560708) - gps
	assert.Less(t, math.Abs(pole), 1.0)

	// A source along the Earth's position vector sees the full delay.
	x, y, z := EarthPosition(gps)
	r := math.Sqrt(x*x + y*y + z*z)
	ra := degrees(math.Atan2(y, x))
	dec := degrees(math.Asin(z / r))
	along := b.Correct(gps, ra, dec) - gps
	assert.InDelta(t, r*LightTimeAU, along, 1e-6)
	assert.Greater(t, along, 480.0)

	opposite := b.Correct(gps, ra+180, -dec) - gps
	assert.InDelta(t, -along, opposite, 1e-6)
}
