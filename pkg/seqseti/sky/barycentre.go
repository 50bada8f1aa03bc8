package sky

import "math"

const (
	// LightTimeAU is the light travel time across one astronomical unit.
	LightTimeAU = 499.004783836 // seconds

	gpsEpochJD = 2444244.5 // 1980-01-06T00:00:00 UTC
	j2000JD    = 2451545.0
	gpsToTT    = 51.184 // TT - GPS, seconds
	secondsDay = 86400.0
)

// Barycentre applies the Roemer light-travel-time delay between the Earth
// and the solar system barycentre. It uses the low-precision solar ephemeris
// from the Astronomical Almanac and approximates the barycentre by the Sun,
// so results are good to a few seconds, well inside typical timing windows.
type Barycentre struct{}

// Correct returns the barycentric arrival time of a signal received at gps
// from the equatorial direction (ra, dec), both in degrees.
func (Barycentre) Correct(gps, ra, dec float64) float64 {
	ex, ey, ez := EarthPosition(gps)
	ra, dec = radians(ra), radians(dec)
	nx := math.Cos(dec) * math.Cos(ra)
	ny := math.Cos(dec) * math.Sin(ra)
	nz := math.Sin(dec)
	return gps + (ex*nx+ey*ny+ez*nz)*LightTimeAU
}

// EarthPosition returns the heliocentric equatorial position of the Earth in
// astronomical units at the given GPS time.
func EarthPosition(gps float64) (x, y, z float64) {
	n := gpsEpochJD + (gps+gpsToTT)/secondsDay - j2000JD

	meanLon := radians(math.Mod(280.460+0.9856474*n, 360))
	anomaly := radians(math.Mod(357.528+0.9856003*n, 360))
	eclLon := meanLon + radians(1.915*math.Sin(anomaly)+0.020*math.Sin(2*anomaly))
	dist := 1.00014 - 0.01671*math.Cos(anomaly) - 0.00014*math.Cos(2*anomaly)
	obliquity := radians(23.439 - 0.0000004*n)

	// geocentric Sun, negated
	x = -dist * math.Cos(eclLon)
	y = -dist * math.Cos(obliquity) * math.Sin(eclLon)
	z = -dist * math.Sin(obliquity) * math.Sin(eclLon)
	return x, y, z
}
