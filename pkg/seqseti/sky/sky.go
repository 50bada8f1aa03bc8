package sky

import "math"

// Point is a sky position in degrees.
type Point struct {
	Lat float64
	Lon float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// FromDetector converts detector-frame angles (phi in [0, 360), theta measured
// from the pole) into longitude in (-180, 180] and latitude.
func FromDetector(phi, theta float64) Point {
	lon := phi
	if phi > 180 {
		lon = phi - 360
	}
	return Point{Lat: 90 - theta, Lon: lon}
}

// Haversine returns the great-circle separation of a and b in degrees.
func Haversine(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h marginally past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return degrees(2 * math.Asin(math.Sqrt(h)))
}

// Midpoint returns the point halfway along the great-circle arc joining a and b.
// The midpoint of antipodal points is undefined and resolves to the equator.
func Midpoint(a, b Point) Point {
	x1, y1, z1 := cartesian(a)
	x2, y2, z2 := cartesian(b)

	xm, ym, zm := (x1+x2)/2, (y1+y2)/2, (z1+z2)/2

	lon := math.Atan2(ym, xm)
	lat := math.Atan2(zm, math.Hypot(xm, ym))
	return Point{Lat: degrees(lat), Lon: degrees(lon)}
}

func cartesian(p Point) (x, y, z float64) {
	lat, lon := radians(p.Lat), radians(p.Lon)
	return math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)
}
