package trigger

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
)

// Trigger is one detection event. Angles are in degrees, times in GPS seconds.
type Trigger struct {
	Time  float64 // arrival time at the detector
	Phi   float64 // detector-frame azimuth
	Theta float64 // detector-frame polar angle
	RA    float64 // right ascension
	Dec   float64 // declination

	params map[string]float64

	BaryTime  float64
	Longitude float64
	Latitude  float64
}

// Corrector converts detector arrival times into barycentric times.
type Corrector interface {
	Correct(gps, ra, dec float64) float64
}

// New builds a Trigger and derives its sky position. BaryTime starts equal to
// Time until a Table applies a Corrector.
func New(time, phi, theta, ra, dec float64, params map[string]float64) Trigger {
	pos := sky.FromDetector(phi, theta)
	t := Trigger{
		Time:      time,
		Phi:       phi,
		Theta:     theta,
		RA:        ra,
		Dec:       dec,
		BaryTime:  time,
		Longitude: pos.Lon,
		Latitude:  pos.Lat,
	}
	if len(params) > 0 {
		t.params = make(map[string]float64, len(params))
		for k, v := range params {
			t.params[k] = v
		}
	}
	return t
}

// Position returns the derived sky position.
func (t Trigger) Position() sky.Point {
	return sky.Point{Lat: t.Latitude, Lon: t.Longitude}
}

// Param returns the named auxiliary parameter.
func (t Trigger) Param(name string) (float64, bool) {
	v, ok := t.params[name]
	return v, ok
}

// Params returns a copy of the auxiliary parameters.
func (t Trigger) Params() map[string]float64 {
	out := make(map[string]float64, len(t.params))
	for k, v := range t.params {
		out[k] = v
	}
	return out
}

var ErrNonFiniteTime = errors.New("trigger time is not finite")

// Table is an immutable list of triggers ordered by barycentric time.
type Table struct {
	triggers []Trigger
	times    []float64
}

// NewTable copies triggers, applies c (when non-nil) and sorts by barycentric
// time. Equal times keep their input order.
func NewTable(triggers []Trigger, c Corrector) (*Table, error) {
	rows := make([]Trigger, len(triggers))
	copy(rows, triggers)

	for i := range rows {
		if c != nil {
			rows[i].BaryTime = c.Correct(rows[i].Time, rows[i].RA, rows[i].Dec)
		}
		if math.IsNaN(rows[i].BaryTime) || math.IsInf(rows[i].BaryTime, 0) {
			return nil, fmt.Errorf("row %d: %w", i, ErrNonFiniteTime)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].BaryTime < rows[j].BaryTime })

	times := make([]float64, len(rows))
	for i, r := range rows {
		times[i] = r.BaryTime
	}
	return &Table{triggers: rows, times: times}, nil
}

func (t *Table) Len() int { return len(t.triggers) }

func (t *Table) At(i int) Trigger { return t.triggers[i] }

// Times returns the barycentric times; callers must not modify the slice.
func (t *Table) Times() []float64 { return t.times }

// Span returns the first and last barycentric times.
func (t *Table) Span() (first, last float64) {
	if len(t.times) == 0 {
		return 0, 0
	}
	return t.times[0], t.times[len(t.times)-1]
}

// Nearest returns the index of the trigger closest in time to x. Ties resolve
// to the earliest index. It returns -1 for an empty table.
func (t *Table) Nearest(x float64) int {
	n := len(t.times)
	if n == 0 {
		return -1
	}
	idx := sort.SearchFloat64s(t.times, x)
	if idx == n {
		return t.firstOf(n - 1)
	}
	if idx == 0 {
		return 0
	}
	below := t.firstOf(idx - 1)
	if x-t.times[below] <= t.times[idx]-x {
		return below
	}
	return idx
}

// firstOf walks back to the first index holding the same time as i.
func (t *Table) firstOf(i int) int {
	for i > 0 && t.times[i-1] == t.times[i] {
		i--
	}
	return i
}
