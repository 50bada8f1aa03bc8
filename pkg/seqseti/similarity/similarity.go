package similarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
)

// ErrParamConfig reports auxiliary parameters configured without a matching
// midpoint or window.
var ErrParamConfig = errors.New("incomplete auxiliary parameter configuration")

// DistanceWindow is either disabled (full sky) or an angular limit in degrees.
type DistanceWindow struct {
	enabled bool
	degrees float64
}

// FullSky disables the angular check.
func FullSky() DistanceWindow { return DistanceWindow{} }

// Within limits great-circle separation to deg degrees.
func Within(deg float64) DistanceWindow {
	return DistanceWindow{enabled: true, degrees: deg}
}

func (w DistanceWindow) Enabled() bool { return w.enabled }

// Degrees returns the configured window, or 360 when disabled.
func (w DistanceWindow) Degrees() float64 {
	if !w.enabled {
		return 360
	}
	return w.degrees
}

func (w DistanceWindow) Validate() error {
	if w.enabled && (w.degrees < 0 || math.IsNaN(w.degrees)) {
		return fmt.Errorf("distance window must be non-negative, got %v", w.degrees)
	}
	return nil
}

// Allows reports whether a and b are no further apart than the window.
func (w DistanceWindow) Allows(a, b sky.Point) bool {
	if !w.enabled {
		return true
	}
	return sky.Haversine(a, b) <= w.degrees
}

func (w DistanceWindow) String() string {
	if !w.enabled {
		return "full-sky"
	}
	return fmt.Sprintf("%g deg", w.degrees)
}

// ParamFilter compares auxiliary trigger parameters against fixed midpoints.
// A nil *ParamFilter accepts everything.
type ParamFilter struct {
	names     []string
	midpoints map[string]float64
	windows   map[string]float64
}

// NewParamFilter returns nil when names is empty. Every name needs both a
// midpoint and a non-negative window.
func NewParamFilter(names []string, midpoints, windows map[string]float64) (*ParamFilter, error) {
	if len(names) == 0 {
		return nil, nil
	}
	f := &ParamFilter{
		names:     append([]string(nil), names...),
		midpoints: make(map[string]float64, len(names)),
		windows:   make(map[string]float64, len(names)),
	}
	for _, name := range names {
		mid, ok := midpoints[name]
		if !ok {
			return nil, fmt.Errorf("parameter %q has no midpoint: %w", name, ErrParamConfig)
		}
		win, ok := windows[name]
		if !ok {
			return nil, fmt.Errorf("parameter %q has no window: %w", name, ErrParamConfig)
		}
		if win < 0 || math.IsNaN(win) {
			return nil, fmt.Errorf("parameter %q has invalid window %v: %w", name, win, ErrParamConfig)
		}
		f.midpoints[name] = mid
		f.windows[name] = win
	}
	return f, nil
}

// Names returns the filtered parameter names.
func (f *ParamFilter) Names() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.names...)
}

// Allows fails as soon as one parameter lies further than twice its window
// from the midpoint, or is missing.
func (f *ParamFilter) Allows(value func(name string) (float64, bool)) bool {
	if f == nil {
		return true
	}
	for _, name := range f.names {
		v, ok := value(name)
		if !ok {
			return false
		}
		if math.Abs(v-f.midpoints[name]) > 2*f.windows[name] {
			return false
		}
	}
	return true
}
