package likelihood

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sequence"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/similarity"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid likelihood configuration")

// Config holds the search parameters for one engine.
type Config struct {
	Distance   similarity.DistanceWindow
	TimeWindow float64 // base timing uncertainty, seconds
	Sequence   sequence.Sequence
	MaxSeq     int

	// MinDelta is the smallest accepted sequence time unit. Zero derives it
	// from the segment as totalTime/250.
	MinDelta float64
	// ActiveFraction is the detector duty cycle in (0, 1]. Zero means 1.
	ActiveFraction float64

	Params         []string
	ParamMidpoints map[string]float64
	ParamWindows   map[string]float64

	// Workers bounds concurrent pair rows. Values below 2 run sequentially.
	Workers int
}

func (c Config) Validate() error {
	if err := c.Distance.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(c.TimeWindow > 0) || math.IsInf(c.TimeWindow, 0) {
		return fmt.Errorf("%w: time window must be positive, got %v", ErrInvalidConfig, c.TimeWindow)
	}
	if c.Sequence == nil {
		return fmt.Errorf("%w: sequence is required", ErrInvalidConfig)
	}
	if c.MaxSeq < 1 {
		return fmt.Errorf("%w: maxSeq must be positive, got %d", ErrInvalidConfig, c.MaxSeq)
	}
	if c.MinDelta < 0 || math.IsNaN(c.MinDelta) || math.IsInf(c.MinDelta, 0) {
		return fmt.Errorf("%w: minDelta must be non-negative, got %v", ErrInvalidConfig, c.MinDelta)
	}
	if c.ActiveFraction < 0 || c.ActiveFraction > 1 || math.IsNaN(c.ActiveFraction) {
		return fmt.Errorf("%w: active fraction must be in (0, 1], got %v", ErrInvalidConfig, c.ActiveFraction)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := c.paramFilter(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) paramFilter() (*similarity.ParamFilter, error) {
	if len(c.Params) == 0 && (len(c.ParamMidpoints) > 0 || len(c.ParamWindows) > 0) {
		return nil, fmt.Errorf("midpoints or windows given without params: %w", similarity.ErrParamConfig)
	}
	return similarity.NewParamFilter(c.Params, c.ParamMidpoints, c.ParamWindows)
}

func (c Config) activeFraction() float64 {
	if c.ActiveFraction == 0 {
		return 1
	}
	return c.ActiveFraction
}
