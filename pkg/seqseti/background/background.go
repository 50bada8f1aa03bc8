// Package background compares a foreground detection statistic against the
// distribution of maxima from background segments.
package background

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// ErrNoBackground is returned when there are no background maxima to compare against.
var ErrNoBackground = errors.New("no background statistics")

// Summary describes a set of per-segment maximum statistics.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

// Summarize computes summary statistics of values.
func Summarize(values []float64) (Summary, error) {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		return s, ErrNoBackground
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s, fmt.Errorf("value %d is %v", i, v)
		}
	}

	data := stats.Float64Data(values)
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return s, err
	}
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.P90, err = data.Percentile(90); err != nil {
		return s, err
	}
	if s.P99, err = data.Percentile(99); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	return s, nil
}

// FalseAlarmProbability is the fraction of background maxima at or above the
// foreground statistic.
func FalseAlarmProbability(foreground float64, background []float64) (float64, error) {
	if len(background) == 0 {
		return 0, ErrNoBackground
	}
	louder := 0
	for _, b := range background {
		if b >= foreground {
			louder++
		}
	}
	return float64(louder) / float64(len(background)), nil
}
