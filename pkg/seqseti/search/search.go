// Package search scores candidate arrival times against a trigger table.
package search

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/locator"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/similarity"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// Input is one candidate set to be scored.
type Input struct {
	Start      float64 // log-likelihood before any candidate is scored
	TotalTime  float64 // effective observing time, seconds
	Table      *trigger.Table
	Candidates locator.CandidateSet
	Midpoint   sky.Point
	Distance   similarity.DistanceWindow
	Params     *similarity.ParamFilter
}

// Score matches every candidate to its nearest trigger and adds the net
// evidence of each match that beats a uniform background over TotalTime.
func Score(in Input) (loglik float64, matched int) {
	loglik = in.Start
	if in.Table == nil || in.Table.Len() == 0 {
		return loglik, 0
	}
	logT := math.Log(in.TotalTime)
	floor := -logT

	for k, at := range in.Candidates.Times {
		idx := in.Table.Nearest(at)
		trig := in.Table.At(idx)

		if !in.Distance.Allows(trig.Position(), in.Midpoint) {
			continue
		}
		if !in.Params.Allows(trig.Param) {
			continue
		}

		stat := distuv.Normal{Mu: at, Sigma: in.Candidates.Windows[k]}.LogProb(trig.BaryTime)
		if stat > floor {
			matched++
			loglik += stat + logT
		}
	}
	return loglik, matched
}
