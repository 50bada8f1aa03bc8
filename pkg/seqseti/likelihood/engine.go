// Package likelihood enumerates trigger pairs, predicts the sequence members
// each pair implies and scores them into a table of log-likelihood ratios.
package likelihood

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/combinatorics"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/locator"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/search"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/similarity"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// minDeltaDivisor derives the default sequence time unit from the segment length.
const minDeltaDivisor = 250

// Record is one scored (pair, scale) combination.
type Record struct {
	Statistic  float64
	I, J       int // pair indices into the sorted table
	SeqStart   int
	SeqEnd     int
	SeqLength  int // candidates plus the two anchors
	Matched    int
	Flag       bool // at least one candidate matched
	Separation float64
}

// Result is the output for one segment.
type Result struct {
	Records   []Record
	Max       float64
	TotalTime float64
	MinDelta  float64

	Pairs       int // pairs enumerated
	PairsPassed int // pairs passing the distance check
	Templates   int // candidate sets scored
}

// Empty reports whether no record was produced.
func (r *Result) Empty() bool { return len(r.Records) == 0 }

// Logger is the subset of the project logger the engine writes to.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type Option func(*Engine)

func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine runs the pair search for a fixed configuration. It is safe to reuse
// across tables.
type Engine struct {
	cfg    Config
	params *similarity.ParamFilter
	log    Logger
}

// NewEngine validates cfg before any search work is done.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.paramFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e := &Engine{cfg: cfg, params: params, log: nopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type row struct {
	records   []Record
	passed    int
	templates int
}

// Run scores every pair of table. Tables with fewer than two triggers give
// an empty result.
func (e *Engine) Run(ctx context.Context, table *trigger.Table) (*Result, error) {
	n := table.Len()
	first, last := table.Span()
	minTime := first - e.cfg.TimeWindow
	maxTime := last + e.cfg.TimeWindow
	totalTime := (maxTime - minTime) * e.cfg.activeFraction()

	minDelta := e.cfg.MinDelta
	if minDelta == 0 {
		minDelta = totalTime / minDeltaDivisor
	}

	res := &Result{TotalTime: totalTime, MinDelta: minDelta}
	if n < 2 {
		e.log.Debugf("likelihood: %d triggers, nothing to pair", n)
		return res, nil
	}

	loc, err := locator.New(locator.Params{
		MinTime:   minTime,
		MaxTime:   maxTime,
		Sequence:  e.cfg.Sequence,
		MaxSeq:    e.cfg.MaxSeq,
		MinDelta:  minDelta,
		TimeError: e.cfg.TimeWindow,
	})
	if err != nil {
		return nil, err
	}

	e.log.Debugf("likelihood: %d triggers, total time %.1f days, minDelta %.1fs, distance %s",
		n, totalTime/86400, minDelta, e.cfg.Distance)

	rows := make([]row, n-1)
	if e.cfg.Workers < 2 {
		for i := range rows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if rows[i], err = e.row(table, loc, totalTime, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for i := range rows {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := e.row(table, loc, totalTime, i)
				if err != nil {
					return err
				}
				rows[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res.Pairs = n * (n - 1) / 2
	for _, r := range rows {
		res.Records = append(res.Records, r.records...)
		res.PairsPassed += r.passed
		res.Templates += r.templates
	}

	if res.Empty() {
		e.log.Debugf("likelihood: no pair produced a candidate set")
		return res, nil
	}
	res.Max = math.Inf(-1)
	for _, rec := range res.Records {
		res.Max = math.Max(res.Max, rec.Statistic)
	}
	e.log.Debugf("likelihood: %d records from %d/%d pairs, max %.4f",
		len(res.Records), res.PairsPassed, res.Pairs, res.Max)
	return res, nil
}

// row scores all pairs (i, j) with j > i.
func (e *Engine) row(table *trigger.Table, loc *locator.Locator, totalTime float64, i int) (row, error) {
	var out row
	n := table.Len()
	a := table.At(i)
	for j := i + 1; j < n; j++ {
		b := table.At(j)
		if !e.cfg.Distance.Allows(a.Position(), b.Position()) {
			continue
		}
		out.passed++

		sets, err := loc.Locate(a.BaryTime, b.BaryTime)
		if err != nil {
			return row{}, fmt.Errorf("pair (%d, %d): %w", i, j, err)
		}
		mid := sky.Midpoint(a.Position(), b.Position())

		for _, set := range sets {
			stat, matched := search.Score(search.Input{
				Start:      0,
				TotalTime:  totalTime,
				Table:      table,
				Candidates: set,
				Midpoint:   mid,
				Distance:   e.cfg.Distance,
				Params:     e.params,
			})
			length := set.Len() + 2
			stat -= combinatorics.LogCorrection(length, n)

			out.records = append(out.records, Record{
				Statistic:  stat,
				I:          i,
				J:          j,
				SeqStart:   set.Start,
				SeqEnd:     set.End,
				SeqLength:  length,
				Matched:    matched,
				Flag:       matched > 0,
				Separation: b.BaryTime - a.BaryTime,
			})
			out.templates++
		}
	}
	return out, nil
}
