package models

import "time"

// Run is one stored search over a single trigger segment.
type Run struct {
	ID        string       `json:"id"`         // Database ID (UUID)
	Label     string       `json:"label"`      // Free-form name, e.g. "background-12"
	Search    SearchParams `json:"search"`     // Configuration the run used
	Triggers  int          `json:"triggers"`   // Rows in the segment
	TotalTime float64      `json:"total_time"` // Effective observing time, seconds
	MinDelta  float64      `json:"min_delta"`  // Sequence time unit floor actually used
	Max       float64      `json:"max"`        // Maximum statistic, 0 when Records is 0
	Records   int          `json:"records"`
	Matches   int          `json:"matches"` // Records with at least one matched candidate
	CreatedAt time.Time    `json:"created_at"`
}

// Record is one scored (pair, scale) row of a run.
type Record struct {
	Statistic  float64 `json:"statistic"`
	I          int     `json:"i"`
	J          int     `json:"j"`
	SeqStart   int     `json:"seq_start"`
	SeqEnd     int     `json:"seq_end"`
	SeqLength  int     `json:"seq_length"`
	Matched    int     `json:"matched"`
	Flag       bool    `json:"flag"`
	Separation float64 `json:"separation"` // t2 - t1, seconds
}
