package models

// SearchParams is the persisted snapshot of a search configuration.
// DistanceDeg is ignored when FullSky is set.
type SearchParams struct {
	Sequence       string   `json:"sequence" toml:"sequence"`
	MaxSeq         int      `json:"max_seq" toml:"max_seq"`
	FullSky        bool     `json:"full_sky" toml:"full_sky"`
	DistanceDeg    float64  `json:"distance_deg" toml:"distance_deg"`
	TimeWindow     float64  `json:"time_window" toml:"time_window"`
	MinDelta       float64  `json:"min_delta" toml:"min_delta"`
	ActiveFraction float64  `json:"active_fraction" toml:"active_fraction"`
	Params         []string `json:"params,omitempty" toml:"params"`
}
