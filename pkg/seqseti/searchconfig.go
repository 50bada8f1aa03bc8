package seqseti

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/ingest"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/likelihood"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sequence"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/similarity"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// ParamConfig enables the auxiliary-parameter gate for one trigger column.
// Midpoint and Window are both required; nil means the key was absent.
type ParamConfig struct {
	Name     string   `toml:"name" json:"name"`
	Midpoint *float64 `toml:"midpoint" json:"midpoint"`
	Window   *float64 `toml:"window" json:"window"`
}

// SegmentConfig controls how a trigger file is sliced before searching.
type SegmentConfig struct {
	Head    int     `toml:"head" json:"head"`         // keep only the first Head triggers, 0 keeps all
	Parts   int     `toml:"parts" json:"parts"`       // equal-count slices, 0 means 1
	MinDays float64 `toml:"min_days" json:"min_days"` // exclusive
	MaxDays float64 `toml:"max_days" json:"max_days"` // exclusive, 0 disables the duration filter
}

type SearchConfig struct {
	Sequence       string        `toml:"sequence" json:"sequence"`
	MaxSeq         int           `toml:"max_seq" json:"max_seq"`
	FullSky        bool          `toml:"full_sky" json:"full_sky"`
	Distance       float64       `toml:"distance" json:"distance"` // degrees
	TimeWindow     float64       `toml:"time_window" json:"time_window"`
	MinDelta       float64       `toml:"min_delta" json:"min_delta"`
	ActiveFraction float64       `toml:"active_fraction" json:"active_fraction"`
	Workers        int           `toml:"workers" json:"workers"`
	Params         []ParamConfig `toml:"params" json:"params,omitempty"`
	Segments       SegmentConfig `toml:"segments" json:"segments"`
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Sequence:       "primes",
		MaxSeq:         5,
		Distance:       100,
		TimeWindow:     500,
		ActiveFraction: 1,
	}
}

// ParseSearchConfig overlays TOML data on DefaultSearchConfig.
func ParseSearchConfig(data []byte) (SearchConfig, error) {
	cfg := DefaultSearchConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

func LoadSearchConfig(path string) (SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SearchConfig{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return ParseSearchConfig(data)
}

// Likelihood converts the file form into a validated engine configuration.
func (c SearchConfig) Likelihood() (likelihood.Config, error) {
	seq, err := sequence.ByName(c.Sequence)
	if err != nil {
		return likelihood.Config{}, err
	}

	cfg := likelihood.Config{
		Distance:       similarity.Within(c.Distance),
		TimeWindow:     c.TimeWindow,
		Sequence:       seq,
		MaxSeq:         c.MaxSeq,
		MinDelta:       c.MinDelta,
		ActiveFraction: c.ActiveFraction,
		Workers:        c.Workers,
	}
	if c.FullSky {
		cfg.Distance = similarity.FullSky()
	}
	if len(c.Params) > 0 {
		cfg.ParamMidpoints = make(map[string]float64, len(c.Params))
		cfg.ParamWindows = make(map[string]float64, len(c.Params))
		for _, p := range c.Params {
			cfg.Params = append(cfg.Params, p.Name)
			// missing keys stay out of the maps so Validate rejects them
			if p.Midpoint != nil {
				cfg.ParamMidpoints[p.Name] = *p.Midpoint
			}
			if p.Window != nil {
				cfg.ParamWindows[p.Name] = *p.Window
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return likelihood.Config{}, err
	}
	return cfg, nil
}

// Columns returns the default trigger columns plus the configured parameters.
func (c SearchConfig) Columns() ingest.Columns {
	cols := ingest.DefaultColumns()
	for _, p := range c.Params {
		cols.Params = append(cols.Params, p.Name)
	}
	return cols
}

// Apply slices triggers into labelled segments: truncate to Head, split into
// Parts, then drop segments outside (MinDays, MaxDays) when MaxDays is set.
func (s SegmentConfig) Apply(label string, triggers []trigger.Trigger) ([]Segment, error) {
	if s.Head > 0 && s.Head < len(triggers) {
		triggers = triggers[:s.Head]
	}
	parts := max(s.Parts, 1)
	chunks, err := ingest.Split(triggers, parts)
	if err != nil {
		return nil, err
	}
	if s.MaxDays > 0 {
		chunks = ingest.FilterByDuration(chunks, s.MinDays, s.MaxDays)
	}

	segs := make([]Segment, 0, len(chunks))
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		segs = append(segs, Segment{Label: fmt.Sprintf("%s-%d", label, i), Triggers: chunk})
	}
	return segs, nil
}
