package main

import (
	"fmt"

	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

const (
	// MaxTriggersPerSegment caps a single posted segment
	MaxTriggersPerSegment = 20000

	// MaxBackgroundSegments caps a single compare request
	MaxBackgroundSegments = 500

	// MaxBodyBytes limits request bodies
	MaxBodyBytes = 64 << 20

	// DefaultTopRecords is used when ?top is absent
	DefaultTopRecords = 25
)

// TriggerDTO is one catalog row in request bodies.
type TriggerDTO struct {
	Time   float64            `json:"time"`
	Phi    float64            `json:"phi"`
	Theta  float64            `json:"theta"`
	RA     float64            `json:"ra"`
	Dec    float64            `json:"dec"`
	Params map[string]float64 `json:"params,omitempty"`
}

// SegmentDTO is a labelled list of triggers.
type SegmentDTO struct {
	Label    string       `json:"label"`
	Triggers []TriggerDTO `json:"triggers"`
}

// Validate checks the segment size
func (s *SegmentDTO) Validate() error {
	if len(s.Triggers) == 0 {
		return fmt.Errorf("segment %q has no triggers", s.Label)
	}
	if len(s.Triggers) > MaxTriggersPerSegment {
		return fmt.Errorf("segment %q: too many triggers: %d (maximum: %d)", s.Label, len(s.Triggers), MaxTriggersPerSegment)
	}
	return nil
}

func (s *SegmentDTO) segment(fallback string) seqseti.Segment {
	seg := seqseti.Segment{Label: s.Label, Triggers: make([]trigger.Trigger, len(s.Triggers))}
	if seg.Label == "" {
		seg.Label = fallback
	}
	for i, t := range s.Triggers {
		seg.Triggers[i] = trigger.New(t.Time, t.Phi, t.Theta, t.RA, t.Dec, t.Params)
	}
	return seg
}

// SearchRequest is the request body for POST /api/search. Config fields that
// are omitted keep their defaults.
type SearchRequest struct {
	SegmentDTO
	Config seqseti.SearchConfig `json:"config"`
}

// CompareRequest is the request body for POST /api/compare
type CompareRequest struct {
	Foreground SegmentDTO           `json:"foreground"`
	Background []SegmentDTO         `json:"background"`
	Config     seqseti.SearchConfig `json:"config"`
}

// Validate checks if the request is valid
func (r *CompareRequest) Validate() error {
	if err := r.Foreground.Validate(); err != nil {
		return fmt.Errorf("foreground: %w", err)
	}
	if len(r.Background) == 0 {
		return fmt.Errorf("background cannot be empty")
	}
	if len(r.Background) > MaxBackgroundSegments {
		return fmt.Errorf("too many background segments: %d (maximum: %d)", len(r.Background), MaxBackgroundSegments)
	}
	for i := range r.Background {
		if err := r.Background[i].Validate(); err != nil {
			return fmt.Errorf("background[%d]: %w", i, err)
		}
	}
	return nil
}

// ListRunsResponse is the response for GET /api/runs
type ListRunsResponse struct {
	Runs  []models.Run `json:"runs"`
	Count int          `json:"count"`
}

// RecordsResponse is the response for GET /api/runs/{id}/records
type RecordsResponse struct {
	RunID   string          `json:"run_id"`
	Records []models.Record `json:"records"`
	Count   int             `json:"count"`
}

// DeleteRunResponse is the response for DELETE /api/runs/{id}
type DeleteRunResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	RunCount     int    `json:"run_count"`
	Workers      int    `json:"workers"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
