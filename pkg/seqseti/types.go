package seqseti

import (
	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/background"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// Segment is a contiguous slice of triggers searched on its own.
type Segment struct {
	Label    string
	Triggers []trigger.Trigger
}

// Comparison places a foreground run against the maxima of background runs.
type Comparison struct {
	Foreground            models.Run         `json:"foreground"`
	Background            []models.Run       `json:"background"`
	Summary               background.Summary `json:"summary"`
	FalseAlarmProbability float64            `json:"false_alarm_probability"`
	LoudestBackground     float64            `json:"loudest_background"`
}
