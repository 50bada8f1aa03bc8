package seqseti

import (
	"context"

	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/likelihood"
)

type Service interface {
	Search(ctx context.Context, seg Segment, cfg likelihood.Config) (*models.Run, error)
	SearchSegments(ctx context.Context, segs []Segment, cfg likelihood.Config) ([]models.Run, error)
	Compare(ctx context.Context, foreground Segment, background []Segment, cfg likelihood.Config) (*Comparison, error)
	GetRun(runID string) (*models.Run, error)
	ListRuns() ([]models.Run, error)
	GetRecords(runID string) ([]models.Record, error)
	TopRecords(runID string, n int) ([]models.Record, error)
	DeleteRun(runID string) error
	Close() error
}

type Storage interface {
	SaveRun(run models.Run, records []models.Record) (string, error)
	GetRun(runID string) (*models.Run, error)
	ListRuns() ([]models.Run, error)
	GetRecords(runID string) ([]models.Record, error)
	TopRecords(runID string, n int) ([]models.Record, error)
	DeleteRunByID(runID string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
