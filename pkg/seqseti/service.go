package seqseti

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/SeqSETI/pkg/logger"
	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/background"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/likelihood"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// searchService is the default implementation of the Service interface.
type searchService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &searchService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Search runs the likelihood engine over one segment and stores the result.
func (s *searchService) Search(ctx context.Context, seg Segment, cfg likelihood.Config) (*models.Run, error) {
	run, records, err := s.search(ctx, seg, cfg)
	if err != nil {
		return nil, err
	}

	id, err := s.storage.SaveRun(*run, records)
	if err != nil {
		return nil, fmt.Errorf("failed to store run for %s: %w", seg.Label, err)
	}
	run.ID = id
	s.log.Infof("Stored run %s (%s): %d records, max %.4f", id, seg.Label, run.Records, run.Max)
	return run, nil
}

func (s *searchService) search(ctx context.Context, seg Segment, cfg likelihood.Config) (*models.Run, []models.Record, error) {
	engine, err := likelihood.NewEngine(cfg, likelihood.WithLogger(s.log))
	if err != nil {
		return nil, nil, err
	}

	// arrival times are only corrected when sky position matters
	var corr trigger.Corrector
	if cfg.Distance.Enabled() {
		corr = s.config.Corrector
	}
	table, err := trigger.NewTable(seg.Triggers, corr)
	if err != nil {
		return nil, nil, fmt.Errorf("segment %s: %w", seg.Label, err)
	}

	s.log.Infof("Searching %s: %d triggers, %s, maxSeq %d", seg.Label, table.Len(), cfg.Sequence.Name(), cfg.MaxSeq)
	start := time.Now()
	res, err := engine.Run(ctx, table)
	if err != nil {
		return nil, nil, fmt.Errorf("segment %s: %w", seg.Label, err)
	}
	s.log.Debugf("Segment %s searched in %s (%d templates)", seg.Label, time.Since(start).Round(time.Millisecond), res.Templates)

	run := &models.Run{
		Label:     seg.Label,
		Search:    snapshot(cfg),
		Triggers:  table.Len(),
		TotalTime: res.TotalTime,
		MinDelta:  res.MinDelta,
		Max:       res.Max,
		Records:   len(res.Records),
	}
	records := make([]models.Record, len(res.Records))
	for i, r := range res.Records {
		records[i] = models.Record{
			Statistic:  r.Statistic,
			I:          r.I,
			J:          r.J,
			SeqStart:   r.SeqStart,
			SeqEnd:     r.SeqEnd,
			SeqLength:  r.SeqLength,
			Matched:    r.Matched,
			Flag:       r.Flag,
			Separation: r.Separation,
		}
		if r.Flag {
			run.Matches++
		}
	}
	return run, records, nil
}

// SearchSegments searches segments concurrently and returns their runs in
// input order.
func (s *searchService) SearchSegments(ctx context.Context, segs []Segment, cfg likelihood.Config) ([]models.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runs := make([]models.Run, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.config.Workers, 1))
	for i, seg := range segs {
		i, seg := i, seg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, err := s.Search(gctx, seg, cfg)
			if err != nil {
				return err
			}
			runs[i] = *run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Compare searches the background segments and the foreground segment, then
// ranks the foreground maximum among the background maxima.
func (s *searchService) Compare(ctx context.Context, foreground Segment, bg []Segment, cfg likelihood.Config) (*Comparison, error) {
	if len(bg) == 0 {
		return nil, background.ErrNoBackground
	}
	bgRuns, err := s.SearchSegments(ctx, bg, cfg)
	if err != nil {
		return nil, fmt.Errorf("background search failed: %w", err)
	}
	fgRun, err := s.Search(ctx, foreground, cfg)
	if err != nil {
		return nil, fmt.Errorf("foreground search failed: %w", err)
	}

	maxima := make([]float64, len(bgRuns))
	for i, r := range bgRuns {
		maxima[i] = r.Max
	}
	summary, err := background.Summarize(maxima)
	if err != nil {
		return nil, err
	}
	fap, err := background.FalseAlarmProbability(fgRun.Max, maxima)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Foreground %.4f vs loudest background %.4f (FAP %.3f over %d segments)",
		fgRun.Max, summary.Max, fap, len(maxima))

	return &Comparison{
		Foreground:            *fgRun,
		Background:            bgRuns,
		Summary:               summary,
		FalseAlarmProbability: fap,
		LoudestBackground:     summary.Max,
	}, nil
}

// GetRun retrieves a stored run by id.
func (s *searchService) GetRun(runID string) (*models.Run, error) {
	return s.storage.GetRun(runID)
}

// ListRuns returns all stored runs, newest first.
func (s *searchService) ListRuns() ([]models.Run, error) {
	return s.storage.ListRuns()
}

func (s *searchService) GetRecords(runID string) ([]models.Record, error) {
	if _, err := s.storage.GetRun(runID); err != nil {
		return nil, err
	}
	return s.storage.GetRecords(runID)
}

func (s *searchService) TopRecords(runID string, n int) ([]models.Record, error) {
	if _, err := s.storage.GetRun(runID); err != nil {
		return nil, err
	}
	return s.storage.TopRecords(runID, n)
}

// DeleteRun removes a run and all its records.
func (s *searchService) DeleteRun(runID string) error {
	err := s.storage.DeleteRunByID(runID)
	if err != nil && !errors.Is(err, ErrRunNotFound) {
		s.log.Errorf("Failed to delete run %s: %v", runID, err)
	}
	return err
}

// Close releases all resources held by the service.
func (s *searchService) Close() error {
	return s.storage.Close()
}

func snapshot(cfg likelihood.Config) models.SearchParams {
	p := models.SearchParams{
		Sequence:       cfg.Sequence.Name(),
		MaxSeq:         cfg.MaxSeq,
		FullSky:        !cfg.Distance.Enabled(),
		TimeWindow:     cfg.TimeWindow,
		MinDelta:       cfg.MinDelta,
		ActiveFraction: cfg.ActiveFraction,
		Params:         append([]string(nil), cfg.Params...),
	}
	if cfg.Distance.Enabled() {
		p.DistanceDeg = cfg.Distance.Degrees()
	}
	return p
}
