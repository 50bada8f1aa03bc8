package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/utils"
)

const DefaultDBFile = "seqseti.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Run struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Label          string `gorm:"index:idx_run_label"`
	Sequence       string
	MaxSeq         int
	FullSky        bool
	DistanceDeg    float64
	TimeWindow     float64
	MinDelta       float64 // configured, 0 for auto
	ActiveFraction float64
	Params         string // comma separated
	Triggers       int
	TotalTime      float64
	EffMinDelta    float64
	MaxStatistic   float64
	RecordCount    int
	MatchCount     int
	CreatedAt      time.Time `gorm:"index:idx_run_created"`
}

type Record struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	RunID      string  `gorm:"type:varchar(36);index:idx_record_run"`
	Statistic  float64 `gorm:"index:idx_record_stat"`
	I          int
	J          int
	SeqStart   int
	SeqEnd     int
	SeqLength  int
	Matched    int
	Flag       bool
	Separation float64
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SEQSETI_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &Record{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveRun stores run and its records in one transaction and returns the run
// id, generating one when run.ID is empty.
func (c *DBClient) SaveRun(run models.Run, records []models.Record) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if run.ID == "" {
		run.ID = utils.GenerateUUID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	// counts always reflect the stored rows
	run.Records, run.Matches = len(records), 0
	for _, r := range records {
		if r.Flag {
			run.Matches++
		}
	}
	row := runRow(run)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		entries := make([]Record, 0, len(records))
		for _, r := range records {
			entries = append(entries, recordRow(run.ID, r))
		}
		if err := tx.CreateInBatches(entries, 500).Error; err != nil {
			return fmt.Errorf("batch insert records: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRun returns gorm.ErrRecordNotFound (wrapped) for unknown ids.
func (c *DBClient) GetRun(id string) (*models.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row Run
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying run %s: %w", id, err)
	}
	run := row.model()
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (c *DBClient) ListRuns() ([]models.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Run
	if err := c.DB.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	out := make([]models.Run, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// GetRecords returns the records of a run in the order they were produced.
func (c *DBClient) GetRecords(runID string) ([]models.Record, error) {
	return c.records(runID, "id", 0)
}

// TopRecords returns the n highest-scoring records of a run.
func (c *DBClient) TopRecords(runID string, n int) ([]models.Record, error) {
	if n <= 0 {
		return []models.Record{}, nil
	}
	return c.records(runID, "statistic DESC, id", n)
}

func (c *DBClient) records(runID, order string, limit int) ([]models.Record, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	q := c.DB.Where("run_id = ?", runID).Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []Record
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	out := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// DeleteRunByID removes a run and its records. Unknown ids report
// gorm.ErrRecordNotFound.
func (c *DBClient) DeleteRunByID(runID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&Record{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", runID).Delete(&Run{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("deleting run %s: %w", runID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func runRow(run models.Run) Run {
	return Run{
		ID:             run.ID,
		Label:          run.Label,
		Sequence:       run.Search.Sequence,
		MaxSeq:         run.Search.MaxSeq,
		FullSky:        run.Search.FullSky,
		DistanceDeg:    run.Search.DistanceDeg,
		TimeWindow:     run.Search.TimeWindow,
		MinDelta:       run.Search.MinDelta,
		ActiveFraction: run.Search.ActiveFraction,
		Params:         strings.Join(run.Search.Params, ","),
		Triggers:       run.Triggers,
		TotalTime:      run.TotalTime,
		EffMinDelta:    run.MinDelta,
		MaxStatistic:   run.Max,
		RecordCount:    run.Records,
		MatchCount:     run.Matches,
		CreatedAt:      run.CreatedAt,
	}
}

func (r Run) model() models.Run {
	var params []string
	if r.Params != "" {
		params = strings.Split(r.Params, ",")
	}
	return models.Run{
		ID:    r.ID,
		Label: r.Label,
		Search: models.SearchParams{
			Sequence:       r.Sequence,
			MaxSeq:         r.MaxSeq,
			FullSky:        r.FullSky,
			DistanceDeg:    r.DistanceDeg,
			TimeWindow:     r.TimeWindow,
			MinDelta:       r.MinDelta,
			ActiveFraction: r.ActiveFraction,
			Params:         params,
		},
		Triggers:  r.Triggers,
		TotalTime: r.TotalTime,
		MinDelta:  r.EffMinDelta,
		Max:       r.MaxStatistic,
		Records:   r.RecordCount,
		Matches:   r.MatchCount,
		CreatedAt: r.CreatedAt,
	}
}

func recordRow(runID string, r models.Record) Record {
	return Record{
		RunID:      runID,
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
}

func (r Record) model() models.Record {
	return models.Record{
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
}
