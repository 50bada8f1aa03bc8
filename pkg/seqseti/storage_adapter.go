package seqseti

import (
	"errors"

	"gorm.io/gorm"

	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/storage"
)

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRunNotFound
	}
	return err
}

func (s *storageAdapter) SaveRun(run models.Run, records []models.Record) (string, error) {
	return s.db.SaveRun(run, records)
}

func (s *storageAdapter) GetRun(runID string) (*models.Run, error) {
	run, err := s.db.GetRun(runID)
	if err != nil {
		return nil, notFound(err)
	}
	return run, nil
}

func (s *storageAdapter) ListRuns() ([]models.Run, error) {
	return s.db.ListRuns()
}

func (s *storageAdapter) GetRecords(runID string) ([]models.Record, error) {
	return s.db.GetRecords(runID)
}

func (s *storageAdapter) TopRecords(runID string, n int) ([]models.Record, error) {
	return s.db.TopRecords(runID, n)
}

func (s *storageAdapter) DeleteRunByID(runID string) error {
	return notFound(s.db.DeleteRunByID(runID))
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
