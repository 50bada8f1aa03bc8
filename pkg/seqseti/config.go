package seqseti

import (
	"runtime"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/sky"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

type Config struct {
	DBPath    string
	Workers   int // segments searched concurrently
	Logger    Logger
	Storage   Storage
	Corrector trigger.Corrector
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithCorrector replaces the barycentric correction applied to segments
// searched with a distance window.
func WithCorrector(corr trigger.Corrector) Option {
	return func(c *Config) {
		c.Corrector = corr
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    "seqseti.sqlite3",
		Workers:   runtime.NumCPU(),
		Logger:    nil,
		Corrector: sky.Barycentre{},
	}
}
