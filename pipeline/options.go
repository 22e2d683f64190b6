package pipeline

import (
	"io"
	"log"
	"runtime"

	"github.com/google/uuid"

	"github.com/rrmetrics/eventcode/internal/options"
)

type config struct {
	logger      *log.Logger
	concurrency int
	runID       uuid.UUID
}

func defaultConfig() config {
	return config{
		logger:      log.New(io.Discard, "", 0),
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// Option configures Build.
type Option = options.Option[*config]

// WithLogger logs build progress to logger. Builds are silent by default.
func WithLogger(logger *log.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithConcurrency caps the number of concurrent tile workers.
func WithConcurrency(n int) Option {
	return options.NoError(func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	})
}

// WithRunID sets the run id instead of generating a random one.
func WithRunID(id uuid.UUID) Option {
	return options.NoError(func(c *config) { c.runID = id })
}
