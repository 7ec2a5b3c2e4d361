package waiter

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultPollInterval is the pause between listing passes.
const DefaultPollInterval = 10 * time.Second

// Request describes one wait operation. It is read-only to Wait.
type Request struct {
	Repo  Repo     // Repository owning the run
	RunID int64    // Run whose artifacts are listed
	Names []string // Requested artifact names; duplicates collapse

	// DownloadDir receives <name>.zip for each artifact when non-empty.
	// The directory must already exist.
	DownloadDir string

	// Timeout bounds how long new passes are started. One more pass is
	// always made after it has elapsed.
	Timeout time.Duration

	// PollInterval is the pause between passes (default: 10s).
	PollInterval time.Duration

	Source Source     // CI API (required)
	Files  FileWriter // Archive writer (default: OSFiles)
	Clock  Clock      // Time source (default: wall clock)
	Logger *slog.Logger
}

func (r *Request) validate() error {
	if r.Source == nil {
		return fmt.Errorf("%w: no artifact source", ErrInvalidRequest)
	}
	if len(r.Names) == 0 {
		return fmt.Errorf("%w: no artifact names", ErrInvalidRequest)
	}
	for _, name := range r.Names {
		if name == "" {
			return fmt.Errorf("%w: empty artifact name", ErrInvalidRequest)
		}
	}
	if r.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidRequest, r.Timeout)
	}
	return nil
}

func (r *Request) pollInterval() time.Duration {
	if r.PollInterval > 0 {
		return r.PollInterval
	}
	return DefaultPollInterval
}

func (r *Request) files() FileWriter {
	if r.Files != nil {
		return r.Files
	}
	return OSFiles{}
}

func (r *Request) clock() Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return realClock{}
}

func (r *Request) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
