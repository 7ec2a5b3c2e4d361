package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/artifactwait/waiter"
)

// EventType represents the outcome of a wait.
type EventType string

// Event type constants.
const (
	EventArtifactsReady EventType = "artifacts_ready"
	EventWaitTimedOut   EventType = "wait_timed_out"
	EventWaitFailed     EventType = "wait_failed"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// ArtifactRef names one located artifact.
type ArtifactRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Event describes the end of a wait.
type Event struct {
	Type      EventType     `json:"type"`
	Repo      string        `json:"repo"`
	RunID     int64         `json:"run_id"`
	Message   string        `json:"message"`
	Severity  string        `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time     `json:"timestamp"`
	Artifacts []ArtifactRef `json:"artifacts,omitempty"`
	Missing   []string      `json:"missing,omitempty"`
}

// Notifier sends notifications about wait outcomes.
type Notifier interface {
	// Notify sends a notification. Failures are reported, never fatal.
	Notify(ctx context.Context, event Event) error
}

// NewEvent describes the result of waiter.Wait for req.
// Artifacts are listed in request order. On timeout they come from the
// *waiter.TimeoutError, which carries what was located.
func NewEvent(req waiter.Request, found map[string]waiter.Artifact, err error, now time.Time) Event {
	ev := Event{
		Repo:      req.Repo.String(),
		RunID:     req.RunID,
		Timestamp: now,
	}

	var timeout *waiter.TimeoutError
	if errors.As(err, &timeout) {
		found = timeout.Located
	}

	seen := make(map[string]bool, len(req.Names))
	for _, name := range req.Names {
		if a, ok := found[name]; ok && !seen[name] {
			seen[name] = true
			ev.Artifacts = append(ev.Artifacts, ArtifactRef{Name: name, ID: a.ID})
		}
	}

	switch {
	case err == nil:
		ev.Type = EventArtifactsReady
		ev.Severity = SeverityInfo
		ev.Message = fmt.Sprintf("%d artifact(s) ready for %s run %d", len(ev.Artifacts), ev.Repo, ev.RunID)
	case errors.As(err, &timeout):
		ev.Type = EventWaitTimedOut
		ev.Severity = SeverityWarning
		ev.Missing = timeout.Missing
		ev.Message = fmt.Sprintf("gave up waiting for %s", strings.Join(timeout.Missing, " "))
	default:
		ev.Type = EventWaitFailed
		ev.Severity = SeverityError
		ev.Message = err.Error()
	}
	return ev
}
