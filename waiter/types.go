package waiter

import (
	"context"
	"os"
	"time"

	"github.com/randalmurphal/artifactwait/http"
)

// Repo identifies a repository (or project) on the CI host.
type Repo struct {
	Owner string
	Name  string
}

// String returns the "owner/name" form.
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// Artifact is an artifact record as returned by a run listing.
// Only Name and ID are needed to wait for and download an artifact.
type Artifact struct {
	ID          int64  // Remote identifier used for downloads
	Name        string // Artifact name
	SizeInBytes int64  // Archive size reported by the API (0 if unknown)
	Expired     bool   // Whether the archive has expired
	DownloadURL string // API URL of the archive (informational)
}

// Source is the CI API capability set consumed by Wait.
//
// Implementations are called strictly sequentially by a single Wait.
type Source interface {
	// ListRunArtifacts returns a lazy page sequence over the run's
	// artifacts. Each call starts again from the first page.
	ListRunArtifacts(ctx context.Context, repo Repo, runID int64) *http.PageIterator[Artifact]

	// DownloadArtifact returns the artifact's whole zip archive.
	DownloadArtifact(ctx context.Context, repo Repo, artifactID int64) ([]byte, error)
}

// FileWriter writes downloaded archives.
// WriteFile creates the file or truncates an existing one.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// OSFiles writes files to the local filesystem.
type OSFiles struct{}

// WriteFile implements FileWriter.
func (OSFiles) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// Clock supplies time and the backoff sleep between passes.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
