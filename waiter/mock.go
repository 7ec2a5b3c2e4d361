package waiter

import (
	"context"

	"github.com/randalmurphal/artifactwait/http"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	ListRunArtifactsFunc func(ctx context.Context, repo Repo, runID int64) *http.PageIterator[Artifact]
	DownloadArtifactFunc func(ctx context.Context, repo Repo, artifactID int64) ([]byte, error)
}

// ListRunArtifacts implements Source.
func (m *MockSource) ListRunArtifacts(ctx context.Context, repo Repo, runID int64) *http.PageIterator[Artifact] {
	if m.ListRunArtifactsFunc != nil {
		return m.ListRunArtifactsFunc(ctx, repo, runID)
	}
	return http.SlicePages[Artifact]()
}

// DownloadArtifact implements Source.
func (m *MockSource) DownloadArtifact(ctx context.Context, repo Repo, artifactID int64) ([]byte, error) {
	if m.DownloadArtifactFunc != nil {
		return m.DownloadArtifactFunc(ctx, repo, artifactID)
	}
	return []byte("PK"), nil
}
