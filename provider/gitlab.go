package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/xanzy/go-gitlab"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/waiter"
)

const gitlabPerPage = 100

// GitLabSource implements waiter.Source for GitLab CI pipelines.
//
// A pipeline plays the role of a run. Each job of the pipeline that has
// an artifacts archive is one artifact, named after the job.
type GitLabSource struct {
	client  *gitlab.Client
	perPage int
}

// NewGitLabSource creates a new GitLab source.
// token is a personal, project or CI job token.
// baseURL is the GitLab instance URL (empty for gitlab.com).
func NewGitLabSource(token, baseURL string) (*GitLabSource, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab: %w", ErrTokenRequired)
	}

	var client *gitlab.Client
	var err error

	if baseURL != "" {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	} else {
		client, err = gitlab.NewClient(token)
	}

	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabSource{client: client, perPage: gitlabPerPage}, nil
}

// projectID is the "namespace/project" path GitLab accepts as an ID.
func projectID(repo waiter.Repo) string {
	return repo.Owner + "/" + repo.Name
}

// ListRunArtifacts implements waiter.Source.
func (s *GitLabSource) ListRunArtifacts(ctx context.Context, repo waiter.Repo, runID int64) *devhttp.PageIterator[waiter.Artifact] {
	next := 1
	return devhttp.NewPageIterator(func(ctx context.Context, _ int) ([]waiter.Artifact, bool, error) {
		opts := &gitlab.ListJobsOptions{
			ListOptions: gitlab.ListOptions{Page: next, PerPage: s.perPage},
		}
		jobs, resp, err := s.client.Jobs.ListPipelineJobs(projectID(repo), int(runID), opts, gitlab.WithContext(ctx))
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, false, fmt.Errorf("%w: %s pipeline %d: %w", ErrRunNotFound, repo, runID, gitlabAPIError(resp, err))
			}
			return nil, false, fmt.Errorf("list pipeline jobs: %w", gitlabAPIError(resp, err))
		}

		var items []waiter.Artifact
		for _, job := range jobs {
			if job.ArtifactsFile.Filename == "" {
				continue // No artifacts archive (yet)
			}
			items = append(items, waiter.Artifact{
				ID:          int64(job.ID),
				Name:        job.Name,
				SizeInBytes: int64(job.ArtifactsFile.Size),
				DownloadURL: job.WebURL,
			})
		}

		next = resp.NextPage
		return items, next != 0, nil
	})
}

// DownloadArtifact implements waiter.Source.
func (s *GitLabSource) DownloadArtifact(ctx context.Context, repo waiter.Repo, artifactID int64) ([]byte, error) {
	r, resp, err := s.client.Jobs.GetJobArtifacts(projectID(repo), int(artifactID), gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: job %d", ErrArtifactNotFound, artifactID)
		}
		return nil, fmt.Errorf("get job artifacts: %w", gitlabAPIError(resp, err))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read job artifacts: %w", err)
	}
	return data, nil
}

func gitlabAPIError(resp *gitlab.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}

	endpoint := ""
	if resp.Request != nil {
		endpoint = resp.Request.URL.Path
	}

	return &devhttp.APIError{
		Service:    "gitlab",
		StatusCode: resp.StatusCode,
		Message:    err.Error(),
		Endpoint:   endpoint,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}
}
