package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/waiter"
)

// githubPerPage is the largest page size the artifacts API accepts.
const githubPerPage = 100

// GitHubSource implements waiter.Source for GitHub Actions workflow runs.
type GitHubSource struct {
	client  *github.Client
	archive *devhttp.Client
	perPage int
}

// NewGitHubSource creates a source authenticated with a static token.
// baseURL selects a GitHub Enterprise Server API (empty for github.com).
func NewGitHubSource(token, baseURL string) (*GitHubSource, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub: %w", ErrTokenRequired)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("set GitHub base URL: %w", err)
		}
	}

	return newGitHubSource(client), nil
}

func newGitHubSource(client *github.Client) *GitHubSource {
	return &GitHubSource{
		client: client,
		// Archive URLs are pre-signed; the API token must not be sent.
		archive: devhttp.NewClient(devhttp.ClientConfig{ServiceName: "github artifact storage"}),
		perPage: githubPerPage,
	}
}

// ListRunArtifacts implements waiter.Source.
func (s *GitHubSource) ListRunArtifacts(ctx context.Context, repo waiter.Repo, runID int64) *devhttp.PageIterator[waiter.Artifact] {
	next := 1
	return devhttp.NewPageIterator(func(ctx context.Context, _ int) ([]waiter.Artifact, bool, error) {
		opts := &github.ListOptions{Page: next, PerPage: s.perPage}
		list, resp, err := s.client.Actions.ListWorkflowRunArtifacts(ctx, repo.Owner, repo.Name, runID, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, false, fmt.Errorf("%w: %s run %d: %w", ErrRunNotFound, repo, runID, githubAPIError(resp, err))
			}
			return nil, false, fmt.Errorf("list workflow run artifacts: %w", githubAPIError(resp, err))
		}

		items := make([]waiter.Artifact, 0, len(list.Artifacts))
		for _, a := range list.Artifacts {
			items = append(items, artifactFromGitHub(a))
		}

		next = resp.NextPage
		return items, next != 0, nil
	})
}

// DownloadArtifact implements waiter.Source.
// GitHub answers with a redirect to a short-lived storage URL, which is
// then fetched in full.
func (s *GitHubSource) DownloadArtifact(ctx context.Context, repo waiter.Repo, artifactID int64) ([]byte, error) {
	u, resp, err := s.client.Actions.DownloadArtifact(ctx, repo.Owner, repo.Name, artifactID, 1)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %d", ErrArtifactNotFound, artifactID)
			case http.StatusGone:
				return nil, fmt.Errorf("%w: %d", ErrArtifactExpired, artifactID)
			}
		}
		return nil, fmt.Errorf("get artifact download URL: %w", githubAPIError(resp, err))
	}

	data, err := s.archive.GetRaw(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch artifact archive: %w", err)
	}
	return data, nil
}

// artifactFromGitHub converts a GitHub artifact to our Artifact type.
func artifactFromGitHub(a *github.Artifact) waiter.Artifact {
	return waiter.Artifact{
		ID:          a.GetID(),
		Name:        a.GetName(),
		SizeInBytes: a.GetSizeInBytes(),
		Expired:     a.GetExpired(),
		DownloadURL: a.GetArchiveDownloadURL(),
	}
}

// githubAPIError converts a go-github failure into an *http.APIError when
// a response is available, so callers can use the shared predicates.
func githubAPIError(resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}

	msg := err.Error()
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		msg = ghErr.Message
	}

	endpoint := ""
	if resp.Request != nil {
		endpoint = resp.Request.URL.Path
	}

	return &devhttp.APIError{
		Service:    "github",
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(msg),
		Endpoint:   endpoint,
		RequestID:  resp.Header.Get("X-GitHub-Request-Id"),
	}
}
