package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/testutil"
)

func newTestGitLabSource(t *testing.T, handler http.HandlerFunc) *GitLabSource {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src, err := NewGitLabSource("test-token", server.URL)
	if err != nil {
		t.Fatalf("NewGitLabSource: %v", err)
	}
	return src
}

func TestNewGitLabSource(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := NewGitLabSource("", "")
		if !errors.Is(err, ErrTokenRequired) {
			t.Errorf("error = %v, want ErrTokenRequired", err)
		}
	})

	t.Run("self-hosted base URL", func(t *testing.T) {
		src, err := NewGitLabSource("token", "https://gitlab.example.com")
		if err != nil {
			t.Fatalf("NewGitLabSource: %v", err)
		}
		if got := src.client.BaseURL().String(); got != "https://gitlab.example.com/api/v4/" {
			t.Errorf("BaseURL = %q", got)
		}
	})
}

func TestGitLabSource_ListRunArtifacts(t *testing.T) {
	jobs := testutil.LoadFixture(t, "gitlab_pipeline_jobs.json")

	t.Run("jobs with archives become artifacts", func(t *testing.T) {
		var pages []string
		src := newTestGitLabSource(t, func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/projects/testowner/testrepo/pipelines/42/jobs") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("PRIVATE-TOKEN") != "test-token" {
				t.Error("missing PRIVATE-TOKEN header")
			}
			page := r.URL.Query().Get("page")
			pages = append(pages, page)

			w.Header().Set("Content-Type", "application/json")
			if page == "1" {
				w.Header().Set("X-Next-Page", "2")
				_, _ = w.Write(jobs)
				return
			}
			_, _ = w.Write([]byte(`[{"id":9,"name":"docs","web_url":"https://gitlab.example.com/j/9","artifacts_file":{"filename":"artifacts.zip","size":10}}]`))
		})

		all, err := src.ListRunArtifacts(context.Background(), testRepo, 42).All(context.Background())
		if err != nil {
			t.Fatalf("All: %v", err)
		}

		if len(all) != 2 {
			t.Fatalf("got %d artifacts, want 2: %+v", len(all), all)
		}
		if all[0].Name != "build" || all[0].ID != 7 || all[0].SizeInBytes != 1234 {
			t.Errorf("first artifact = %+v", all[0])
		}
		if all[1].Name != "docs" || all[1].ID != 9 {
			t.Errorf("second artifact = %+v", all[1])
		}
		if len(pages) != 2 || pages[0] != "1" || pages[1] != "2" {
			t.Errorf("pages requested = %v, want [1 2]", pages)
		}
	})

	t.Run("pipeline not found", func(t *testing.T) {
		src := newTestGitLabSource(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"404 Not found"}`))
		})

		_, err := src.ListRunArtifacts(context.Background(), testRepo, 42).All(context.Background())
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("error = %v, want ErrRunNotFound", err)
		}
		if !devhttp.IsNotFound(err) {
			t.Errorf("error = %v, want it to match http.ErrNotFound", err)
		}
	})
}

func TestGitLabSource_DownloadArtifact(t *testing.T) {
	archive := testutil.ZipArchive(t, map[string]string{"out/app": "binary"})

	t.Run("returns archive bytes", func(t *testing.T) {
		src := newTestGitLabSource(t, func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/projects/testowner/testrepo/jobs/7/artifacts") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write(archive)
		})

		data, err := src.DownloadArtifact(context.Background(), testRepo, 7)
		if err != nil {
			t.Fatalf("DownloadArtifact: %v", err)
		}
		if string(data) != string(archive) {
			t.Errorf("got %d bytes, want %d", len(data), len(archive))
		}
	})

	t.Run("not found", func(t *testing.T) {
		src := newTestGitLabSource(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"404 Not found"}`))
		})

		_, err := src.DownloadArtifact(context.Background(), testRepo, 7)
		if !errors.Is(err, ErrArtifactNotFound) {
			t.Errorf("error = %v, want ErrArtifactNotFound", err)
		}
	})
}
