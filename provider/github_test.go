package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/testutil"
	"github.com/randalmurphal/artifactwait/waiter"
)

// =============================================================================
// Test Helpers
// =============================================================================

var testRepo = waiter.Repo{Owner: "testowner", Name: "testrepo"}

// newTestGitHubSource creates a GitHubSource pointing to a test server.
func newTestGitHubSource(t *testing.T, handler http.Handler) (*GitHubSource, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL := server.URL + "/"
	client.BaseURL, _ = client.BaseURL.Parse(baseURL)

	return newGitHubSource(client), server
}

// fakeGitHub serves the run artifacts listing from fixtures, split over
// two pages, plus artifact downloads redirected to a storage path.
func fakeGitHub(t *testing.T, serverURL *string, archives map[string][]byte) http.Handler {
	t.Helper()

	page1 := testutil.LoadFixture(t, "github_artifacts_page1.json")
	page2 := testutil.LoadFixture(t, "github_artifacts_page2.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/testowner/testrepo/actions/runs/42/artifacts", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(
				`<%s/repos/testowner/testrepo/actions/runs/42/artifacts?page=2&per_page=100>; rel="next"`, *serverURL))
			_, _ = w.Write(page1)
		case "2":
			_, _ = w.Write(page2)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	mux.HandleFunc("/repos/testowner/testrepo/actions/artifacts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/testowner/testrepo/actions/artifacts/"), "/zip")
		if _, ok := archives[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		http.Redirect(w, r, *serverURL+"/storage/"+id+"?sig=abc", http.StatusFound)
	})
	mux.HandleFunc("/storage/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("storage request carried an Authorization header")
		}
		_, _ = w.Write(archives[strings.TrimPrefix(r.URL.Path, "/storage/")])
	})
	return mux
}

func newFakeGitHubSource(t *testing.T, archives map[string][]byte) *GitHubSource {
	t.Helper()

	var serverURL string
	src, server := newTestGitHubSource(t, fakeGitHub(t, &serverURL, archives))
	serverURL = server.URL
	return src
}

// =============================================================================
// Construction
// =============================================================================

func TestNewGitHubSource(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		src, err := NewGitHubSource("token123", "")
		if err != nil {
			t.Fatalf("NewGitHubSource: %v", err)
		}
		if got := src.client.BaseURL.String(); got != "https://api.github.com/" {
			t.Errorf("BaseURL = %q", got)
		}
	})

	t.Run("enterprise base URL", func(t *testing.T) {
		src, err := NewGitHubSource("token123", "https://ghe.example.com")
		if err != nil {
			t.Fatalf("NewGitHubSource: %v", err)
		}
		if got := src.client.BaseURL.String(); got != "https://ghe.example.com/api/v3/" {
			t.Errorf("BaseURL = %q", got)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := NewGitHubSource("", "")
		if !errors.Is(err, ErrTokenRequired) {
			t.Errorf("error = %v, want ErrTokenRequired", err)
		}
	})
}

// =============================================================================
// ListRunArtifacts
// =============================================================================

func TestGitHubSource_ListRunArtifacts(t *testing.T) {
	t.Run("follows pages", func(t *testing.T) {
		src := newFakeGitHubSource(t, nil)
		pages := src.ListRunArtifacts(context.Background(), testRepo, 42)

		first, ok, err := pages.NextPage(context.Background())
		if err != nil || !ok {
			t.Fatalf("NextPage() = %v, %v", ok, err)
		}
		if len(first) != 2 || first[0].Name != "logs" || first[0].ID != 11 {
			t.Errorf("first page = %+v", first)
		}
		if first[0].SizeInBytes != 2048 || first[0].Expired || !first[1].Expired {
			t.Errorf("metadata not converted: %+v", first)
		}
		if !strings.HasSuffix(first[0].DownloadURL, "/actions/artifacts/11/zip") {
			t.Errorf("DownloadURL = %q", first[0].DownloadURL)
		}

		second, ok, err := pages.NextPage(context.Background())
		if err != nil || !ok {
			t.Fatalf("NextPage() = %v, %v", ok, err)
		}
		if len(second) != 1 || second[0].Name != "report" {
			t.Errorf("second page = %+v", second)
		}

		if _, ok, _ := pages.NextPage(context.Background()); ok {
			t.Error("expected listing to end after page 2")
		}
	})

	t.Run("run not found", func(t *testing.T) {
		src, _ := newTestGitHubSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}))

		_, err := src.ListRunArtifacts(context.Background(), testRepo, 42).All(context.Background())
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("error = %v, want ErrRunNotFound", err)
		}
		if !devhttp.IsNotFound(err) {
			t.Errorf("error = %v, want it to match http.ErrNotFound", err)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		src, _ := newTestGitHubSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
		}))

		_, err := src.ListRunArtifacts(context.Background(), testRepo, 42).All(context.Background())
		if !devhttp.IsUnauthorized(err) {
			t.Fatalf("error = %v, want http.ErrUnauthorized", err)
		}
		var apiErr *devhttp.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "Bad credentials" {
			t.Errorf("APIError = %+v", apiErr)
		}
	})

	t.Run("restarts from page one on each call", func(t *testing.T) {
		var pagesRequested []string
		src, _ := newTestGitHubSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pagesRequested = append(pagesRequested, r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{"total_count":0,"artifacts":[]}`))
		}))

		for range 2 {
			if _, err := src.ListRunArtifacts(context.Background(), testRepo, 42).All(context.Background()); err != nil {
				t.Fatalf("All: %v", err)
			}
		}
		if len(pagesRequested) != 2 || pagesRequested[0] != "1" || pagesRequested[1] != "1" {
			t.Errorf("pages requested = %v, want [1 1]", pagesRequested)
		}
	})
}

// =============================================================================
// DownloadArtifact
// =============================================================================

func TestGitHubSource_DownloadArtifact(t *testing.T) {
	t.Run("follows storage redirect", func(t *testing.T) {
		src := newFakeGitHubSource(t, map[string][]byte{"13": []byte("PK-report")})

		data, err := src.DownloadArtifact(context.Background(), testRepo, 13)
		if err != nil {
			t.Fatalf("DownloadArtifact: %v", err)
		}
		if string(data) != "PK-report" {
			t.Errorf("data = %q", data)
		}
	})

	t.Run("not found", func(t *testing.T) {
		src := newFakeGitHubSource(t, nil)

		_, err := src.DownloadArtifact(context.Background(), testRepo, 99)
		if !errors.Is(err, ErrArtifactNotFound) {
			t.Errorf("error = %v, want ErrArtifactNotFound", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		src, _ := newTestGitHubSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))

		_, err := src.DownloadArtifact(context.Background(), testRepo, 5)
		if !errors.Is(err, ErrArtifactExpired) {
			t.Errorf("error = %v, want ErrArtifactExpired", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		var serverURL string
		src, server := newTestGitHubSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/storage/") {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			http.Redirect(w, r, serverURL+"/storage/5", http.StatusFound)
		}))
		serverURL = server.URL

		_, err := src.DownloadArtifact(context.Background(), testRepo, 5)
		if !devhttp.IsForbidden(err) {
			t.Errorf("error = %v, want http.ErrForbidden", err)
		}
	})
}

// =============================================================================
// End to end with the waiter
// =============================================================================

func TestGitHubSource_Wait(t *testing.T) {
	src := newFakeGitHubSource(t, map[string][]byte{
		"11": []byte("PK-logs"),
		"13": []byte("PK-report"),
	})
	dir := t.TempDir()

	found, err := waiter.Wait(testutil.TestContext(t), waiter.Request{
		Repo:        testRepo,
		RunID:       42,
		Names:       []string{"report", "logs"},
		DownloadDir: dir,
		Source:      src,
		Clock:       testutil.NewFakeClock(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if found["logs"].ID != 11 || found["report"].ID != 13 {
		t.Errorf("found = %+v", found)
	}
	for name, want := range map[string]string{"logs": "PK-logs", "report": "PK-report"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".zip"))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s.zip = %q, want %q", name, data, want)
		}
	}
}
