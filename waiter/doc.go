// Package waiter waits for named artifacts of a CI run to appear and
// optionally downloads them.
//
// Core types:
//   - Request: one wait operation (repository, run, names, download dir, timeout)
//   - Source: the CI API capability set (list run artifacts, download one)
//   - Artifact: a located artifact record
//   - TimeoutError / DownloadError: terminal failures
//
// Wait polls the run's artifact listing page by page. Each pass walks the
// whole listing, recording every requested name it sees, then downloads
// the artifacts found during that pass one at a time. When the timeout
// has passed the waiter still makes one more full pass before giving up.
//
// Example usage:
//
//	found, err := waiter.Wait(ctx, waiter.Request{
//	    Repo:        waiter.Repo{Owner: "acme", Name: "widgets"},
//	    RunID:       123456,
//	    Names:       []string{"logs", "report"},
//	    DownloadDir: "artifacts",
//	    Timeout:     10 * time.Minute,
//	    Source:      source,
//	})
//	if errors.Is(err, waiter.ErrTimeout) {
//	    // some artifacts never appeared
//	}
package waiter
