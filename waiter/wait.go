package waiter

import (
	"context"
	"fmt"
	"log/slog"
)

// waitOp carries one Wait call's collaborators and state.
type waitOp struct {
	req   *Request
	state *state
	files FileWriter
	clock Clock
	log   *slog.Logger
}

// Wait polls req.Source until every requested artifact has been listed
// for the run, downloading newly found artifacts after each pass when
// req.DownloadDir is set.
//
// The deadline is checked once at the start of each pass, so a pass
// that starts in time always finishes its page walk. After the deadline
// one more pass is made; if artifacts are still missing Wait returns a
// nil map and a *TimeoutError carrying the artifacts that were located.
// A failed
// download ends the wait with a *DownloadError.
//
// On success the returned map has exactly one entry per distinct
// requested name.
func Wait(ctx context.Context, req Request) (map[string]Artifact, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	w := &waitOp{
		req:   &req,
		state: newState(req.Names),
		files: req.files(),
		clock: req.clock(),
		log: req.logger().With(
			"repo", req.Repo.String(),
			"run_id", req.RunID,
		),
	}
	return w.run(ctx)
}

func (w *waitOp) run(ctx context.Context) (map[string]Artifact, error) {
	deadline := w.clock.Now().Add(w.req.Timeout)

	for pass := 1; ; pass++ {
		w.log.Info("waiting for artifacts", "pass", pass, "names", w.state.missing())

		// Past the deadline we still make this pass, but no other.
		tryAgain := !w.clock.Now().After(deadline)

		done, err := w.pass(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return w.state.located, nil
		}

		if err := w.flush(ctx); err != nil {
			return nil, err
		}
		if !tryAgain {
			missing := w.state.missing()
			w.log.Warn("gave up waiting for artifacts", "missing", missing)
			return nil, &TimeoutError{Missing: missing, Located: w.state.located}
		}

		if err := w.clock.Sleep(ctx, w.req.pollInterval()); err != nil {
			return nil, err
		}
	}
}

// pass walks one fresh listing of the run. It returns true once every
// artifact has been located and flushed, without reading further pages.
func (w *waitOp) pass(ctx context.Context) (bool, error) {
	pages := w.req.Source.ListRunArtifacts(ctx, w.req.Repo, w.req.RunID)
	if pages == nil {
		return false, nil
	}
	for {
		batch, ok, err := pages.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("list run artifacts: %w", err)
		}
		if !ok {
			w.log.Debug("listing exhausted", "pages", pages.Pages(), "artifacts", pages.Fetched())
			return false, nil
		}

		for _, artifact := range batch {
			if w.state.markFound(artifact) {
				w.log.Info("found artifact", "name", artifact.Name, "id", artifact.ID)
			}
		}

		if w.state.complete() {
			w.log.Debug("all artifacts located", "pages", pages.Pages(), "artifacts", pages.Fetched())
			if err := w.flush(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
}
