package waiter

import (
	"context"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// ArchivePath returns the file an artifact is downloaded to.
func ArchivePath(dir, name string) string {
	return filepath.Join(dir, name+".zip")
}

// flush downloads everything found since the last flush, one artifact
// at a time in discovery order. The pending list is cleared even when a
// download fails; the first failure is returned and nothing after it is
// attempted.
func (w *waitOp) flush(ctx context.Context) error {
	pending := w.state.takePending()
	if w.req.DownloadDir == "" {
		return nil
	}

	for _, name := range pending {
		artifact := w.state.located[name]
		path := ArchivePath(w.req.DownloadDir, name)

		w.log.Info("downloading artifact", "name", name, "id", artifact.ID, "path", path)
		data, err := w.req.Source.DownloadArtifact(ctx, w.req.Repo, artifact.ID)
		if err != nil {
			return &DownloadError{Name: name, Path: path, Err: err}
		}
		if err := w.files.WriteFile(path, data); err != nil {
			return &DownloadError{Name: name, Path: path, Err: err}
		}
		w.log.Info("downloaded artifact", "name", name, "size", humanize.Bytes(uint64(len(data))))
	}
	return nil
}
