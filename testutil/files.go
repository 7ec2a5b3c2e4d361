package testutil

import (
	"path/filepath"
	"sync"
)

// FileWrite is one call recorded by RecordingFiles.
type FileWrite struct {
	Path string
	Data []byte
}

// RecordingFiles records file writes instead of touching the disk.
type RecordingFiles struct {
	mu     sync.Mutex
	writes []FileWrite

	// FailOn maps a file's base name (e.g. "report.zip") to the error
	// returned when it is written.
	FailOn map[string]error
}

// WriteFile records the write, or returns the configured failure.
func (f *RecordingFiles) WriteFile(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.FailOn[filepath.Base(path)]; ok {
		return err
	}
	f.writes = append(f.writes, FileWrite{Path: path, Data: append([]byte(nil), data...)})
	return nil
}

// Writes returns the recorded writes in call order.
func (f *RecordingFiles) Writes() []FileWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FileWrite(nil), f.writes...)
}

// BaseNames returns the base name of every written path, in call order.
func (f *RecordingFiles) BaseNames() []string {
	var names []string
	for _, w := range f.Writes() {
		names = append(names, filepath.Base(w.Path))
	}
	return names
}
