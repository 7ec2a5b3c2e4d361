package waiter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout indicates requested artifacts were still missing after
	// the timeout and the final grace pass.
	ErrTimeout = errors.New("expected artifacts not found")

	// ErrDownloadFailed indicates an artifact archive could not be
	// fetched or written.
	ErrDownloadFailed = errors.New("artifact download failed")

	// ErrInvalidRequest indicates the request could not be started.
	ErrInvalidRequest = errors.New("invalid wait request")
)

// TimeoutError reports the artifacts that never appeared. Artifacts
// located before giving up travel on the error, since Wait returns no
// result on failure.
type TimeoutError struct {
	Missing []string            // Names still awaited, in request order
	Located map[string]Artifact // Names found before the timeout
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTimeout.Error(), strings.Join(e.Missing, " "))
}

// Unwrap returns ErrTimeout.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// DownloadError reports a failed fetch or write of one artifact.
type DownloadError struct {
	Name string // Artifact name
	Path string // Destination file
	Err  error  // Underlying cause
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download artifact %s to %s: %v", e.Name, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDownloadFailed.
func (e *DownloadError) Is(target error) bool {
	return target == ErrDownloadFailed
}

// IsTimeout reports whether err is a wait timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsDownloadFailed reports whether err is a download failure.
func IsDownloadFailed(err error) bool {
	return errors.Is(err, ErrDownloadFailed)
}
