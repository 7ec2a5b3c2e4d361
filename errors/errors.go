package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotAuthenticated indicates a missing or rejected API token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the token lacks access to the run.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConnectionFailed indicates the API server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidInput indicates a bad flag, variable or config value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInterrupted indicates the wait was cancelled by a signal.
	ErrInterrupted = errors.New("interrupted")
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitTimeout  = 3
	ExitDownload = 4
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsInvalidInput(err):
		return ExitUsage
	case IsTimeout(err):
		return ExitTimeout
	case IsDownloadError(err):
		return ExitDownload
	default:
		return ExitError
	}
}
