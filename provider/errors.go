package provider

import "errors"

// Provider errors
var (
	// ErrInvalidRepo indicates a repository string is not "owner/name".
	ErrInvalidRepo = errors.New("invalid repository")

	// ErrInvalidRunID indicates a run ID is not a positive integer.
	ErrInvalidRunID = errors.New("invalid run ID")

	// ErrTokenRequired indicates no API token was supplied.
	ErrTokenRequired = errors.New("API token is required")

	// ErrUnknownProvider indicates the CI host kind is not supported.
	ErrUnknownProvider = errors.New("unknown CI provider")

	// ErrRunNotFound indicates the run (or pipeline) does not exist or is
	// not visible to the token.
	ErrRunNotFound = errors.New("run not found")

	// ErrArtifactNotFound indicates the artifact does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactExpired indicates the artifact's archive has expired.
	ErrArtifactExpired = errors.New("artifact expired")
)
