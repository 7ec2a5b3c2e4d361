package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/provider"
	"github.com/randalmurphal/artifactwait/waiter"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	// TimeoutMessage is used when the wait gave up with names still missing.
	TimeoutMessage(missing []string) (message, suggestion string)

	// DownloadMessage is used when an artifact could not be saved.
	DownloadMessage(name string, expired bool) (message, suggestion string)

	// InvalidInputMessage is used for bad flags or config values.
	InvalidInputMessage() (message, suggestion string)

	// AuthErrorMessage is used for a missing or rejected token.
	AuthErrorMessage() (message, suggestion string)

	// PermissionDeniedMessage is used when the token cannot read the run.
	PermissionDeniedMessage() (message, suggestion string)

	// RunNotFoundMessage is used when the repository or run does not exist.
	RunNotFoundMessage() (message, suggestion string)

	// ConnectionErrorMessage is used when serverURL cannot be reached.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) TimeoutMessage(missing []string) (string, string) {
	return fmt.Sprintf("Timed out waiting for artifacts: %s", strings.Join(missing, " ")),
		"Check the artifact names and run ID, or raise --timeout if the producing run is slow."
}

func (m DefaultMessenger) DownloadMessage(name string, expired bool) (string, string) {
	msg := fmt.Sprintf("Could not download artifact %q.", name)
	if expired {
		return msg, "The artifact has expired. Re-run the producing workflow."
	}
	return msg, "Check that the download directory is writable and try again."
}

func (m DefaultMessenger) InvalidInputMessage() (string, string) {
	return "Invalid input.", "Run with -h to see the accepted flags."
}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The API token is missing or was rejected.",
		"Set --token, ARTIFACTWAIT_TOKEN or GITHUB_TOKEN."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "The API token cannot read this run's artifacts.",
		"Grant the token read access to actions (or CI jobs on GitLab)."
}

func (m DefaultMessenger) RunNotFoundMessage() (string, string) {
	return "The repository or run was not found.",
		"Check --repo and --run-id. Private repositories also report not found to tokens without access."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	if serverURL == "" {
		serverURL = "the API server"
	}
	return fmt.Sprintf("Cannot connect to %s", serverURL),
		"Check that:\n  - The URL is correct\n  - Your network connection is working"
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
	ServerURL string
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

// WithServerURL names the server in connection errors.
func WithServerURL(url string) Option {
	return func(c *WrapConfig) {
		c.ServerURL = url
	}
}

func getConfig(opts []Option) *WrapConfig {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WrapWaitError turns an error from parsing input or from waiter.Wait into
// a CLIError. Errors it does not recognise are returned unchanged.
func WrapWaitError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	cfg := getConfig(opts)
	m := cfg.Messenger

	var timeout *waiter.TimeoutError
	var download *waiter.DownloadError

	switch {
	case errors.Is(err, context.Canceled):
		return &CLIError{
			Err:     fmt.Errorf("%w: %w", ErrInterrupted, err),
			Message: "Interrupted before all artifacts were found.",
		}

	case errors.As(err, &timeout):
		msg, suggestion := m.TimeoutMessage(timeout.Missing)
		return &CLIError{Err: err, Message: msg, Suggestion: suggestion}

	case errors.As(err, &download):
		msg, suggestion := m.DownloadMessage(download.Name, errors.Is(err, provider.ErrArtifactExpired))
		return &CLIError{Err: err, Message: msg, Details: download.Err.Error(), Suggestion: suggestion}

	case isInputError(err):
		return NewInvalidInputError(err, opts...)

	case errors.Is(err, provider.ErrTokenRequired), devhttp.IsUnauthorized(err):
		msg, suggestion := m.AuthErrorMessage()
		return &CLIError{Err: fmt.Errorf("%w: %w", ErrNotAuthenticated, err), Message: msg, Suggestion: suggestion}

	case devhttp.IsForbidden(err):
		msg, suggestion := m.PermissionDeniedMessage()
		return &CLIError{Err: fmt.Errorf("%w: %w", ErrPermissionDenied, err), Message: msg, Suggestion: suggestion}

	case errors.Is(err, provider.ErrRunNotFound):
		msg, suggestion := m.RunNotFoundMessage()
		return &CLIError{Err: err, Message: msg, Details: err.Error(), Suggestion: suggestion}
	}

	return WrapConnectionError(err, opts...)
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	if !IsConnectionError(err) {
		return err
	}

	cfg := getConfig(opts)
	msg, suggestion := cfg.Messenger.ConnectionErrorMessage(cfg.ServerURL)
	return &CLIError{
		Err:        fmt.Errorf("%w: %w", ErrConnectionFailed, err),
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// NewInvalidInputError reports a bad flag, variable or config value.
func NewInvalidInputError(err error, opts ...Option) error {
	msg, suggestion := getConfig(opts).Messenger.InvalidInputMessage()
	return &CLIError{
		Err:        fmt.Errorf("%w: %w", ErrInvalidInput, err),
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

func isInputError(err error) bool {
	return errors.Is(err, provider.ErrInvalidRepo) ||
		errors.Is(err, provider.ErrInvalidRunID) ||
		errors.Is(err, provider.ErrUnknownProvider) ||
		errors.Is(err, waiter.ErrInvalidRequest)
}
