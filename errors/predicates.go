package errors

import (
	"errors"
	"strings"

	devhttp "github.com/randalmurphal/artifactwait/http"
	"github.com/randalmurphal/artifactwait/provider"
	"github.com/randalmurphal/artifactwait/waiter"
)

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, provider.ErrTokenRequired) ||
		devhttp.IsUnauthorized(err)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrPermissionDenied) || devhttp.IsForbidden(err)
}

// IsTimeout reports whether the wait gave up with artifacts missing.
func IsTimeout(err error) bool {
	return waiter.IsTimeout(err)
}

// IsDownloadError reports whether an artifact was found but not saved.
func IsDownloadError(err error) bool {
	return waiter.IsDownloadFailed(err)
}

// IsInvalidInput reports whether the error stems from bad user input.
func IsInvalidInput(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrInvalidInput) || isInputError(err)
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, network connectivity issues and server
// errors that outlasted the client's retries.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) || devhttp.IsRetryable(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	// Network connectivity
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		return true
	}
	// TLS/certificate errors
	return strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509")
}
