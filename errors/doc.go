// Package errors turns artifactwait failures into user-facing messages.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// WrapWaitError recognises timeouts, download failures, bad input and
// API auth, permission and not-found responses. ExitCode maps any error
// to the process exit status:
//
//	found, err := waiter.Wait(ctx, req)
//	if err != nil {
//	    err = errors.WrapWaitError(err, errors.WithServerURL(serverURL))
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
