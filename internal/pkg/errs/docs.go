// Package errs provides standardized error types for the fulfillment application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for the failure classes the system
// distinguishes:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is invalid
//   - ObjectNotFoundError: an object cannot be found
//   - UpstreamError: a carrier call failed, classified transient or rejected
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g. ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is can classify against the sentinel
//
// Upstream failures deserve a note: the carrier client itself never returns
// Go errors for ordinary upstream failures (those are tagged result data);
// UpstreamError is produced by command handlers when an upstream failure
// must surface to the caller as a hard, classified failure.
package errs
