// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import "fmt"

// ValidationError reports malformed input or a violated precondition:
// bad path, size or quota exceeded, file already exists, file not
// found, directory not empty. These are caller mistakes, not storage
// failures, and retrying without changing the input will fail again.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DatabaseError reports a storage-layer failure or a manager state
// violation (not initialized, switch in progress). Err carries the
// underlying storage error when there is one.
type DatabaseError struct {
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// Sentinel state errors. Returned as-is so callers can compare with
// errors.Is.
var (
	// ErrNotInitialized is returned by every file operation before
	// Initialize has completed for a project.
	ErrNotInitialized = &DatabaseError{Message: "vfs is not initialized"}

	// ErrSwitchInProgress is returned when an operation or a second
	// switch overlaps an in-progress project switch.
	ErrSwitchInProgress = &DatabaseError{Message: "project switch already in progress"}
)

// validationf builds a *ValidationError from a format string.
func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// storagef wraps a storage-layer error into a *DatabaseError.
func storagef(err error, format string, args ...any) error {
	return &DatabaseError{Message: fmt.Sprintf(format, args...), Err: err}
}
