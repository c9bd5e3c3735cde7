// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

// PlatformError reports that the local directory could not be accessed:
// the path does not exist, is not a directory, or the filesystem
// refused access. A user declining to bind a folder is not an error
// (BindFolder returns false for that); PlatformError covers the cases
// where the platform itself failed.
type PlatformError struct {
	Message string
	Err     error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PlatformError) Unwrap() error { return e.Err }

// ErrNoFolder is returned by operations that require a bound folder
// before BindFolder has succeeded. Compare with errors.Is.
var ErrNoFolder = &PlatformError{Message: "no folder bound"}
