// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra error
// message. A command returning ExitError has already written its own
// output; main exits with the code and prints nothing. Used where a
// non-zero exit is a valid outcome rather than a failure, like
// `stackpad sync status` reporting pending conflicts.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Main checks for this interface on
// returned errors to distinguish a handled non-zero exit from an
// unexpected error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}
