// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the stackpad command framework: a [Command] tree with
// pflag parsing, structured help output, typo suggestions, and the
// [Session] helper that opens the configured store for a command run.
package cli
