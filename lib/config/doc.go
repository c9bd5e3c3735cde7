// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the stackpad CLI.
//
// Configuration is loaded from a single file specified by either the
// --config flag or the STACKPAD_CONFIG environment variable (via
// [Load]). When neither is set the built-in defaults apply, so a
// config file is never required. A .env file in the working directory
// is applied to the process environment before the config file is
// read, which lets ${VAR} expansion in the file reference it.
//
// Size-valued fields (max_file_size, chunk_threshold, ...) accept
// human-readable strings like "10MB" or "256KB"; duration-valued
// fields accept Go duration strings like "2s". Validation reports
// every problem at once via errors.Join rather than stopping at the
// first.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Store, Sync, and Log sections
//   - [Default] -- returns a Config with stock defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
