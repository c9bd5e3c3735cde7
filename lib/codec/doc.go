// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Stackpad's standard CBOR encoding configuration.
//
// Stackpad uses two serialization formats with a clear boundary:
//
//   - YAML/JSON for human-edited surfaces: the daemon configuration
//     file, per-folder sync overrides (config.jsonc), and CLI output.
//   - CBOR for machine state: the sync engine's on-disk folder
//     snapshot and any other state files that are written and read
//     only by stackpad itself.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Stackpad package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps snapshot files diffable and makes "did anything
// change" a byte comparison.
//
// For buffer-oriented operations (state files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR (snapshot
//     entries, internal state).
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor` tags
//     are absent, so a single `json` tag controls field naming and
//     omitempty for both formats (types used in CLI --json output).
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract.
package codec
