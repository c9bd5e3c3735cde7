// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// contentDomainKey is the BLAKE3 key for file-content checksums.
// Domain separation keeps these hashes from colliding with any other
// BLAKE3 use of the same bytes. The value is the ASCII domain name
// zero-padded to 32 bytes, which keeps the key readable in hex dumps
// without weakening keyed mode.
var contentDomainKey = [32]byte{
	's', 't', 'a', 'c', 'k', 'p', 'a', 'd', '.', 'v', 'f', 's', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Checksum computes the hex-encoded BLAKE3 keyed hash of content.
// This is the value stored in a file record's Hash field and compared
// by the sync engine to tell real content change from timestamp drift.
func Checksum(content []byte) string {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		// NewKeyed fails only for a wrong key length, which the
		// fixed-size array rules out.
		panic("chunk: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}
