// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/stackpad-dev/stackpad/lib/pathutil"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// codecTag identifies how a stored blob (inline file content or a
// chunk payload) is encoded on disk. Tags are persisted in the codec
// columns by name — changing a name breaks existing databases.
type codecTag uint8

const (
	// codecNone stores the blob raw. Used for already-compressed
	// content (PNG, zip, woff2) and whenever compression does not
	// shrink the blob.
	codecNone codecTag = 0

	// codecLZ4 is LZ4 block compression. Fast choice for binary
	// blobs that shrink some but not enough to justify zstd.
	codecLZ4 codecTag = 1

	// codecZstd is zstd at the default level. Best ratios for the
	// text-heavy payloads a project store mostly holds (source,
	// JSON, HTML).
	codecZstd codecTag = 2

	// codecGzip is gzip. Only used when a record's Compression
	// marker requests it. The marker is a contract that the bytes on
	// disk are gzip, so this codec never falls back to raw storage.
	codecGzip codecTag = 3
)

// String returns the name persisted in the codec columns.
func (tag codecTag) String() string {
	switch tag {
	case codecNone:
		return "none"
	case codecLZ4:
		return "lz4"
	case codecZstd:
		return "zstd"
	case codecGzip:
		return "gzip"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// parseCodecTag parses a codec tag from its stored name.
func parseCodecTag(name string) (codecTag, error) {
	switch name {
	case "none", "":
		return codecNone, nil
	case "lz4":
		return codecLZ4, nil
	case "zstd":
		return codecZstd, nil
	case "gzip":
		return codecGzip, nil
	default:
		return 0, fmt.Errorf("unknown codec tag: %q", name)
	}
}

// errIncompressible is returned by encodeBlob when the compressed
// output is not smaller than the input. The caller falls back to
// codecNone.
var errIncompressible = fmt.Errorf("data is incompressible")

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("sqlitestore: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sqlitestore: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeForStorage encodes a logical blob for storage, picking the
// codec from the record's Compression marker and MIME type. A gzip
// marker forces the gzip codec; otherwise the codec is probed and
// incompressible data is stored raw. Returns the stored bytes and the
// tag to persist alongside them.
func encodeForStorage(data []byte, mimeType, compression string) ([]byte, codecTag, error) {
	if len(data) == 0 {
		return nil, codecNone, nil
	}

	if compression == vfs.CompressionGzip {
		encoded, err := encodeBlob(data, codecGzip)
		if err != nil {
			return nil, 0, err
		}
		return encoded, codecGzip, nil
	}

	tag := selectCodec(data, mimeType)
	encoded, err := encodeBlob(data, tag)
	if err != nil {
		if err == errIncompressible {
			return data, codecNone, nil
		}
		return nil, 0, err
	}
	return encoded, tag, nil
}

// encodeBlob compresses data with the given codec. codecNone returns
// the input unchanged (no copy). LZ4 and zstd return errIncompressible
// when compression does not shrink the data; gzip never does, because
// it is only reached through a record-level contract.
func encodeBlob(data []byte, tag codecTag) ([]byte, error) {
	switch tag {
	case codecNone:
		return data, nil
	case codecLZ4:
		return encodeLZ4(data)
	case codecZstd:
		return encodeZstd(data)
	case codecGzip:
		return encodeGzip(data)
	default:
		return nil, fmt.Errorf("unsupported codec tag: %d", tag)
	}
}

// decodeBlob reverses encodeBlob. logicalSize must match the original
// data length exactly — this is verified and a mismatch returns an
// error, since it means the stored row is corrupt.
func decodeBlob(stored []byte, tag codecTag, logicalSize int) ([]byte, error) {
	switch tag {
	case codecNone:
		if len(stored) != logicalSize {
			return nil, fmt.Errorf("raw blob: size %d does not match expected %d", len(stored), logicalSize)
		}
		return stored, nil
	case codecLZ4:
		return decodeLZ4(stored, logicalSize)
	case codecZstd:
		return decodeZstd(stored, logicalSize)
	case codecGzip:
		return decodeGzip(stored, logicalSize)
	default:
		return nil, fmt.Errorf("unsupported codec tag: %d", tag)
	}
}

// codecProbeLimit bounds how many bytes selectCodec feeds the probe
// encoder. Chunk payloads fit entirely; only large inline blobs are
// sampled.
const codecProbeLimit = 64 * 1024

// selectCodec picks the codec for a blob. Known-compressed MIME types
// are stored raw without probing, and text-like MIME types go straight
// to zstd. Everything else is decided by compressing a sample: zstd
// when the ratio clears 1.5x, LZ4 when it clears 1.1x, raw otherwise.
func selectCodec(data []byte, mimeType string) codecTag {
	if precompressedMIME(mimeType) {
		return codecNone
	}
	if pathutil.IsTextMIME(mimeType) {
		return codecZstd
	}
	if len(data) == 0 {
		return codecNone
	}

	sample := data
	if len(sample) > codecProbeLimit {
		sample = sample[:codecProbeLimit]
	}
	compressed := zstdEncoder.EncodeAll(sample, nil)
	ratio := float64(len(sample)) / float64(len(compressed))

	switch {
	case ratio >= 1.5:
		return codecZstd
	case ratio >= 1.1:
		return codecLZ4
	default:
		return codecNone
	}
}

// precompressedMIME reports whether a MIME type denotes content that
// is already compressed, where a second pass costs CPU for nothing.
func precompressedMIME(mimeType string) bool {
	switch mimeType {
	case "image/svg+xml":
		// XML despite the image/ prefix.
		return false
	case "application/zip", "application/gzip", "application/pdf",
		"font/woff", "font/woff2":
		return true
	}
	return strings.HasPrefix(mimeType, "image/") ||
		strings.HasPrefix(mimeType, "video/") ||
		strings.HasPrefix(mimeType, "audio/")
}

// LZ4: block mode.

func encodeLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible. Also reject output that is not actually
	// smaller than the input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decodeLZ4(stored []byte, logicalSize int) ([]byte, error) {
	destination := make([]byte, logicalSize)
	read, err := lz4.UncompressBlock(stored, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != logicalSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, logicalSize)
	}
	return destination, nil
}

// Zstd: default level — good ratio without excessive CPU.

func encodeZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decodeZstd(stored []byte, logicalSize int) ([]byte, error) {
	destination := make([]byte, 0, logicalSize)
	result, err := zstdDecoder.DecodeAll(stored, destination)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != logicalSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), logicalSize)
	}
	return result, nil
}

// Gzip: the record-level Compression marker. Stored even when larger
// than the input so the on-disk encoding matches what the marker
// promises.

func encodeGzip(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decodeGzip(stored []byte, logicalSize int) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	if err := reader.Close(); err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	if len(result) != logicalSize {
		return nil, fmt.Errorf("gzip decompress: got %d bytes, expected %d", len(result), logicalSize)
	}
	return result, nil
}
