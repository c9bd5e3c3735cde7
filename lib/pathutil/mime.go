// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package pathutil

import (
	"path"
	"strings"
)

// DefaultMIMEType is returned for extensions with no table entry.
const DefaultMIMEType = "application/octet-stream"

// mimeByExtension maps lowercase file extensions (with leading dot) to
// MIME types. The table is fixed rather than delegating to the
// platform's mime package so inference is identical on every OS; a
// file's stored mimeType must not depend on which machine created it.
var mimeByExtension = map[string]string{
	".ts":    "text/typescript",
	".tsx":   "text/typescript",
	".js":    "text/javascript",
	".jsx":   "text/javascript",
	".mjs":   "text/javascript",
	".cjs":   "text/javascript",
	".json":  "application/json",
	".jsonc": "application/json",
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".md":    "text/markdown",
	".txt":   "text/plain",
	".yaml":  "application/yaml",
	".yml":   "application/yaml",
	".toml":  "application/toml",
	".xml":   "application/xml",
	".csv":   "text/csv",
	".sql":   "application/sql",
	".sh":    "text/x-shellscript",
	".go":    "text/x-go",
	".py":    "text/x-python",
	".rs":    "text/x-rust",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".pdf":   "application/pdf",
	".zip":   "application/zip",
	".gz":    "application/gzip",
	".tar":   "application/x-tar",
	".wasm":  "application/wasm",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".env":   "text/plain",
}

// MIMEType infers a MIME type from the file name's extension. Unknown
// extensions (and names without one) yield DefaultMIMEType.
func MIMEType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return DefaultMIMEType
}

// textMIMETypes lists non-"text/" MIME types that still carry textual
// payloads and therefore compress well.
var textMIMETypes = map[string]bool{
	"application/json": true,
	"application/yaml": true,
	"application/toml": true,
	"application/xml":  true,
	"application/sql":  true,
	"image/svg+xml":    true,
}

// IsTextMIME reports whether a MIME type denotes textual content. Used
// to gate the optional gzip compression marker: binary payloads are
// never marked.
func IsTextMIME(mime string) bool {
	return strings.HasPrefix(mime, "text/") || textMIMETypes[mime]
}
