// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package pathutil

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSize renders a byte count for display using 1024-based units.
//
//	FormatSize(512)     → "512 B"
//	FormatSize(1536)    → "1.5 KB"
//	FormatSize(2097152) → "2.0 MB"
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// sizeMultipliers maps unit suffixes (uppercased, "iB" collapsed to
// "B") to their 1024-based multipliers.
var sizeMultipliers = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseSize parses a human byte-size string like "512", "64KB",
// "10 MB", or "1.5GiB" into a byte count. Units are 1024-based;
// "KiB"-style spellings are accepted as aliases. Negative values and
// unknown suffixes are errors.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size is empty")
	}

	index := len(s)
	for index > 0 {
		c := s[index-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		index--
	}
	numberPart := strings.TrimSpace(s[:index])
	unitPart := strings.ToUpper(strings.TrimSpace(s[index:]))
	unitPart = strings.Replace(unitPart, "IB", "B", 1)

	multiplier, ok := sizeMultipliers[unitPart]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q in %q", s[index:], s)
	}

	value, err := strconv.ParseFloat(numberPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number %q in %q", numberPart, s)
	}
	if value < 0 {
		return 0, fmt.Errorf("size %q is negative", s)
	}

	return int64(value * float64(multiplier)), nil
}
