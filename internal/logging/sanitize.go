// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedValueLen bounds client supplied strings written to logs.
const maxLoggedValueLen = 128

// SanitizeValue escapes control characters and truncates long values.
//
//	logging.Info().Str("user_name", logging.SanitizeValue(name)).Msg("...")
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return truncateString(b.String(), maxLoggedValueLen)
}

// SanitizeUserName falls back to "unknown" for empty names.
func SanitizeUserName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unknown"
	}
	return SanitizeValue(name)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
