package internal

import (
	"fmt"
	"strings"
)

// FormatNoteID builds a sequential note identifier
// Format: prefix + 4-digit zero-padded number, e.g. "cam0007"
func FormatNoteID(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// SanitizeField replaces characters that would break a tab-delimited line
// (tab, CR, LF) with a single space
func SanitizeField(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if r == '\t' || r == '\r' || r == '\n' {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = r == ' '
	}
	return b.String()
}
