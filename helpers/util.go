package helpers

import (
	"strconv"
	"strings"
)

// ParseCount parses a vote/comment counter as rendered on the page
// ("1,234", "987", "1.2K") into an integer. Returns 0 when the text is
// not a recognizable number.
func ParseCount(text string) int {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ",", "")

	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}

	// Abbreviated counters like "1.2K"
	if strings.HasSuffix(s, "K") || strings.HasSuffix(s, "k") {
		f, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err == nil && f >= 0 {
			return int(f * 1000)
		}
	}

	return 0
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
