package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericRunRe = regexp.MustCompile(`\d+(?:,\d+)*(?:\.\d+)?`)
	// canonicalContextRe matches strings Context has already produced, so a
	// second pass returns them unchanged instead of re-reading "128K" as 128.
	canonicalContextRe = regexp.MustCompile(`^(?:\d+(?:\.\d)?M|\d+K|[\d,]+) tokens$`)
)

// Context converts a raw context-length value ("128000", "200,000 tokens",
// "2000000") into a canonical token-count string. Input with no numeric run
// passes through trimmed; empty stays empty.
func Context(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || canonicalContextRe.MatchString(raw) {
		return raw
	}

	run := numericRunRe.FindString(raw)
	if run == "" {
		return raw
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(run, ",", ""), 64)
	if err != nil {
		return raw
	}

	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM tokens", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.0fK tokens", n/1_000)
	default:
		return fmt.Sprintf("%.0f tokens", n)
	}
}

// TokenCount expands shorthand token counts like "127k", "1.5M", or
// "128,000" into a plain integer. Returns 0 when no count is recognizable.
func TokenCount(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n * mult)
}
