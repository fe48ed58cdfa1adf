package linguistics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeTime maps a time span to "YYYY-MM", "YYYY", or a year relative to
// now. Unrecognized spans yield "".
func (h *Heuristic) NormalizeTime(surface string, now time.Time) string {
	lower := strings.ToLower(strings.TrimSpace(surface))
	if lower == "" {
		return ""
	}

	if m := monthYear.FindStringSubmatch(lower); m != nil {
		for i, name := range months {
			if name == m[1] {
				return fmt.Sprintf("%s-%02d", m[2], i+1)
			}
		}
	}
	if m := yearLiteral.FindStringSubmatch(lower); m != nil {
		return m[1]
	}

	year := now.Year()
	switch {
	case strings.Contains(lower, "last year"):
		return strconv.Itoa(year - 1)
	case strings.Contains(lower, "this year"):
		return strconv.Itoa(year)
	case strings.Contains(lower, "next year"):
		return strconv.Itoa(year + 1)
	}
	return ""
}

// NormalizeLocation expands common abbreviations and cleans punctuation.
func (h *Heuristic) NormalizeLocation(surface string) string {
	lower := strings.ToLower(strings.TrimSpace(surface))
	if lower == "" {
		return ""
	}
	if full, ok := locationAliases[lower]; ok {
		return full
	}
	return collapse(nonWordSpace.ReplaceAllString(lower, ""))
}
