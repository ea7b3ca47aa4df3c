package common

import (
	"strconv"
	"strings"
)

// FormatNumber renders v with the shortest representation that round-trips,
// so 36 prints as "36" and 36.5 as "36.5".
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Celsius formats a temperature for display, e.g. "36°C".
func Celsius(v float64) string {
	return FormatNumber(v) + "°C"
}

// SplitList splits a comma separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
