package tabular

import (
	"strconv"
	"strings"
)

// CEPNames abbreviates species or site names into the eight-character
// identifiers used by the Cornell Ecology Programs: four letters of the
// first name element plus four of the last (single-element names are
// truncated to eight). Duplicates get a running counter spliced into the
// eighth position, retried until unique.
func CEPNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	count := 1

	for _, name := range names {
		abbr := cepName(name)
		for seen[abbr] {
			abbr = splice(abbr, count)
			count++
		}
		seen[abbr] = true
		out = append(out, abbr)
	}
	return out
}

func cepName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	first := parts[0]
	last := parts[len(parts)-1]
	if first == last {
		return prefix(first, 8)
	}
	return prefix(first, 4) + strings.TrimRight(prefix(last, 4), ".")
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// splice appends a counter, trimming the base so the result stays within
// eight characters.
func splice(abbr string, count int) string {
	suffix := strconv.Itoa(count)
	keep := 8 - len(suffix)
	if len(abbr) < keep {
		keep = len(abbr)
	}
	return abbr[:keep] + suffix
}
