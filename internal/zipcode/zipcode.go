// Package zipcode resolves US ZIP codes to IANA timezone names using an
// embedded table of 3-digit ZIP prefixes. The mapping is best-effort:
// a handful of counties sit on the other side of a timezone boundary
// from the rest of their prefix, which is acceptable because every
// resolved timezone is confirmed with the user before it is relied on.
package zipcode

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed prefixes.csv
var prefixCSV string

var (
	once     sync.Once
	prefixes map[string]string
)

// Timezone returns the IANA timezone for a 5-digit ZIP code, or the
// empty string when the ZIP is unknown.
func Timezone(zip string) string {
	if len(zip) != 5 {
		return ""
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return ""
		}
	}
	once.Do(load)
	return prefixes[zip[:3]]
}

func load() {
	prefixes = make(map[string]string)
	for _, line := range strings.Split(prefixCSV, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			continue
		}
		start, end, tz := parts[0], parts[1], parts[2]
		if len(start) != 3 || len(end) != 3 || start > end {
			continue
		}
		for p := start; p <= end; p = next(p) {
			prefixes[p] = tz
			if p == end {
				break
			}
		}
	}
}

// next increments a 3-digit prefix string, e.g. "099" -> "100".
func next(p string) string {
	b := []byte(p)
	for i := 2; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "999"
}
