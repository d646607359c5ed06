// Package placeholder detects argument markers inside extracted message
// text. Translators need to know which markers a message carries, and a
// plural message without a count marker is a likely authoring mistake.
package placeholder

import (
	"regexp"
)

// match is one detected marker with its position.
type match struct {
	start, end int
	value      string
}

// patterns recognize the marker styles found in translatable C/C++ text.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`%L?n\b`),      // count markers: %n, %Ln
	regexp.MustCompile(`%L?[1-9]\d?`), // argument markers: %1..%99, %L1..%L99
}

// Scan returns the markers of text in source order, duplicates included.
// Overlapping matches keep the first, longest one.
func Scan(text string) []string {
	var all []match
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, match{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sortMatches(all)

	var values []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			values = append(values, m.value)
			lastEnd = m.end
		}
	}
	return values
}

// HasCountMarker reports whether text carries a %n (or %Ln) marker. A
// plural-aware message without one renders the same for every count.
func HasCountMarker(text string) bool {
	for _, v := range Scan(text) {
		if v == "%n" || v == "%Ln" {
			return true
		}
	}
	return false
}

// sortMatches orders by start position, longest first on ties, so overlap
// filtering is deterministic.
func sortMatches(matches []match) {
	for i := 1; i < len(matches); i++ {
		key := matches[i]
		j := i - 1
		for j >= 0 && (matches[j].start > key.start ||
			(matches[j].start == key.start && (matches[j].end-matches[j].start) < (key.end-key.start))) {
			matches[j+1] = matches[j]
			j--
		}
		matches[j+1] = key
	}
}
