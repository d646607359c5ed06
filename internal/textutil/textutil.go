package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// HintMatcher decides whether a translation unit can contain translation
// information at all, before any parsing happens.
type HintMatcher struct {
	pattern *regexp.Regexp
}

// NewHintMatcher builds a matcher for the given function names. A unit is
// interesting if any name occurs as a call token, or if it carries a
// structured translation comment marker.
func NewHintMatcher(names []string) *HintMatcher {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	expr := `\b(?:` + strings.Join(quoted, "|") + `)\s*\(` + `|//\s*(?:TRANSLATOR\b|[:=~%])`
	return &HintMatcher{pattern: regexp.MustCompile(expr)}
}

// Match reports whether the unit's raw bytes pass the gate. Units that
// fail are skipped without parsing.
func (m *HintMatcher) Match(content []byte) bool {
	return m.pattern.Match(content)
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
