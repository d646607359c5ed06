// Package literal recovers the character content of C/C++ string literal
// tokens and of quoted annotation comment fragments. Both operations are
// lenient: an unrecognized shape degrades to best-effort text, never an error.
package literal

import (
	"regexp"
	"strings"
)

// QuoteRequirement states which surrounding quotes an annotation fragment
// must carry. Absence of a mandatory quote yields empty text; absence of an
// optional one still yields text, preserving the old tool's lenient behavior.
type QuoteRequirement int

const (
	QuoteNone QuoteRequirement = iota
	QuoteLeft
	QuoteRight
	QuoteLeftAndRight
)

// StripAnnotationQuotes trims whitespace, then removes surrounding quotes
// according to the requirement. A missing mandatory quote returns "".
func StripAnnotationQuotes(text string, req QuoteRequirement) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(text)

	trimmed, hadLeft := strings.CutPrefix(text, `"`)
	if !hadLeft && (req == QuoteLeft || req == QuoteLeftAndRight) {
		return ""
	}
	text = trimmed

	trimmed, hadRight := strings.CutSuffix(text, `"`)
	if !hadRight && (req == QuoteRight || req == QuoteLeftAndRight) {
		return ""
	}
	return trimmed
}

// maxRawDelimiter is the longest delimiter a raw string literal may carry.
const maxRawDelimiter = 16

// ordinaryLiteral matches a prefixed or plain quoted literal. Escaped
// characters inside stay encoded; only the outer syntax is captured away.
var ordinaryLiteral = regexp.MustCompile(
	`(?:\bu8|\b[LuU])??"(?P<characters>[^"\\]*(?:\\.[^"\\]*)*)"`)

// StripLiteralToken returns the character content of a string literal token
// as the front end lexed it, handling ordinary literals (optional u8/L/u/U
// prefix, escapes left encoded) and raw literals (R with a delimiter of up
// to 16 non-space, non-paren, non-backslash characters, content untouched).
// A quoted token of unrecognized shape comes back unchanged; a token with
// no quote at all yields empty, as the old tool did.
func StripLiteralToken(raw string) string {
	if raw == "" {
		return ""
	}

	token := strings.TrimSpace(raw)
	idx := strings.IndexByte(token, '"')
	if idx <= 0 {
		// No prefix before the quote: either a plainly quoted string or
		// something that is not a literal at all.
		return StripAnnotationQuotes(token, QuoteLeftAndRight)
	}

	if token[idx-1] == 'R' {
		if content, ok := stripRawLiteral(token[idx+1:]); ok {
			return content
		}
	} else if m := ordinaryLiteral.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	return token
}

// stripRawLiteral decodes the part after R" of a raw string literal:
// delim( characters )delim". The closing sequence must mirror the opening
// delimiter exactly.
func stripRawLiteral(rest string) (string, bool) {
	open := strings.IndexByte(rest, '(')
	if open < 0 || open > maxRawDelimiter {
		return "", false
	}
	delim := rest[:open]
	if strings.ContainsAny(delim, `()\ `) {
		return "", false
	}
	body := rest[open+1:]
	end := strings.LastIndex(body, ")"+delim+`"`)
	if end < 0 {
		return "", false
	}
	return body[:end], true
}
