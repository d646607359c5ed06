package frontend

import (
	"strings"

	"trscan/internal/literal"
	"trscan/internal/record"
)

// AnnotationPolicy carries the quote requirement per structured comment
// kind. It is static configuration consumed, not owned, by the core.
type AnnotationPolicy struct {
	ID    literal.QuoteRequirement
	Extra literal.QuoteRequirement
	Meta  literal.QuoteRequirement
	Magic literal.QuoteRequirement
}

// DefaultAnnotationPolicy matches the old tool: no quote is mandatory, so
// an annotation missing a quote still yields text.
func DefaultAnnotationPolicy() AnnotationPolicy {
	return AnnotationPolicy{
		ID:    literal.QuoteNone,
		Extra: literal.QuoteNone,
		Meta:  literal.QuoteNone,
		Magic: literal.QuoteNone,
	}
}

// commentBody strips the comment syntax and returns the marker character
// (':', '=', '~', '%') with the trailing text, or 0 if the comment carries
// no structured marker.
func commentBody(text string) (byte, string) {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "//"); ok {
		text = rest
	} else if rest, ok := strings.CutPrefix(text, "/*"); ok {
		text = strings.TrimSuffix(rest, "*/")
	} else {
		return 0, ""
	}
	if text == "" {
		return 0, ""
	}
	switch text[0] {
	case ':', '=', '~', '%':
		return text[0], strings.TrimSpace(strings.TrimSuffix(text[1:], "*/"))
	}
	return 0, ""
}

// applyStructuredComment folds one structured comment into a candidate.
// Unmarked comments are ignored; repeated extra/magic comments accumulate.
func applyStructuredComment(c *record.Candidate, text string, policy AnnotationPolicy) {
	marker, body := commentBody(text)
	if marker == 0 {
		return
	}
	switch marker {
	case ':':
		cleaned := literal.StripAnnotationQuotes(body, policy.Extra)
		if cleaned == "" {
			return
		}
		if c.ExtraComment != "" {
			c.ExtraComment += " "
		}
		c.ExtraComment += cleaned
	case '=':
		c.ID = literal.StripAnnotationQuotes(body, policy.ID)
	case '~':
		key, value, found := strings.Cut(body, " ")
		if !found {
			return
		}
		value = literal.StripAnnotationQuotes(value, policy.Meta)
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		c.Metadata[key] = value
	case '%':
		c.IDMetadata += literal.StripAnnotationQuotes(body, policy.Magic)
	}
}

// translatorComment recognizes "// TRANSLATOR <context> <comment>" and
// returns the context word and the comment text.
func translatorComment(text string) (context, comment string, ok bool) {
	text = strings.TrimSpace(text)
	rest, found := strings.CutPrefix(text, "//")
	if !found {
		if rest, found = strings.CutPrefix(text, "/*"); !found {
			return "", "", false
		}
		rest = strings.TrimSuffix(rest, "*/")
	}
	rest = strings.TrimSpace(rest)
	rest, found = strings.CutPrefix(rest, "TRANSLATOR")
	if !found {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	context, comment, _ = strings.Cut(rest, " ")
	if context == "" {
		return "", "", false
	}
	return context, strings.TrimSpace(comment), true
}
