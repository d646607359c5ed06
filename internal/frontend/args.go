package frontend

import (
	"strings"

	"trscan/internal/literal"
	"trscan/internal/record"
	"trscan/internal/tr"
)

// splitArgs splits the inside of a call's parentheses at top-level commas,
// respecting nested parens and string literals. Escaped quotes stay inside
// their literal.
func splitArgs(s string) []string {
	var (
		args    []string
		depth   int
		inStr   bool
		start   int
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" || len(args) > 0 {
		args = append(args, tail)
	}
	return args
}

// isStringArg reports whether a raw argument is a string literal of any
// form (plain, prefixed or raw).
func isStringArg(arg string) bool {
	idx := strings.IndexByte(arg, '"')
	if idx < 0 {
		return false
	}
	if idx == 0 {
		return true
	}
	switch arg[:idx] {
	case "u8", "L", "u", "U", "R", "u8R", "LR", "uR", "UR":
		return true
	}
	return false
}

// fillFromArgs populates the call-kind specific fields of a candidate from
// its raw argument texts. Literal arguments are cleaned; non-literal ones
// are kept raw (the numerus argument is an expression, not a string).
func fillFromArgs(c *record.Candidate, fn tr.Function, args []string) {
	switch c.Kind {
	case tr.KindPlain:
		// tr(source) / tr(source, comment) / tr(source, comment, n)
		if len(args) > 0 {
			c.SourceText = literal.StripLiteralToken(args[0])
		}
		if len(args) > 1 && isStringArg(args[1]) {
			c.Comment = literal.StripLiteralToken(args[1])
		}
		if len(args) > 2 {
			c.PluralText = args[2]
		}
	case tr.KindContext:
		// translate(context, source) and the NOOP/N_NOOP family.
		if len(args) > 0 {
			c.ContextArg = literal.StripLiteralToken(args[0])
		}
		if len(args) > 1 {
			c.SourceText = literal.StripLiteralToken(args[1])
		}
		if len(args) > 2 && isStringArg(args[2]) {
			c.Comment = literal.StripLiteralToken(args[2])
		}
		if len(args) > 3 {
			c.PluralText = args[3]
		}
		if fn.Plural && c.PluralText == "" {
			c.PluralText = c.SourceText
		}
	case tr.KindID:
		// qtTrId(id) / qtTrId(id, n)
		if len(args) > 0 {
			c.ID = literal.StripLiteralToken(args[0])
		}
		if len(args) > 1 {
			c.PluralText = args[1]
		}
		if fn.Plural && c.PluralText == "" {
			c.PluralText = c.ID
		}
	case tr.KindDeclareContext:
		// Q_DECLARE_TR_FUNCTIONS(Some::Context) — the argument is usually a
		// bare identifier, occasionally quoted.
		if len(args) > 0 {
			c.ContextArg = literal.StripAnnotationQuotes(args[0], literal.QuoteNone)
		}
	}
}
