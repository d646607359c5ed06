package frontend

import (
	"regexp"
	"strings"

	"trscan/internal/record"
	"trscan/internal/tr"
)

// PreprocessorWalker scans the raw token stream of a unit for macro-style
// translation calls and for structured comment annotations. Macros the tree
// walker also sees (a NOOP call at file scope parses as an ordinary call)
// produce a second record for the same location; finalization collapses
// the pair.
type PreprocessorWalker struct {
	resolver *tr.Resolver
	store    *record.Store

	macroPattern *regexp.Regexp
}

// macroStyle is the shape of names the preprocessor sees as macros.
var macroStyle = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// NewPreprocessorWalker builds a walker recognizing the macro-style subset
// of the alias table (all-caps names, the form the preprocessor sees).
func NewPreprocessorWalker(resolver *tr.Resolver, store *record.Store) *PreprocessorWalker {
	var names []string
	for _, name := range resolver.Names() {
		fn := resolver.Resolve(name)
		if fn.Kind == tr.KindNone || fn.Kind == tr.KindAnnotation || fn.Kind == tr.KindDeclareContext {
			continue
		}
		if macroStyle.MatchString(name) {
			names = append(names, regexp.QuoteMeta(name))
		}
	}
	var pattern *regexp.Regexp
	if len(names) > 0 {
		pattern = regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\s*\(`)
	}
	return &PreprocessorWalker{
		resolver:     resolver,
		store:        store,
		macroPattern: pattern,
	}
}

// Walk emits candidates for one unit.
func (w *PreprocessorWalker) Walk(u *Unit) error {
	mask := classify(u.Content)
	lines := strings.Split(string(u.Content), "\n")
	for i, line := range lines {
		lineNo := i + 1
		base := u.lineOffsets[lineNo-1]
		if err := w.scanTranslatorComment(u, line, lineNo, base, mask); err != nil {
			return err
		}
		if err := w.scanMacros(u, line, lineNo, base, mask); err != nil {
			return err
		}
	}
	return nil
}

// Byte classes of a translation unit, used to keep the line scanners out
// of comments and string literals.
const (
	classCode byte = iota
	classComment
	classString
)

// classify masks every byte of the unit as code, comment or string text.
// Block comments and string literals may span lines; escaped quotes stay
// inside their literal.
func classify(content []byte) []byte {
	mask := make([]byte, len(content))

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
		stateChar
	)
	state := stateCode

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch state {
		case stateCode:
			switch {
			case ch == '/' && i+1 < len(content) && content[i+1] == '/':
				state = stateLineComment
				mask[i] = classComment
			case ch == '/' && i+1 < len(content) && content[i+1] == '*':
				state = stateBlockComment
				mask[i] = classComment
			case ch == '"':
				state = stateString
				mask[i] = classString
			case ch == '\'':
				state = stateChar
				mask[i] = classString
			}
		case stateLineComment:
			if ch == '\n' {
				state = stateCode
			} else {
				mask[i] = classComment
			}
		case stateBlockComment:
			mask[i] = classComment
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				mask[i+1] = classComment
				i++
				state = stateCode
			}
		case stateString:
			mask[i] = classString
			switch ch {
			case '\\':
				if i+1 < len(content) {
					mask[i+1] = classString
					i++
				}
			case '"':
				state = stateCode
			}
		case stateChar:
			mask[i] = classString
			switch ch {
			case '\\':
				if i+1 < len(content) {
					mask[i+1] = classString
					i++
				}
			case '\'':
				state = stateCode
			}
		}
	}
	return mask
}

// scanTranslatorComment recognizes "// TRANSLATOR <ctx> <comment>" lines.
// Only an actual comment opener counts; "//" inside a string literal is
// string text.
func (w *PreprocessorWalker) scanTranslatorComment(u *Unit, line string, lineNo, base int, mask []byte) error {
	idx := -1
	for i := 0; i < len(line); i++ {
		if mask[base+i] == classComment {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	context, comment, ok := translatorComment(line[idx:])
	if !ok {
		return nil
	}

	c := record.NewCandidate(tr.KindAnnotation, "TRANSLATOR")
	c.RawCall = strings.TrimSpace(line[idx:])
	c.File = u.Path
	c.Line = lineNo
	c.Column = idx + 1
	c.ContextArg = context
	c.Comment = comment

	if !c.Valid() {
		return nil
	}
	return w.store.Append(record.PartitionAnnotationContext, c)
}

// scanMacros finds macro-style call starts on one line; the argument span
// may continue over following lines.
func (w *PreprocessorWalker) scanMacros(u *Unit, line string, lineNo, base int, mask []byte) error {
	if w.macroPattern == nil {
		return nil
	}

	for _, m := range w.macroPattern.FindAllStringSubmatchIndex(line, -1) {
		// Token scan, not source scan: a macro mentioned in a comment or
		// spelled inside a string literal is not a call.
		if mask[base+m[0]] != classCode {
			continue
		}
		name := line[m[2]:m[3]]
		fn := w.resolver.Resolve(name)

		absolute := base + m[0]
		openParen := base + m[1] - 1
		inside, end, ok := balancedSpan(u.Content, openParen)
		if !ok {
			continue
		}

		c := record.NewCandidate(fn.Kind, name)
		c.RawCall = string(u.Content[absolute : end+1])
		c.File = u.Path
		c.Line = lineNo
		c.Column = m[2] + 1
		fillFromArgs(&c, fn, splitArgs(inside))

		if !c.Valid() {
			continue
		}
		if err := w.store.Append(record.PartitionPreprocessor, c); err != nil {
			return err
		}
	}
	return nil
}

// balancedSpan returns the text between the paren at open and its matching
// close, honoring nested parens and string literals.
func balancedSpan(content []byte, open int) (inside string, closeIdx int, ok bool) {
	if open >= len(content) || content[open] != '(' {
		return "", 0, false
	}
	depth := 0
	inStr := false
	escaped := false
	for i := open; i < len(content); i++ {
		ch := content[i]
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
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return string(content[open+1 : i]), i, true
			}
		}
	}
	return "", 0, false
}
