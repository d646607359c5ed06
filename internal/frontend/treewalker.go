package frontend

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"trscan/internal/record"
	"trscan/internal/tr"
)

// TreeWalker produces candidate records from the syntax tree: ordinary
// translation calls, declarative context macros and the structured comments
// attached to calls. It owns no shared state beyond the store it appends to.
type TreeWalker struct {
	resolver *tr.Resolver
	store    *record.Store
	policy   AnnotationPolicy

	declarePatterns map[string]*regexp.Regexp
}

// NewTreeWalker builds a walker over the given alias table and store.
func NewTreeWalker(resolver *tr.Resolver, store *record.Store, policy AnnotationPolicy) *TreeWalker {
	patterns := make(map[string]*regexp.Regexp)
	for _, name := range resolver.Names() {
		if resolver.Resolve(name).Kind == tr.KindDeclareContext {
			patterns[name] = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(([^)]*)\)`)
		}
	}
	return &TreeWalker{
		resolver:        resolver,
		store:           store,
		policy:          policy,
		declarePatterns: patterns,
	}
}

// Walk emits candidates for one unit. Comments are collected over the whole
// tree before any call is emitted, so a trailing comment on a call's own
// line is already known when the call is folded. A failed append stops the
// walk; the unit's partial contribution stays valid.
func (w *TreeWalker) Walk(u *Unit) error {
	comments := make(map[int]string) // end line → comment text
	var calls []*sitter.Node
	w.collect(u, u.Root(), comments, &calls)

	for _, call := range calls {
		if err := w.emitCall(u, call, comments); err != nil {
			return err
		}
	}
	return w.emitDeclaredContexts(u)
}

func (w *TreeWalker) collect(u *Unit, node *sitter.Node, comments map[int]string, calls *[]*sitter.Node) {
	switch node.Kind() {
	case "comment":
		comments[int(node.EndPosition().Row)+1] = u.text(node)
	case "call_expression":
		*calls = append(*calls, node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		w.collect(u, child, comments, calls)
	}
}

// calleeName extracts the invoked identifier from a call's function child.
func (w *TreeWalker) calleeName(u *Unit, fn *sitter.Node) string {
	switch fn.Kind() {
	case "identifier", "qualified_identifier":
		return u.text(fn)
	case "field_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			return u.text(field)
		}
	case "template_function":
		if name := fn.ChildByFieldName("name"); name != nil {
			return u.text(name)
		}
	}
	return ""
}

func (w *TreeWalker) emitCall(u *Unit, node *sitter.Node, comments map[int]string) error {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}
	name := w.calleeName(u, fnNode)
	fn := w.resolver.Resolve(name)
	switch fn.Kind {
	case tr.KindPlain, tr.KindContext, tr.KindID:
	default:
		// Declarative macros are found by the pattern pass with proper
		// scope handling; unrecognized names are not translation calls.
		return nil
	}

	start := node.StartPosition()
	c := record.NewCandidate(fn.Kind, name)
	c.RawCall = u.text(node)
	c.File = u.Path
	c.Line = int(start.Row) + 1
	c.Column = int(start.Column) + 1
	c.EnclosingScope = scopePath(u, node)

	fillFromArgs(&c, fn, w.rawArgs(u, node))
	w.attachComments(&c, comments, c.Line)

	if !c.Valid() {
		return nil
	}
	return w.store.Append(record.PartitionAST, c)
}

// rawArgs returns the raw source text of each call argument.
func (w *TreeWalker) rawArgs(u *Unit, call *sitter.Node) []string {
	argList := call.ChildByFieldName("arguments")
	if argList == nil {
		return nil
	}
	var args []string
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		arg := argList.NamedChild(uint(i))
		if arg == nil || arg.Kind() == "comment" {
			continue
		}
		args = append(args, u.text(arg))
	}
	return args
}

// attachComments folds the contiguous run of structured comments directly
// above a call into the candidate, oldest first, then a trailing comment
// on the call's own line.
func (w *TreeWalker) attachComments(c *record.Candidate, comments map[int]string, callLine int) {
	var run []string
	for line := callLine - 1; ; line-- {
		text, ok := comments[line]
		if !ok {
			break
		}
		run = append(run, text)
	}
	for i := len(run) - 1; i >= 0; i-- {
		applyStructuredComment(c, run[i], w.policy)
	}
	if text, ok := comments[callLine]; ok {
		applyStructuredComment(c, text, w.policy)
	}
}

// emitDeclaredContexts finds declarative context macros by pattern. The
// parse shape of such a macro inside a class body is grammar-dependent, so
// the match is textual and the enclosing scope is recovered from the node
// covering the match.
func (w *TreeWalker) emitDeclaredContexts(u *Unit) error {
	for name, pattern := range w.declarePatterns {
		fn := w.resolver.Resolve(name)
		for _, m := range pattern.FindAllSubmatchIndex(u.Content, -1) {
			node := deepestNodeAt(u.Root(), m[0], m[1])
			if node == nil {
				continue
			}
			switch node.Kind() {
			case "comment", "string_literal", "raw_string_literal", "string_content":
				// The pattern pass reads raw bytes; a match inside a
				// comment or a string literal is not a declaration.
				continue
			}
			line, column := positionAt(u, m[0])

			c := record.NewCandidate(fn.Kind, name)
			c.RawCall = string(u.Content[m[0]:m[1]])
			c.File = u.Path
			c.Line = line
			c.Column = column
			c.EnclosingScope = scopePath(u, node)
			fillFromArgs(&c, fn, splitArgs(string(u.Content[m[2]:m[3]])))

			if !c.Valid() {
				continue
			}
			if err := w.store.Append(record.PartitionDeclaredContext, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// deepestNodeAt descends to the innermost node covering [start, end).
func deepestNodeAt(node *sitter.Node, start, end int) *sitter.Node {
	for {
		var next *sitter.Node
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			if child == nil {
				continue
			}
			if int(child.StartByte()) <= start && end <= int(child.EndByte()) {
				next = child
				break
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
}

// positionAt converts a byte offset to 1-based line/column coordinates.
func positionAt(u *Unit, offset int) (line, column int) {
	line = u.lineAt(offset)
	column = offset - u.lineOffsets[line-1] + 1
	return line, column
}

// scopePath walks parent nodes and joins the enclosing namespace and
// class/struct names with "::". An out-of-class method definition
// contributes the qualifier of its declarator.
func scopePath(u *Unit, node *sitter.Node) string {
	var segments []string
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case "namespace_definition", "class_specifier", "struct_specifier":
			if name := n.ChildByFieldName("name"); name != nil {
				segments = append(segments, u.text(name))
			}
		case "function_definition":
			if qualifier := definitionQualifier(u, n); qualifier != "" {
				segments = append(segments, qualifier)
			}
		}
	}
	// Parents were collected innermost first.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "::")
}

// definitionQualifier extracts the class path from a qualified method
// definition like void App::greet() { ... }.
func definitionQualifier(u *Unit, def *sitter.Node) string {
	decl := def.ChildByFieldName("declarator")
	for decl != nil && decl.Kind() == "function_declarator" {
		decl = decl.ChildByFieldName("declarator")
	}
	if decl == nil || decl.Kind() != "qualified_identifier" {
		return ""
	}
	full := u.text(decl)
	if idx := strings.LastIndex(full, "::"); idx >= 0 {
		return full[:idx]
	}
	return ""
}
