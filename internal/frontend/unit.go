// Package frontend binds the extraction core to the tree-sitter C++
// grammar. It owns parsing, the two candidate producers (tree walker and
// preprocessor walker) and precise location resolution.
package frontend

import (
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"trscan/internal/record"
)

// cppLanguage is shared by all parsers; the grammar itself is immutable.
var cppLanguage = sitter.NewLanguage(tree_sitter_cpp.Language())

// Unit is one parsed translation unit. A unit is owned by exactly one
// worker and never shared.
type Unit struct {
	Path    string
	Content []byte

	tree        *sitter.Tree
	lineOffsets []int // byte offset of each 1-based line start
}

// ParseUnit parses C/C++ source into a syntax tree. Close must be called
// when the unit is no longer needed.
func ParseUnit(path string, content []byte) (*Unit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(cppLanguage); err != nil {
		return nil, fmt.Errorf("set C++ grammar: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: front end produced no tree", path)
	}

	return &Unit{
		Path:        path,
		Content:     content,
		tree:        tree,
		lineOffsets: buildLineOffsets(content),
	}, nil
}

// Close releases the front-end tree.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// Root returns the root syntax node.
func (u *Unit) Root() *sitter.Node {
	return u.tree.RootNode()
}

// text returns the source text a node spans.
func (u *Unit) text(n *sitter.Node) string {
	return string(u.Content[n.StartByte():n.EndByte()])
}

func buildLineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// ResolveLocation derives a precise location handle from file/line/column.
// It implements record.LocationResolver for candidates of this unit.
func (u *Unit) ResolveLocation(file string, line, column int) (record.Location, error) {
	if file != u.Path {
		return record.Location{}, fmt.Errorf("location %s does not belong to unit %s", file, u.Path)
	}
	if line < 1 || line > len(u.lineOffsets) {
		return record.Location{}, fmt.Errorf("line %d out of range for %s", line, u.Path)
	}
	offset := u.lineOffsets[line-1] + column - 1
	if offset < 0 || offset > len(u.Content) {
		return record.Location{}, fmt.Errorf("column %d out of range at %s:%d", column, u.Path, line)
	}
	return record.Location{File: file, Line: line, Column: column, Offset: offset}, nil
}

// lineAt converts a byte offset to a 1-based line number.
func (u *Unit) lineAt(offset int) int {
	return sort.SearchInts(u.lineOffsets, offset+1)
}
