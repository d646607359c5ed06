// Package record holds the candidate data model for one potential
// translation call site and the concurrent partitioned store the walkers
// append into.
package record

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"trscan/internal/tr"
)

// Location is a precise source position resolved from file/line/column.
type Location struct {
	File   string
	Line   int
	Column int
	Offset int // byte offset into the translation unit
}

// LocationResolver derives a precise location from file/line/column
// coordinates. The front end owns the implementation.
type LocationResolver interface {
	ResolveLocation(file string, line, column int) (Location, error)
}

// Candidate captures everything statically knowable about one potential
// translation call or annotation. Producers never mutate a candidate after
// appending it to a store partition.
type Candidate struct {
	// Kind is the canonical call style, resolved from FunctionName.
	Kind tr.CallKind
	// RawCall is the literal source text of the call, kept for diagnostics.
	RawCall string
	// FunctionName is the identifier that was invoked.
	FunctionName string

	// ContextArg is the context supplied syntactically, if any.
	ContextArg string
	// ContextResolved is the context ultimately assigned; empty until the
	// corrector has run, and mandatory for any record entering the catalog.
	ContextResolved string
	// EnclosingScope is the fully qualified class/namespace path the call
	// appeared under, as captured by the walker.
	EnclosingScope string

	// SourceText is the translatable text after literal cleaning.
	SourceText string
	// PluralText holds the numerus argument for plural-aware calls.
	PluralText string
	// ID is the disambiguating identifier for id-based lookups.
	ID string

	// IDMetadata accumulates //% id meta comments.
	IDMetadata string
	// Metadata holds //~ key value annotation pairs.
	Metadata map[string]string
	// Comment is the translator-facing comment (second tr argument, or the
	// body of a TRANSLATOR annotation).
	Comment string
	// ExtraComment accumulates //: comments.
	ExtraComment string

	File   string
	Line   int // 1-based
	Column int // 1-based

	resolved    Location
	hasResolved bool
}

// NewCandidate returns a candidate with unset location coordinates, so a
// producer that never fills them in yields an invalid record rather than a
// plausible-looking (0, 0).
func NewCandidate(kind tr.CallKind, functionName string) Candidate {
	return Candidate{
		Kind:         kind,
		FunctionName: functionName,
		Line:         -1,
		Column:       -1,
	}
}

// Valid reports whether the candidate satisfies the mandatory-field rule
// for its kind. It depends only on the record's own fields.
func (c *Candidate) Valid() bool {
	switch c.Kind {
	case tr.KindDeclareContext:
		if c.ContextArg == "" {
			return false
		}
	case tr.KindPlain:
		if c.SourceText == "" {
			return false
		}
	case tr.KindContext:
		if c.ContextArg == "" || c.SourceText == "" {
			return false
		}
	case tr.KindID:
		if c.ID == "" {
			return false
		}
	case tr.KindAnnotation:
		if c.Comment == "" {
			return false
		}
	default:
		return false
	}
	return c.File != "" && c.Line >= 0 && c.Column >= 0
}

// DuplicateKey identifies records denoting the same call site. The tree
// walker and the preprocessor walker may each discover the same macro
// expansion; records sharing a key collapse to one catalog entry.
func (c *Candidate) DuplicateKey() uint64 {
	d := xxhash.New()
	for _, part := range []string{
		c.Kind.String(),
		c.ContextResolved,
		c.SourceText,
		c.PluralText,
		c.ID,
		c.File,
		strconv.Itoa(c.Line),
		strconv.Itoa(c.Column),
	} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// ResolvedLocation derives the precise location on first use and caches it.
// Only the single-threaded finalization stage may call this.
func (c *Candidate) ResolvedLocation(res LocationResolver) (Location, error) {
	if c.hasResolved {
		return c.resolved, nil
	}
	loc, err := res.ResolveLocation(c.File, c.Line, c.Column)
	if err != nil {
		return Location{}, err
	}
	c.resolved = loc
	c.hasResolved = true
	return loc, nil
}
