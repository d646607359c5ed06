// Package finalize owns the last extraction stage: re-validation, duplicate
// suppression and emission of the final catalog entries. It is the only
// place records are dropped.
package finalize

import (
	"github.com/rs/zerolog/log"

	"trscan/internal/catalog"
	"trscan/internal/placeholder"
	"trscan/internal/record"
	"trscan/internal/textutil"
)

// DropReason explains why a candidate did not reach the catalog.
type DropReason string

const (
	DropInvalid           DropReason = "invalid"
	DropUnresolvedContext DropReason = "unresolved-context"
	DropDuplicate         DropReason = "duplicate"
)

// Hook observes dropped candidates. Diagnostic only; it cannot veto.
type Hook func(c record.Candidate, reason DropReason)

// Finalizer turns a corrected snapshot into catalog entries.
type Finalizer struct {
	// OnDrop, when set, is invoked for every dropped candidate.
	OnDrop Hook
	// Locations, when set, resolves precise locations for diagnostics.
	// Resolution is lazy: only dropped candidates are ever resolved.
	Locations record.LocationResolver
}

// Run consumes the corrected partition snapshot single-threaded and emits
// the surviving entries in snapshot order. Running it twice over the same
// snapshot yields the same set.
func (f *Finalizer) Run(store *record.Store) []catalog.Entry {
	corrected := store.Snapshot(record.PartitionCorrected)

	seen := make(map[uint64]struct{}, len(corrected))
	entries := make([]catalog.Entry, 0, len(corrected))

	for _, c := range corrected {
		if !c.Valid() {
			f.drop(c, DropInvalid)
			continue
		}
		if c.ContextResolved == "" {
			f.drop(c, DropUnresolvedContext)
			continue
		}
		key := c.DuplicateKey()
		if _, dup := seen[key]; dup {
			f.drop(c, DropDuplicate)
			continue
		}
		seen[key] = struct{}{}
		if c.PluralText != "" && c.SourceText != "" && !placeholder.HasCountMarker(c.SourceText) {
			log.Warn().
				Str("file", c.File).
				Int("line", c.Line).
				Str("text", textutil.Truncate(c.SourceText, 30)).
				Msg("Plural message has no %n marker")
		}
		entries = append(entries, entryFor(c))
	}
	return entries
}

func (f *Finalizer) drop(c record.Candidate, reason DropReason) {
	if f.OnDrop == nil {
		return
	}
	if f.Locations != nil {
		if loc, err := c.ResolvedLocation(f.Locations); err == nil {
			log.Debug().
				Str("file", loc.File).
				Int("offset", loc.Offset).
				Str("reason", string(reason)).
				Str("text", textutil.Truncate(c.SourceText, 30)).
				Msg("Dropping candidate")
		}
	}
	f.OnDrop(c, reason)
}

func entryFor(c record.Candidate) catalog.Entry {
	return catalog.Entry{
		Kind:         c.Kind.String(),
		Context:      c.ContextResolved,
		Source:       c.SourceText,
		Plural:       c.PluralText,
		ID:           c.ID,
		IDMetadata:   c.IDMetadata,
		Comment:      c.Comment,
		ExtraComment: c.ExtraComment,
		Metadata:     c.Metadata,
		Placeholders: placeholder.Scan(c.SourceText),
		File:         c.File,
		Line:         c.Line,
		Column:       c.Column,
	}
}
