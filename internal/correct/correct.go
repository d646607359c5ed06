// Package correct resolves the true translation context for candidates
// whose context was declared separately from the call site.
package correct

import (
	"github.com/rs/zerolog/log"

	"trscan/internal/record"
	"trscan/internal/tr"
)

// Run consumes snapshots of the producer partitions once all producers have
// joined, and appends context-resolved copies to the corrected partition.
// Originals are never mutated.
//
// Resolution rules:
//   - an explicit context argument is copied through without lookup;
//   - a plain call under a scope with a declarative context mapping gets
//     that mapped context;
//   - a plain call with neither stays unresolved and is dropped later —
//     never silently attributed to a default.
func Run(store *record.Store) error {
	mapping := declaredMapping(store.Snapshot(record.PartitionDeclaredContext))

	for _, partition := range []record.Partition{
		record.PartitionAST,
		record.PartitionPreprocessor,
		record.PartitionAnnotationContext,
	} {
		for _, c := range store.Snapshot(partition) {
			corrected := c
			switch {
			case c.ContextArg != "":
				corrected.ContextResolved = c.ContextArg
			case c.Kind == tr.KindID:
				// Id-based lookups carry no context by construction; the id
				// itself disambiguates.
				corrected.ContextResolved = c.ID
			default:
				if declared, ok := mapping[c.EnclosingScope]; ok {
					corrected.ContextResolved = declared
				}
			}
			if err := store.Append(record.PartitionCorrected, corrected); err != nil {
				return err
			}
		}
	}
	return nil
}

// declaredMapping builds enclosing-scope identity → declared context.
// A scope declared twice keeps the first declaration; the repeat is logged.
func declaredMapping(declared []record.Candidate) map[string]string {
	mapping := make(map[string]string, len(declared))
	for _, c := range declared {
		if previous, ok := mapping[c.EnclosingScope]; ok {
			if previous != c.ContextArg {
				log.Warn().
					Str("scope", c.EnclosingScope).
					Str("kept", previous).
					Str("ignored", c.ContextArg).
					Msg("Conflicting declarative contexts for scope")
			}
			continue
		}
		mapping[c.EnclosingScope] = c.ContextArg
	}
	return mapping
}
