// Package extract drives one parse session: discover nothing, parse the
// given translation units in parallel, collect candidates into the shared
// store, then run the single-threaded correction and finalization passes.
package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"trscan/internal/catalog"
	"trscan/internal/correct"
	"trscan/internal/finalize"
	"trscan/internal/frontend"
	"trscan/internal/record"
	"trscan/internal/textutil"
	"trscan/internal/tr"
	"trscan/internal/worker"
)

// Options configures a parse session.
type Options struct {
	// Workers bounds parser parallelism; one translation unit per task.
	Workers int
	// Aliases extends the builtin translation function table.
	Aliases map[string]tr.Function
	// Policy sets the quote requirements for structured comments.
	Policy frontend.AnnotationPolicy
	// OnDrop observes candidates dropped at finalization.
	OnDrop finalize.Hook
}

// Stats summarizes one session.
type Stats struct {
	Units      int
	Skipped    int
	Failed     int
	Candidates int
	Entries    int
}

type unitResult struct {
	skipped bool
}

// Run extracts catalog entries from the given translation units. A unit
// that fails to read or parse contributes nothing and does not abort the
// session.
func Run(ctx context.Context, paths []string, opts Options) ([]catalog.Entry, Stats, error) {
	resolver := tr.NewResolver(opts.Aliases)
	store := record.NewStore()
	hints := textutil.NewHintMatcher(resolver.Names())

	treeWalker := frontend.NewTreeWalker(resolver, store, opts.Policy)
	preprocWalker := frontend.NewPreprocessorWalker(resolver, store)

	pool := worker.NewPool(opts.Workers, func(ctx context.Context, path string) (unitResult, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return unitResult{}, fmt.Errorf("read unit: %w", err)
		}
		if !hints.Match(content) {
			return unitResult{skipped: true}, nil
		}

		unit, err := frontend.ParseUnit(path, content)
		if err != nil {
			return unitResult{}, fmt.Errorf("parse unit: %w", err)
		}
		defer unit.Close()

		// The two producers of one unit run concurrently; the store's
		// per-partition locks are the only shared state between them.
		var g errgroup.Group
		g.Go(func() error { return treeWalker.Walk(unit) })
		g.Go(func() error { return preprocWalker.Walk(unit) })
		if err := g.Wait(); err != nil {
			return unitResult{}, fmt.Errorf("walk unit: %w", err)
		}
		return unitResult{}, nil
	})

	// Run is the join barrier: every producer has finished when it returns.
	outcomes := pool.Run(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{
		Units:  len(paths),
		Failed: worker.FailureCount(outcomes),
	}
	for _, o := range outcomes {
		if o.Result.skipped {
			stats.Skipped++
		}
	}
	stats.Candidates = store.Len(record.PartitionAST) +
		store.Len(record.PartitionPreprocessor) +
		store.Len(record.PartitionDeclaredContext) +
		store.Len(record.PartitionAnnotationContext)

	if err := correct.Run(store); err != nil {
		return nil, stats, fmt.Errorf("correct contexts: %w", err)
	}

	finalizer := &finalize.Finalizer{
		OnDrop:    opts.OnDrop,
		Locations: frontend.NewFileLocations(),
	}
	entries := finalizer.Run(store)
	stats.Entries = len(entries)

	log.Info().
		Int("units", stats.Units).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("candidates", stats.Candidates).
		Int("entries", stats.Entries).
		Msg("Extraction session complete")

	return entries, stats, nil
}
