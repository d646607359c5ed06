// Package tm persists finalized catalog entries into a PostgreSQL-backed
// translation memory, so later runs and downstream tooling can see what
// was extracted. Persistence is optional and entirely outside the
// extraction core.
package tm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"trscan/internal/catalog"
	"trscan/internal/textutil"
	"trscan/internal/worker"
)

const schema = `
CREATE TABLE IF NOT EXISTS extracted_messages (
	hash         TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	context      TEXT NOT NULL,
	source_text  TEXT NOT NULL DEFAULT '',
	plural_text  TEXT NOT NULL DEFAULT '',
	message_id   TEXT NOT NULL DEFAULT '',
	comment      TEXT NOT NULL DEFAULT '',
	file         TEXT NOT NULL,
	line         INTEGER NOT NULL,
	col          INTEGER NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertMessage = `
INSERT INTO extracted_messages (hash, kind, context, source_text, plural_text, message_id, comment, file, line, col, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
ON CONFLICT (hash) DO UPDATE SET
	file = EXCLUDED.file,
	line = EXCLUDED.line,
	col = EXCLUDED.col,
	comment = EXCLUDED.comment,
	updated_at = now()`

// Store writes catalog entries into the translation memory.
type Store struct {
	pool  *pgxpool.Pool
	cache *PushCache
}

// NewStore creates a store over an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithCache makes pushes incremental: messages whose hash the cache knows
// are not written again. A skipped message keeps its previously recorded
// location, so use this only when churn matters more than freshness.
func (s *Store) WithCache(cache *PushCache) *Store {
	s.cache = cache
	return s
}

// EnsureSchema creates the translation memory table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure translation memory schema: %w", err)
	}
	return nil
}

// entryHash keys an entry by what identifies the message, not where it was
// found, so a message that merely moved updates in place.
func entryHash(e catalog.Entry) string {
	return textutil.Hash(e.Kind + "\x00" + e.Context + "\x00" + e.Source + "\x00" + e.Plural + "\x00" + e.ID)
}

// Push upserts all entries in batches. Returns the number stored.
func (s *Store) Push(ctx context.Context, entries []catalog.Entry, batchSize int) (int, error) {
	stored, skipped := 0, 0
	for _, batch := range worker.Batch(entries, batchSize) {
		for _, e := range batch {
			hash := entryHash(e)
			if s.cache != nil && s.cache.Has(hash) {
				skipped++
				continue
			}
			_, err := s.pool.Exec(ctx, upsertMessage,
				hash, e.Kind, e.Context, e.Source, e.Plural, e.ID, e.Comment,
				e.File, e.Line, e.Column)
			if err != nil {
				return stored, fmt.Errorf("upsert message: %w", err)
			}
			if s.cache != nil {
				s.cache.Mark(hash)
			}
			stored++
		}
	}

	log.Info().Int("stored", stored).Int("skipped", skipped).Msg("Pushed catalog to translation memory")
	return stored, nil
}
