package tm

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const listKnownHashes = `SELECT hash FROM extracted_messages`

// PushCache tracks which message hashes the translation memory already
// holds, so a repeat push of an unchanged catalog skips the round trips.
type PushCache struct {
	pool *pgxpool.Pool

	mu    sync.RWMutex
	known map[string]struct{}
}

// NewPushCache creates an empty cache over an existing connection pool.
func NewPushCache(pool *pgxpool.Pool) *PushCache {
	return &PushCache{
		pool:  pool,
		known: make(map[string]struct{}),
	}
}

// Preload fills the cache with every hash the memory currently holds.
func (c *PushCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, listKnownHashes)
	if err != nil {
		return fmt.Errorf("preload push cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return fmt.Errorf("scan known hash: %w", err)
		}
		c.known[hash] = struct{}{}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload push cache: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded translation memory hashes")
	return nil
}

// Has reports whether the memory already holds the hash.
func (c *PushCache) Has(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[hash]
	return ok
}

// Mark records a hash as stored.
func (c *PushCache) Mark(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[hash] = struct{}{}
}
