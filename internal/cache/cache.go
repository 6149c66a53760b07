// Package cache is a TTL cache with a stale-read escape hatch, persisted
// through a kv.Store. Every external-data read goes through it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/pkg/kv"
)

const (
	// DefaultGrace is how long an expired entry survives before ClearOldEntries removes it.
	DefaultGrace = 24 * time.Hour

	// DefaultCompletedTTL is how long a finished game stays marked complete.
	DefaultCompletedTTL = 24 * time.Hour

	keyRoot           = "cache:"
	completedGamesKey = "completed_games"
)

// entry is the persisted envelope. It never leaves this package.
type entry struct {
	Value     json.RawMessage `json:"value"`
	WrittenAt time.Time       `json:"writtenAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Config holds cache configuration.
type Config struct {
	// Prefix namespaces keys as cache:<prefix>:<key>.
	Prefix       string
	Grace        time.Duration
	CompletedTTL time.Duration
	Now          func() time.Time
}

// Cache stores JSON values with an expiry.
type Cache struct {
	store        kv.Store
	prefix       string
	grace        time.Duration
	completedTTL time.Duration
	now          func() time.Time
}

// New creates a Cache over store.
func New(store kv.Store, cfg *Config) *Cache {
	c := &Cache{
		store:        store,
		prefix:       "default",
		grace:        DefaultGrace,
		completedTTL: DefaultCompletedTTL,
		now:          time.Now,
	}
	if cfg != nil {
		if cfg.Prefix != "" {
			c.prefix = cfg.Prefix
		}
		if cfg.Grace > 0 {
			c.grace = cfg.Grace
		}
		if cfg.CompletedTTL > 0 {
			c.completedTTL = cfg.CompletedTTL
		}
		if cfg.Now != nil {
			c.now = cfg.Now
		}
	}
	return c
}

func (c *Cache) fullKey(key string) string {
	return keyRoot + c.prefix + ":" + key
}

// Set stores value under key until now+ttl. A failed write triggers an
// eviction sweep and one retry; it is logged, never returned.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value not serializable")
		return
	}

	now := c.now()
	payload, err := json.Marshal(entry{Value: raw, WrittenAt: now, ExpiresAt: now.Add(ttl)})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache entry not serializable")
		return
	}

	if err := c.store.Set(ctx, c.fullKey(key), payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed, sweeping old entries")
		c.ClearOldEntries(ctx)
		if err := c.store.Set(ctx, c.fullKey(key), payload); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache write failed after sweep")
		}
	}
}

// SetStale stores value already expired, so only GetStale returns it.
// It keeps a fallback copy alive after Get dropped the original.
func (c *Cache) SetStale(ctx context.Context, key string, value any) {
	c.Set(ctx, key, value, -time.Nanosecond)
}

// load reads and decodes the envelope. ok is false when absent or corrupt.
func (c *Cache) load(ctx context.Context, key string) (entry, bool, bool) {
	var e entry
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return e, false, false
	}
	if err := json.Unmarshal(raw, &e); err != nil || len(e.Value) == 0 {
		return e, false, true
	}
	return e, true, false
}

// Get decodes the live value for key into dst. Expired and corrupt
// entries are removed and reported as a miss. Callers that want a
// degraded-mode fallback read GetStale before Get.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	full := c.fullKey(key)
	e, ok, corrupt := c.load(ctx, full)
	if corrupt {
		c.remove(ctx, full)
		return false
	}
	if !ok {
		return false
	}
	if c.now().After(e.ExpiresAt) {
		c.remove(ctx, full)
		return false
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		c.remove(ctx, full)
		return false
	}
	return true
}

// GetStale decodes the value for key into dst regardless of expiry.
func (c *Cache) GetStale(ctx context.Context, key string, dst any) bool {
	e, ok, _ := c.load(ctx, c.fullKey(key))
	if !ok {
		return false
	}
	return json.Unmarshal(e.Value, dst) == nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.remove(ctx, c.fullKey(key))
}

func (c *Cache) remove(ctx context.Context, fullKey string) {
	if err := c.store.Delete(ctx, fullKey); err != nil {
		log.Warn().Err(err).Str("key", fullKey).Msg("Cache delete failed")
	}
}

// ClearOldEntries removes entries expired for longer than the grace window
// and any corrupt entries. It returns the number removed.
func (c *Cache) ClearOldEntries(ctx context.Context) int {
	keys, err := c.store.Keys(ctx, keyRoot+c.prefix+":")
	if err != nil {
		log.Warn().Err(err).Msg("Cache sweep could not list keys")
		return 0
	}

	cutoff := c.now().Add(-c.grace)
	removed := 0
	for _, k := range keys {
		e, ok, corrupt := c.load(ctx, k)
		if corrupt || (ok && e.ExpiresAt.Before(cutoff)) {
			c.remove(ctx, k)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Str("prefix", c.prefix).Msg("Cache sweep completed")
	}
	return removed
}

// MarkGamesComplete records that games reached a final state.
func (c *Cache) MarkGamesComplete(ctx context.Context, gameIDs ...string) {
	if len(gameIDs) == 0 {
		return
	}
	completed := make(map[string]time.Time)
	c.Get(ctx, completedGamesKey, &completed)
	now := c.now()
	for _, id := range gameIDs {
		if _, ok := completed[id]; !ok {
			completed[id] = now
		}
	}
	c.Set(ctx, completedGamesKey, completed, c.completedTTL)
}

// IsGameComplete reports whether every one of gameIDs was marked complete.
// It is false for no ids.
func (c *Cache) IsGameComplete(ctx context.Context, gameIDs ...string) bool {
	if len(gameIDs) == 0 {
		return false
	}
	completed := make(map[string]time.Time)
	if !c.Get(ctx, completedGamesKey, &completed) {
		return false
	}
	for _, id := range gameIDs {
		if _, ok := completed[id]; !ok {
			return false
		}
	}
	return true
}
