package admin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
)

// DefaultTTL bounds how stale a cached administrator set may get.
const DefaultTTL = 10 * time.Minute

type entry struct {
	ids       map[int64]struct{}
	fetchedAt time.Time
}

// Cache is a time-bounded cache of administrator-identity sets per chat.
// An empty result means "cannot verify": it is returned both when a chat
// genuinely has no admins and when the gateway call failed, so callers must
// skip destructive actions on it.
type Cache struct {
	gw  chat.Gateway
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[int64]entry
}

// NewCache creates a cache refreshing through gw. A non-positive ttl falls
// back to DefaultTTL.
func NewCache(gw chat.Gateway, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		gw:      gw,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]entry),
	}
}

// AdminIDs returns the administrator set for chatID, refreshing via the
// gateway when the cached copy is older than the TTL. Failed refreshes are
// not cached, so the next call retries.
func (c *Cache) AdminIDs(ctx context.Context, chatID int64) map[int64]struct{} {
	c.mu.Lock()
	cached, ok := c.entries[chatID]
	c.mu.Unlock()

	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.ids
	}

	admins, err := c.gw.GetAdministrators(ctx, chatID)
	if err != nil {
		slog.Warn("Failed to fetch chat administrators", "chat_id", chatID, "error", err)
		return map[int64]struct{}{}
	}

	ids := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		ids[id] = struct{}{}
	}

	c.mu.Lock()
	c.entries[chatID] = entry{ids: ids, fetchedAt: c.now()}
	c.mu.Unlock()

	return ids
}

// IsAdmin reports whether userID is in the cached administrator set.
// "Unknown" (empty set) counts as not an admin.
func (c *Cache) IsAdmin(ctx context.Context, chatID, userID int64) bool {
	_, ok := c.AdminIDs(ctx, chatID)[userID]
	return ok
}
