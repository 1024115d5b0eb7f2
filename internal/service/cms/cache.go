package cms

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dmaguire/folio/backend/pkg/model/profile"
)

// SnapshotSource fetches a fresh profile snapshot from the CMS.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*profile.Snapshot, error)
}

// SnapshotCache serves a profile snapshot with lazy TTL refresh. The chat
// handlers read it on every request; only an expired read triggers a fetch.
type SnapshotCache struct {
	source SnapshotSource
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	snapshot  *profile.Snapshot
	fetchedAt time.Time
}

// NewSnapshotCache wraps source with a TTL cache.
func NewSnapshotCache(source SnapshotSource, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Snapshot returns the cached snapshot, refreshing it when the TTL has
// expired. A failed refresh falls back to the previous snapshot so a CMS
// outage degrades prompts instead of breaking chat.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*profile.Snapshot, error) {
	c.mu.RLock()
	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		snap := c.snapshot
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	snap, err := c.source.FetchSnapshot(ctx)
	if err != nil {
		if c.snapshot != nil {
			log.Printf("[cms] snapshot refresh failed, serving stale copy: %v", err)
			return c.snapshot, nil
		}
		return nil, err
	}

	c.snapshot = snap
	c.fetchedAt = c.now()
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read refetches. The save
// path calls it after writing new profile data.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
