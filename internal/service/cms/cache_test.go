package cms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmaguire/folio/backend/pkg/model/profile"
)

type fakeSource struct {
	calls int
	err   error
}

func (f *fakeSource) FetchSnapshot(_ context.Context) (*profile.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &profile.Snapshot{
		Skills: []profile.Skill{{ID: "s1", Name: "Go"}},
	}, nil
}

func TestSnapshotCacheServesWithinTTL(t *testing.T) {
	source := &fakeSource{}
	cache := NewSnapshotCache(source, 5*time.Minute)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	ctx := context.Background()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	clock = clock.Add(4 * time.Minute)
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	if source.calls != 1 {
		t.Fatalf("expected 1 fetch within ttl, got %d", source.calls)
	}
}

func TestSnapshotCacheRefreshesAfterTTL(t *testing.T) {
	source := &fakeSource{}
	cache := NewSnapshotCache(source, 5*time.Minute)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	ctx := context.Background()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	clock = clock.Add(6 * time.Minute)
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	if source.calls != 2 {
		t.Fatalf("expected refetch after ttl, got %d fetches", source.calls)
	}
}

func TestSnapshotCacheServesStaleOnError(t *testing.T) {
	source := &fakeSource{}
	cache := NewSnapshotCache(source, 5*time.Minute)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	ctx := context.Background()
	first, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	source.err = errors.New("cms down")
	clock = clock.Add(10 * time.Minute)

	stale, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatalf("expected stale fallback, got err: %v", err)
	}
	if stale != first {
		t.Fatal("expected the previous snapshot to be served")
	}
}

func TestSnapshotCacheErrorWithoutFallback(t *testing.T) {
	source := &fakeSource{err: errors.New("cms down")}
	cache := NewSnapshotCache(source, 5*time.Minute)

	if _, err := cache.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error when no snapshot was ever fetched")
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	source := &fakeSource{}
	cache := NewSnapshotCache(source, 5*time.Minute)

	ctx := context.Background()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	cache.Invalidate()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	if source.calls != 2 {
		t.Fatalf("expected refetch after Invalidate, got %d fetches", source.calls)
	}
}
