package extractor

import (
	"testing"
	"time"
)

func TestPageCacheGetSet(t *testing.T) {
	cache := newPageCache(2)
	if cache == nil {
		t.Fatalf("expected cache instance")
	}

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", Page{Text: "value"}, now.Add(time.Hour), now)

	page, ok := cache.get("key", now)
	if !ok {
		t.Fatalf("expected cached page to be present")
	}

	if page.Text != "value" {
		t.Fatalf("unexpected page text: %q", page.Text)
	}
}

func TestPageCacheExpiresEntries(t *testing.T) {
	cache := newPageCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", Page{Text: "value"}, now.Add(time.Minute), now)

	if _, ok := cache.get("key", now.Add(2*time.Minute)); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if len(cache.entries) != 0 {
		t.Fatalf("expected expired cache entry to be removed")
	}
}

func TestPageCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newPageCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)

	cache.set("a", Page{Text: "page-a"}, expiresAt, now)
	cache.set("b", Page{Text: "page-b"}, expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	cache.set("c", Page{Text: "page-c"}, expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok := cache.get("b", now); ok {
		t.Fatalf("expected entry b to be evicted")
	}

	if _, ok := cache.get("c", now); !ok {
		t.Fatalf("expected entry c to be cached")
	}
}

func TestPageCacheIgnoresEmptyPages(t *testing.T) {
	cache := newPageCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", Page{}, now.Add(time.Hour), now)

	if len(cache.entries) != 0 {
		t.Fatalf("expected empty page to be skipped")
	}
}

func TestNilPageCache(t *testing.T) {
	var cache *pageCache
	now := time.Now()

	cache.set("key", Page{Text: "value"}, now.Add(time.Hour), now)
	if _, ok := cache.get("key", now); ok {
		t.Fatalf("expected nil cache to miss")
	}
}
