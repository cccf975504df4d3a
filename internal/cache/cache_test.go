package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestPutUpdatesExistingEntryWithoutGrowingSize(t *testing.T) {
	c := NewLRUCache[string](2)

	c.Put("alpha", "first")
	c.Put("beta", "value")
	c.Put("alpha", "second")

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	if value, hit := c.Get("alpha"); !hit || value != "second" {
		t.Fatalf("expected updated alpha, hit=%v value=%q", hit, value)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	if _, hit := c.Get("a"); !hit {
		t.Fatal("expected a to be cached")
	}
	c.Put("c", 3)

	if _, hit := c.Get("b"); hit {
		t.Fatal("expected b to be evicted")
	}
	if _, hit := c.Get("a"); !hit {
		t.Fatal("expected a to survive eviction")
	}
}

func TestRemoveAndPurge(t *testing.T) {
	c := NewLRUCache[int](4)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Remove("a")
	if _, hit := c.Get("a"); hit {
		t.Fatal("expected a to be removed")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int](16)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%8)
			c.Put(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Fatalf("cache grew past its bound: %d", c.Len())
	}
}
