package cache

import (
	"container/list"
	"sync"
)

// LRUCache is a size bounded cache safe for concurrent use. Size counts
// entries, not bytes.
type LRUCache[V any] struct {
	mu        sync.Mutex
	size      int
	evictList *list.List
	items     map[string]*list.Element
}

type entry[V any] struct {
	key   string
	value V
}

func NewLRUCache[V any](size int) *LRUCache[V] {
	if size < 1 {
		size = 1
	}
	return &LRUCache[V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

func (c *LRUCache[V]) Get(key string) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*entry[V]).value, true
	}
	return
}

func (c *LRUCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		ele.Value.(*entry[V]).value = value
		return
	}

	ele := c.evictList.PushFront(&entry[V]{key, value})
	c.items[key] = ele

	if c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

// Remove drops key if present.
func (c *LRUCache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.removeElement(ele)
	}
}

// Purge empties the cache.
func (c *LRUCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictList.Init()
	c.items = make(map[string]*list.Element)
}

func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *LRUCache[V]) removeOldest() {
	ele := c.evictList.Back()
	if ele != nil {
		c.removeElement(ele)
	}
}

func (c *LRUCache[V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[V])
	delete(c.items, kv.key)
}
