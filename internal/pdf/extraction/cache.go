package extraction

import "sync"

// Cache is a thread-safe LRU of parsed documents keyed by content hash
type Cache struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key   string
	value *Document
	prev  *cacheNode
	next  *cacheNode
}

// NewCache creates an LRU holding at most capacity documents
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 16
	}
	c := &Cache{
		capacity: capacity,
		items:    make(map[string]*cacheNode),
		head:     &cacheNode{},
		tail:     &cacheNode{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached document and marks it recently used
func (c *Cache) Get(key string) (*Document, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.unlink(node)
	c.pushFront(node)
	c.hits++
	return node.value, true
}

// Put stores a document, evicting the least recently used one when full
func (c *Cache) Put(key string, doc *Document) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = doc
		c.unlink(node)
		c.pushFront(node)
		return
	}

	node := &cacheNode{key: key, value: doc}
	c.pushFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.items, lru.key)
	}
}

// Len is the number of cached documents
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() (hits, misses int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hits, c.misses
}

func (c *Cache) unlink(n *cacheNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *Cache) pushFront(n *cacheNode) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}
