package linecache

import (
	"container/list"
	"sync"
)

// Store is a thread-safe line store bounded by total byte weight with LRU
// eviction. The weight of an entry is its length in bytes, floored at 1.
type Store struct {
	mu       sync.Mutex
	entries  map[int]*list.Element
	order    *list.List // front = most recently used
	weight   int64
	capacity int64
}

type storeEntry struct {
	key    int
	value  string
	weight int64
}

// NewStore creates a store holding at most capacity bytes of line content.
func NewStore(capacity int64) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		entries:  make(map[int]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

func weigh(value string) int64 {
	return max(int64(len(value)), 1)
}

// Get returns the value for key and marks it most recently used.
func (s *Store) Get(key int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return "", false
	}
	s.order.MoveToFront(el)
	return el.Value.(*storeEntry).value, true
}

// Peek returns the value for key without touching recency.
func (s *Store) Peek(key int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return "", false
	}
	return el.Value.(*storeEntry).value, true
}

// Insert stores value under key, replacing any previous value, then evicts
// least recently used entries until the total weight fits the capacity.
func (s *Store) Insert(key int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := weigh(value)
	if el, ok := s.entries[key]; ok {
		e := el.Value.(*storeEntry)
		s.weight += w - e.weight
		e.value, e.weight = value, w
		s.order.MoveToFront(el)
	} else {
		s.entries[key] = s.order.PushFront(&storeEntry{key: key, value: value, weight: w})
		s.weight += w
	}

	s.evictLocked()
}

// Delete removes key from the store.
func (s *Store) Delete(key int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.removeLocked(el)
	}
}

// Weight returns the total weight of all entries.
func (s *Store) Weight() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weight
}

// Capacity returns the weight budget.
func (s *Store) Capacity() int64 { return s.capacity }

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLocked removes entries from the LRU end while over capacity.
// Must be called with lock held.
func (s *Store) evictLocked() {
	for s.weight > s.capacity {
		el := s.order.Back()
		if el == nil {
			return
		}
		s.removeLocked(el)
	}
}

func (s *Store) removeLocked(el *list.Element) {
	e := s.order.Remove(el).(*storeEntry)
	delete(s.entries, e.key)
	s.weight -= e.weight
}
