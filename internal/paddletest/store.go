package paddletest

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Store is a thread-safe in-memory collection of one entity type, listed in
// insertion order.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	prefix  string
	counter atomic.Uint64
}

// NewStore creates a store whose generated IDs start with prefix ("ctm", "pri").
func NewStore[T any](prefix string) *Store[T] {
	return &Store[T]{
		items:  make(map[string]T),
		prefix: prefix,
	}
}

// NextID returns a new ID of the form "{prefix}_{counter}", e.g. "ctm_000001".
func (s *Store[T]) NextID() string {
	n := s.counter.Add(1)
	return fmt.Sprintf("%s_%06d", s.prefix, n)
}

// Set stores item under id. Overwriting keeps the original position.
func (s *Store[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

// Get returns the item stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	return item, ok
}

// Update applies fn to the item stored under id and stores the result.
func (s *Store[T]) Update(id string, fn func(T) T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}

	item = fn(item)
	s.items[id] = item

	return item, true
}

// List returns the items matching match, in insertion order. A nil match
// returns every item.
func (s *Store[T]) List(match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if item := s.items[id]; match == nil || match(item) {
			out = append(out, item)
		}
	}

	return out
}

// Count returns the number of stored items.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Reset removes every item and restarts ID generation.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]T)
	s.order = nil
	s.counter.Store(0)
}

// Page is one slice of a listing.
type Page[T any] struct {
	Data    []T
	HasMore bool
	// Cursor is the ID of the last item on the page.
	Cursor string
	Total  int
}

// Paginate returns the items matching match that follow the item with ID
// after, at most limit of them. An empty after starts at the beginning.
func (s *Store[T]) Paginate(match func(T) bool, id func(T) string, after string, limit int) Page[T] {
	return paginate(s.List(match), id, after, limit)
}

func paginate[T any](items []T, id func(T) string, after string, limit int) Page[T] {
	start := 0
	if after != "" {
		for i, item := range items {
			if id(item) == after {
				start = i + 1
				break
			}
		}
	}

	if limit <= 0 {
		limit = len(items)
	}

	end := min(start+limit, len(items))

	page := Page[T]{
		Data:    items[start:end],
		HasMore: end < len(items),
		Total:   len(items),
	}
	if end > start {
		page.Cursor = id(items[end-1])
	}

	return page
}
