package statestore

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// entry holds a pending state token with its expiration time.
type entry struct {
	expiresAt time.Time
	state     string
}

// isExpired reports whether the entry has passed its expiration time.
func (e *entry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// Memory is an in-memory state store for single-process deployments.
//
// It uses a hash map for O(1) lookups and a doubly-linked list ordered by
// issue time. Tokens all carry the same TTL in practice, so the list is
// also expiry-ordered: the janitor sweeps from the front and stops at the
// first unexpired token, and overflow eviction drops the oldest pending
// token first.
type Memory struct {
	states *list.List
	items  map[string]*list.Element
	opts   *memoryOptions
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewMemory creates a new in-memory state store.
//
// Example:
//
//	s := statestore.NewMemory(
//	    statestore.WithDefaultTTL(10 * time.Minute),
//	    statestore.WithMaxPending(10000),
//	)
//	defer s.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		states: list.New(),
		items:  make(map[string]*list.Element),
		opts:   o,
		done:   make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Issue records a state token as pending.
// When the store is at capacity, the oldest pending token is dropped.
func (m *Memory) Issue(_ context.Context, state string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl <= 0 {
		ttl = m.opts.defaultTTL
	}
	expiresAt := time.Now().Add(ttl)

	// Re-issuing the same token just extends it.
	if elem, ok := m.items[state]; ok {
		elem.Value.(*entry).expiresAt = expiresAt
		m.states.MoveToBack(elem)
		return nil
	}

	if m.opts.maxPending > 0 && len(m.items) >= m.opts.maxPending {
		m.evictOldest()
	}

	e := &entry{state: state, expiresAt: expiresAt}
	m.items[state] = m.states.PushBack(e)

	return nil
}

// Consume removes a pending token and reports whether it was present and
// unexpired. Expired tokens are removed but report false.
func (m *Memory) Consume(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}

	elem, ok := m.items[state]
	if !ok {
		return false, nil
	}

	e := elem.Value.(*entry)
	m.removeElement(elem)

	return !e.isExpired(), nil
}

// Close stops the background janitor goroutine and marks the store as closed.
// Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	return nil
}

// janitor periodically removes expired tokens.
func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

// deleteExpired sweeps expired tokens from the front of the issue-ordered
// list, stopping at the first live one.
func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.states.Front(); elem != nil; {
		e := elem.Value.(*entry)
		if now.Before(e.expiresAt) {
			break
		}
		next := elem.Next()
		m.removeElement(elem)
		elem = next
	}
}

// evictOldest removes the oldest pending token.
// Caller must hold the mutex.
func (m *Memory) evictOldest() {
	if elem := m.states.Front(); elem != nil {
		m.removeElement(elem)
	}
}

// removeElement removes a specific element.
// Caller must hold the mutex.
func (m *Memory) removeElement(elem *list.Element) {
	m.states.Remove(elem)
	delete(m.items, elem.Value.(*entry).state)
}

var _ Store = (*Memory)(nil)
