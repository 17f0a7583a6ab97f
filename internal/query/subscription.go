package query

import (
	"fmt"
	"sync"
)

// Subscription is one mounted observer of a cache key.
type Subscription struct {
	id      uint64
	key     Key
	cache   *Cache
	updates chan struct{}
	once    sync.Once
}

// Key returns the observed key.
func (s *Subscription) Key() Key { return s.key }

// Result returns the current state of the observed entry.
func (s *Subscription) Result() Result { return s.cache.Peek(s.key) }

// Updates signals when the entry changes. Signals coalesce; read Result after
// each one. The channel is closed by Close.
func (s *Subscription) Updates() <-chan struct{} { return s.updates }

// Refetch forces a new request for the observed key.
func (s *Subscription) Refetch() { s.cache.refetch(s.key) }

// Close unmounts the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.cache.unsubscribe(s) })
}

func errNoFetcher(key Key) error {
	return fmt.Errorf("no fetcher registered for %s", key)
}
