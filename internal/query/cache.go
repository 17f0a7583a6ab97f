package query

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/five82/comanda/internal/clock"
)

const (
	defaultStaleTime = 30 * time.Second
	defaultGCTime    = 5 * time.Minute
	minSweepInterval = time.Second
)

// Fetcher loads the value for one key.
type Fetcher func(ctx context.Context) (any, error)

// Cache holds server data keyed by Key. It is safe for concurrent use and is
// meant to be constructed once and passed to every view that reads from it.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flight  singleflight.Group
	nextSub uint64

	ctx       context.Context
	clock     clock.Clock
	staleTime time.Duration
	gcTime    time.Duration
	logger    *log.Logger
	wg        sync.WaitGroup
}

type entry struct {
	key      Key
	fetcher  Fetcher
	status   Status
	data     any
	hasData  bool
	err      error
	errAt    time.Time
	updated  time.Time
	stale    bool
	fetching bool
	gen      uint64
	subs     map[uint64]*Subscription
	idleAt   time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock used for staleness and GC.
func WithClock(c clock.Clock) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.clock = c
		}
	}
}

// WithStaleTime sets how long a successful result is served without a
// refetch on mount. Zero means always refetch on mount.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithGCTime sets how long an unobserved entry is kept.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.gcTime = d
		}
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContext sets the context handed to background fetches.
func WithContext(ctx context.Context) Option {
	return func(c *Cache) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// New constructs a Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[Key]*entry),
		ctx:       context.Background(),
		clock:     clock.Real(),
		staleTime: defaultStaleTime,
		gcTime:    defaultGCTime,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Subscribe mounts an observer on key. The entry is fetched when it has no
// data, was invalidated, or is older than the stale time; otherwise the cached
// value is served without a request. The latest fetcher passed for a key is
// the one used by later refetches.
func (c *Cache) Subscribe(key Key, fetcher Fetcher) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if fetcher != nil {
		e.fetcher = fetcher
	}
	c.nextSub++
	sub := &Subscription{id: c.nextSub, key: key, cache: c, updates: make(chan struct{}, 1)}
	e.subs[sub.id] = sub

	if !e.fetching && c.needsFetchLocked(e) {
		c.startFetchLocked(e)
	}
	return sub
}

// Peek returns the current result for key without mounting or fetching.
func (c *Cache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Result{}
	}
	return e.resultLocked()
}

// Fetch returns fresh data for key, loading it if needed, and blocks until the
// value is available. Concurrent callers and mounted subscribers share a
// single request.
func (c *Cache) Fetch(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if fetcher != nil {
		e.fetcher = fetcher
	}
	if e.hasData && !c.needsFetchLocked(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	fn := e.fetcher
	if fn == nil {
		c.mu.Unlock()
		return nil, errNoFetcher(key)
	}
	gen := e.gen
	if !e.fetching {
		gen = c.beginFetchLocked(e)
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do(key.String(), func() (any, error) { return fn(ctx) })
	c.complete(key, gen, v, err)
	return v, err
}

// Invalidate marks every entry matching prefix as stale. Entries with mounted
// subscribers refetch in the background; the rest wait for their next mount.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !key.Matches(prefix) {
			continue
		}
		e.stale = true
		c.flight.Forget(key.String())
		if len(e.subs) > 0 {
			c.startFetchLocked(e)
		}
	}
}

// SetData writes a value computed from the current one, as used by
// optimistic updates. update receives nil when the entry has no data. A fetch
// in flight for key is superseded: its response predates the write and is
// dropped when it lands.
func (c *Cache) SetData(key Key, update func(old any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	if e.fetching {
		e.gen++
		e.fetching = false
		c.flight.Forget(key.String())
	}
	var old any
	if e.hasData {
		old = e.data
	}
	e.data = update(old)
	e.hasData = true
	e.status = StatusSuccess
	e.err = nil
	e.updated = c.clock.Now()
	c.notifyLocked(e)
}

// Sweep drops entries that have had no subscribers for at least the GC time.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	removed := 0
	for key, e := range c.entries {
		if len(e.subs) > 0 || e.fetching {
			continue
		}
		if now.Sub(e.idleAt) >= c.gcTime {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("swept cache entries", "removed", removed)
	}
	return removed
}

// Run sweeps on a ticker until ctx is cancelled.
func (c *Cache) Run(ctx context.Context) error {
	interval := c.gcTime / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Len returns the number of entries held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until every background fetch has completed.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, subs: make(map[uint64]*Subscription), idleAt: c.clock.Now()}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) needsFetchLocked(e *entry) bool {
	if !e.hasData || e.stale {
		return true
	}
	return c.clock.Now().Sub(e.updated) >= c.staleTime
}

// beginFetchLocked starts tracking a new request and returns its generation.
func (c *Cache) beginFetchLocked(e *entry) uint64 {
	e.gen++
	e.fetching = true
	if !e.hasData {
		e.status = StatusLoading
	}
	c.notifyLocked(e)
	return e.gen
}

// startFetchLocked begins a background fetch that supersedes any in flight.
func (c *Cache) startFetchLocked(e *entry) {
	fn := e.fetcher
	if fn == nil {
		return
	}
	gen := c.beginFetchLocked(e)
	key := e.key
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		v, err, _ := c.flight.Do(key.String(), func() (any, error) { return fn(c.ctx) })
		c.complete(key, gen, v, err)
	}()
}

// complete applies a fetch result if it belongs to the newest tracked request.
func (c *Cache) complete(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || gen != e.gen || !e.fetching {
		return
	}
	e.fetching = false
	now := c.clock.Now()
	if err != nil {
		e.status = StatusError
		e.err = err
		e.errAt = now
		c.logger.Warn("query failed", "key", key.String(), "err", err)
	} else {
		e.status = StatusSuccess
		e.data = v
		e.hasData = true
		e.err = nil
		e.updated = now
		e.stale = false
	}
	if len(e.subs) == 0 {
		e.idleAt = now
	}
	c.notifyLocked(e)
}

func (c *Cache) notifyLocked(e *entry) {
	for _, sub := range e.subs {
		select {
		case sub.updates <- struct{}{}:
		default:
		}
	}
}

func (c *Cache) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sub.key]
	if !ok {
		return
	}
	if _, mounted := e.subs[sub.id]; !mounted {
		return
	}
	delete(e.subs, sub.id)
	close(sub.updates)
	if len(e.subs) == 0 {
		e.idleAt = c.clock.Now()
	}
}

func (c *Cache) refetch(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.flight.Forget(key.String())
		c.startFetchLocked(e)
	}
}

func (e *entry) resultLocked() Result {
	return Result{
		Status:    e.status,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		ErrAt:     e.errAt,
		UpdatedAt: e.updated,
		Fetching:  e.fetching,
		Stale:     e.stale,
	}
}
