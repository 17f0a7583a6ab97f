// Package realtime turns server-pushed order events into cache invalidations.
package realtime

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/five82/comanda/internal/query"
)

// Event names pushed by the server.
const (
	EventNewOrder            = "new-order"
	EventOrderStatusUpdated  = "order-status-updated"
	EventShiftSummaryUpdated = "shift-summary-updated"
)

// Topic carrying every order event.
const TopicOrders = "orders"

const queueSize = 256

// invalidations maps each recognized event to the cache resources it stales.
var invalidations = map[string][]string{
	EventNewOrder:            {"orders", "shiftSummary"},
	EventOrderStatusUpdated:  {"orders", "shiftSummary"},
	EventShiftSummaryUpdated: {"shiftSummary"},
}

// Keys returns the cache resources invalidated by event, or nil when the
// event is not recognized.
func Keys(event string) []string {
	return invalidations[event]
}

// Event is one message pushed by the server.
type Event struct {
	Name    string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (e Event) identity() string {
	return e.Topic + "\x00" + e.Name + "\x00" + string(e.Payload)
}

// Invalidator is the part of the query cache the bridge drives.
type Invalidator interface {
	Invalidate(prefix query.Key)
}

// Bridge routes events to topic subscribers and invalidates the cache keys
// each recognized event affects. Invalidation is only a hint to refetch; the
// payload is never written into the cache.
type Bridge struct {
	cache  Invalidator
	logger *log.Logger
	events chan Event

	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	topics map[string]int
	conn   *connection
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a Bridge that invalidates cache.
func New(cache Invalidator, opts ...Option) *Bridge {
	b := &Bridge{
		cache:  cache,
		logger: log.New(io.Discard),
		events: make(chan Event, queueSize),
		subs:   make(map[uint64]*Subscription),
		topics: make(map[string]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Subscription binds a handler to a topic for the lifetime of one view.
type Subscription struct {
	id      uint64
	topic   string
	handler func(Event)
	bridge  *Bridge
	once    sync.Once
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.bridge.unsubscribe(s) })
}

// Subscribe registers handler for events on topic. handler may be nil when
// the view only needs the cache invalidation. Handlers run on the bridge's
// dispatch goroutine and must not block.
func (b *Bridge) Subscribe(topic string, handler func(Event)) *Subscription {
	b.mu.Lock()
	b.nextID++
	sub := &Subscription{id: b.nextID, topic: topic, handler: handler, bridge: b}
	b.subs[sub.id] = sub
	b.topics[topic]++
	first := b.topics[topic] == 1
	conn := b.conn
	b.mu.Unlock()

	if first && conn != nil {
		go conn.control("subscribe", topic)
	}
	return sub
}

func (b *Bridge) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.topics[sub.topic]--
	last := b.topics[sub.topic] <= 0
	if last {
		delete(b.topics, sub.topic)
	}
	conn := b.conn
	b.mu.Unlock()

	if last && conn != nil {
		go conn.control("unsubscribe", sub.topic)
	}
}

// Deliver queues an event for dispatch. Events are dropped with a warning
// when the queue is full.
func (b *Bridge) Deliver(ev Event) {
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("realtime queue full, dropping event", "event", ev.Name)
	}
}

// Run dispatches queued events until ctx is cancelled. Every event already
// queued when a dispatch starts is handled as one batch: duplicates collapse
// and each affected cache resource is invalidated once.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-b.events:
			batch := []Event{ev}
		drain:
			for {
				select {
				case next := <-b.events:
					batch = append(batch, next)
				default:
					break drain
				}
			}
			b.dispatch(batch)
		}
	}
}

func (b *Bridge) dispatch(batch []Event) {
	seen := make(map[string]bool, len(batch))
	stale := make(map[string]bool)
	var resources []string
	type delivery struct {
		ev       Event
		handlers []func(Event)
	}
	var deliveries []delivery

	b.mu.Lock()
	for _, ev := range batch {
		id := ev.identity()
		if seen[id] {
			continue
		}
		seen[id] = true

		keys := Keys(ev.Name)
		if keys == nil {
			b.logger.Debug("ignoring realtime event", "event", ev.Name, "topic", ev.Topic)
			continue
		}
		var handlers []func(Event)
		matched := false
		for _, sub := range b.subs {
			if ev.Topic != "" && sub.topic != ev.Topic {
				continue
			}
			matched = true
			if sub.handler != nil {
				handlers = append(handlers, sub.handler)
			}
		}
		if !matched {
			continue
		}
		for _, k := range keys {
			if !stale[k] {
				stale[k] = true
				resources = append(resources, k)
			}
		}
		deliveries = append(deliveries, delivery{ev: ev, handlers: handlers})
	}
	b.mu.Unlock()

	for _, resource := range resources {
		b.cache.Invalidate(query.NewKey(resource, nil))
	}
	for _, d := range deliveries {
		for _, h := range d.handlers {
			h(d.ev)
		}
	}
	if len(resources) > 0 {
		b.logger.Debug("realtime invalidation", "events", len(batch), "resources", resources)
	}
}

func (b *Bridge) activeTopics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, 0, len(b.topics))
	for t := range b.topics {
		topics = append(topics, t)
	}
	return topics
}

func (b *Bridge) setConn(c *connection) {
	b.mu.Lock()
	b.conn = c
	b.mu.Unlock()
}
