// Package stock implements optimistic stock editing: the new value is shown
// immediately and persisted once edits for that product pause.
package stock

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/query"
)

// DefaultDelay is how long edits to one product must pause before saving.
const DefaultDelay = time.Second

// State is the persistence state of one product's stock.
type State int

const (
	// Idle means the cache matches what was last saved.
	Idle State = iota
	// Pending means an edit is waiting for the debounce timer.
	Pending
	// Committing means the update call is in flight.
	Committing
	// Failed means the last save was rejected; the cache is being refetched.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committing:
		return "committing"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Updater persists a product.
type Updater interface {
	UpdateProduct(ctx context.Context, id int64, req api.ProductRequest, photo *api.Upload) error
}

// Cache is the part of the query cache the editor writes to.
type Cache interface {
	SetData(key query.Key, update func(old any) any)
	Invalidate(prefix query.Key)
}

// Notice reports the outcome of a save.
type Notice struct {
	ProductID int64
	Product   string
	Stock     int
	Err       error
}

// Message renders the notice for the operator.
func (n Notice) Message() string {
	if n.Err != nil {
		return fmt.Sprintf("Error al actualizar el stock del producto %s", n.Product)
	}
	return fmt.Sprintf("Stock actualizado correctamente para el producto %s", n.Product)
}

type record struct {
	state   State
	product api.Product
	stock   int
	gen     uint64
	timer   clock.Timer
}

// Editor debounces stock edits per product id.
type Editor struct {
	mu      sync.Mutex
	records map[int64]*record

	cache   Cache
	key     query.Key
	updater Updater
	clock   clock.Clock
	delay   time.Duration
	notify  func(Notice)
	logger  *log.Logger
	ctx     context.Context
	wg      sync.WaitGroup
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock replaces the clock driving the debounce.
func WithClock(c clock.Clock) Option {
	return func(e *Editor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.delay = d
		}
	}
}

// WithNotify sets the callback receiving save outcomes. It runs on the
// goroutine that performed the save.
func WithNotify(fn func(Notice)) Option {
	return func(e *Editor) { e.notify = fn }
}

// WithLogger sets the editor logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithContext sets the context for update calls.
func WithContext(ctx context.Context) Option {
	return func(e *Editor) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// New returns an Editor writing optimistic values under key, which must hold
// a []api.Product.
func New(cache Cache, key query.Key, updater Updater, opts ...Option) *Editor {
	e := &Editor{
		records: make(map[int64]*record),
		cache:   cache,
		key:     key,
		updater: updater,
		clock:   clock.Real(),
		delay:   DefaultDelay,
		notify:  func(Notice) {},
		logger:  log.New(io.Discard),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Edit shows stock as product's new stock right away and schedules a save.
// A further edit of the same product before the delay replaces the pending
// save, so only the last value is sent.
func (e *Editor) Edit(product api.Product, stock int) {
	if stock < 0 {
		stock = 0
	}
	e.cache.SetData(e.key, func(old any) any {
		return withStock(old, product.ID, stock)
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[product.ID]
	if !ok {
		rec = &record{}
		e.records[product.ID] = rec
	}
	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.gen++
	rec.state = Pending
	rec.product = product
	rec.stock = stock
	gen := rec.gen
	id := product.ID
	rec.timer = e.clock.AfterFunc(e.delay, func() { e.commit(id, gen) })
}

func (e *Editor) commit(id int64, gen uint64) {
	e.mu.Lock()
	rec, ok := e.records[id]
	if !ok || rec.gen != gen || rec.state != Pending {
		e.mu.Unlock()
		return
	}
	rec.state = Committing
	rec.timer = nil
	product, stock := rec.product, rec.stock
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	err := e.updater.UpdateProduct(e.ctx, id, api.RequestFromProduct(product, stock), nil)

	e.mu.Lock()
	superseded := e.records[id] != rec || rec.gen != gen
	if !superseded && err != nil {
		rec.state = Failed
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("stock update failed", "product", id, "stock", stock, "err", err)
		// A newer edit owns the cache value now and reconciles it when it saves.
		if !superseded {
			e.cache.Invalidate(e.key)
		}
	} else {
		e.logger.Info("stock updated", "product", id, "stock", stock)
	}

	if !superseded {
		e.mu.Lock()
		if e.records[id] == rec && rec.gen == gen {
			delete(e.records, id)
		}
		e.mu.Unlock()
	}
	e.notify(Notice{ProductID: id, Product: product.Name, Stock: stock, Err: err})
}

// State returns the persistence state for product id.
func (e *Editor) State(id int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec, ok := e.records[id]; ok {
		return rec.state
	}
	return Idle
}

// Pending reports how many products have unsaved or in-flight edits.
func (e *Editor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// Close cancels pending saves and waits for in-flight ones. Cancelled edits
// are reconciled by invalidating the product list.
func (e *Editor) Close() {
	e.mu.Lock()
	cancelled := 0
	for id, rec := range e.records {
		if rec.state == Pending {
			rec.timer.Stop()
			delete(e.records, id)
			cancelled++
		}
	}
	e.mu.Unlock()
	e.wg.Wait()
	if cancelled > 0 {
		e.logger.Warn("discarded unsaved stock edits", "count", cancelled)
		e.cache.Invalidate(e.key)
	}
}

// withStock returns a copy of the product list with id's stock replaced.
func withStock(old any, id int64, stock int) any {
	products, ok := old.([]api.Product)
	if !ok {
		return old
	}
	out := make([]api.Product, len(products))
	copy(out, products)
	for i := range out {
		if out[i].ID == id {
			out[i].Stock = stock
		}
	}
	return out
}
