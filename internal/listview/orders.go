package listview

import (
	"context"
	"sync"
	"time"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/query"
)

// DefaultSearchDebounce is how long typing must pause before a search is
// committed.
const DefaultSearchDebounce = time.Second

// OrdersSource is the part of the API client the orders view uses.
type OrdersSource interface {
	ListOrders(ctx context.Context, q api.OrderQuery) (api.OrderPage, error)
	ShiftSummary(ctx context.Context, shift string) (api.ShiftSummary, error)
	UpdateOrderStatus(ctx context.Context, id int64, status api.OrderStatus) error
}

// Orders owns the orders view state: the filter, the debounced search input
// and the mounted orders and shift summary queries.
type Orders struct {
	mu       sync.Mutex
	cache    *query.Cache
	source   OrdersSource
	clock    clock.Clock
	debounce time.Duration
	pageSize int

	filter    OrderFilter
	input     string
	searchGen uint64
	timer     clock.Timer

	mounted bool
	orders  *query.Subscription
	summary *query.Subscription
	changes chan struct{}

	statusMutation *query.Mutation[statusChange, struct{}]
}

type statusChange struct {
	id     int64
	status api.OrderStatus
}

// OrdersOption configures an Orders controller.
type OrdersOption func(*Orders)

// WithClock replaces the clock driving the search debounce.
func WithClock(c clock.Clock) OrdersOption {
	return func(o *Orders) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithSearchDebounce sets the search debounce delay.
func WithSearchDebounce(d time.Duration) OrdersOption {
	return func(o *Orders) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithPageSize sets the number of orders per page.
func WithPageSize(n int) OrdersOption {
	return func(o *Orders) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// NewOrders returns an unmounted orders controller on the first page.
func NewOrders(cache *query.Cache, source OrdersSource, opts ...OrdersOption) *Orders {
	o := &Orders{
		cache:    cache,
		source:   source,
		clock:    clock.Real(),
		debounce: DefaultSearchDebounce,
		pageSize: DefaultPageSize,
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.filter = DefaultOrderFilter(o.pageSize)
	o.statusMutation = query.NewMutation(func(ctx context.Context, c statusChange) (struct{}, error) {
		return struct{}{}, o.source.UpdateOrderStatus(ctx, c.id, c.status)
	})
	return o
}

// Mount subscribes to the queries for the current filter.
func (o *Orders) Mount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mounted {
		return
	}
	o.mounted = true
	o.subscribeLocked(true, true)
}

// Unmount releases the queries and cancels a pending search.
func (o *Orders) Unmount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelSearchLocked()
	o.mounted = false
	o.orders.Close()
	o.summary.Close()
	o.orders, o.summary = nil, nil
}

// Changes signals whenever the filter or a mounted query changes. Signals
// coalesce.
func (o *Orders) Changes() <-chan struct{} { return o.changes }

// Filter returns the committed filter.
func (o *Orders) Filter() OrderFilter {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filter
}

// SearchInput returns the search text as typed, which may not be committed yet.
func (o *Orders) SearchInput() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// SearchPending reports whether typed text is waiting for the debounce.
func (o *Orders) SearchPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.timer != nil
}

// SetSearchInput records typed text and restarts the debounce. When it fires
// the text becomes the search filter and the page resets to 1.
func (o *Orders) SetSearchInput(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = text
	o.cancelSearchLocked()
	gen := o.searchGen
	o.timer = o.clock.AfterFunc(o.debounce, func() { o.commitSearch(gen) })
	o.signal()
}

func (o *Orders) commitSearch(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.searchGen {
		return
	}
	o.timer = nil
	next := o.filter
	next.Search = o.input
	o.applyLocked(next)
}

func (o *Orders) cancelSearchLocked() {
	o.searchGen++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// SetStatus filters by order status; empty clears it.
func (o *Orders) SetStatus(status api.OrderStatus) {
	o.update(func(f *OrderFilter) { f.Status = status })
}

// SetShift filters by pickup slot. "" and "todos" clear the filter.
func (o *Orders) SetShift(shift string) {
	o.update(func(f *OrderFilter) { f.Shift = shift })
}

// SetDateRange filters by creation date.
func (o *Orders) SetDateRange(start, end string) {
	o.update(func(f *OrderFilter) {
		f.StartDate = start
		f.EndDate = end
	})
}

// SetPage moves to page, keeping every other filter.
func (o *Orders) SetPage(page int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := o.filter
	next.Page = page
	o.applyLocked(next)
}

// NextPage advances one page when the last result says there is one.
func (o *Orders) NextPage() {
	page, ok := o.Page()
	o.mu.Lock()
	defer o.mu.Unlock()
	if ok && page.Pagination.TotalPages > 0 && o.filter.Page >= page.Pagination.TotalPages {
		return
	}
	next := o.filter
	next.Page++
	o.applyLocked(next)
}

// PrevPage goes back one page.
func (o *Orders) PrevPage() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.filter.Page <= 1 {
		return
	}
	next := o.filter
	next.Page--
	o.applyLocked(next)
}

// Clear resets every filter to its default but keeps the shift.
func (o *Orders) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelSearchLocked()
	o.input = ""
	next := DefaultOrderFilter(o.pageSize)
	next.Shift = o.filter.Shift
	o.applyLocked(next)
}

// update applies a non-page change, which always returns to page 1.
func (o *Orders) update(mutate func(*OrderFilter)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := o.filter
	mutate(&next)
	next.Page = 1
	o.applyLocked(next)
}

func (o *Orders) applyLocked(next OrderFilter) {
	next = next.normalize()
	if next.withoutPage() != o.filter.withoutPage() {
		next.Page = 1
	}
	if next == o.filter {
		return
	}
	prev := o.filter
	o.filter = next
	if o.mounted {
		o.subscribeLocked(prev.Key() != next.Key(), prev.Shift != next.Shift)
	}
	o.signal()
}

func (o *Orders) subscribeLocked(orders, summary bool) {
	f := o.filter
	if orders {
		o.orders.Close()
		q := f.Query()
		o.orders = o.cache.Subscribe(f.Key(), func(ctx context.Context) (any, error) {
			return o.source.ListOrders(ctx, q)
		})
		go forward(o.orders, o.changes)
	}
	if summary {
		o.summary.Close()
		shift := f.Shift
		o.summary = o.cache.Subscribe(ShiftSummaryKey(shift), func(ctx context.Context) (any, error) {
			return o.source.ShiftSummary(ctx, shift)
		})
		go forward(o.summary, o.changes)
	}
}

// Key returns the cache key of the current page.
func (o *Orders) Key() query.Key {
	return o.Filter().Key()
}

// Query returns the API query of the current page.
func (o *Orders) Query() api.OrderQuery {
	return o.Filter().Query()
}

// Result returns the current orders query result.
func (o *Orders) Result() query.Result {
	o.mu.Lock()
	sub := o.orders
	o.mu.Unlock()
	if sub == nil {
		return query.Result{}
	}
	return sub.Result()
}

// Page returns the loaded orders page.
func (o *Orders) Page() (api.OrderPage, bool) {
	return query.Data[api.OrderPage](o.Result())
}

// View derives the render state of the orders table.
func (o *Orders) View() View {
	return Derive(o.Result(), func(data any) bool {
		page, _ := data.(api.OrderPage)
		return len(page.Orders) == 0
	})
}

// Summary returns the loaded shift summary.
func (o *Orders) Summary() (api.ShiftSummary, bool) {
	o.mu.Lock()
	sub := o.summary
	o.mu.Unlock()
	if sub == nil {
		return api.ShiftSummary{}, false
	}
	return query.Data[api.ShiftSummary](sub.Result())
}

// Refetch reloads the current page and the shift summary.
func (o *Orders) Refetch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.orders != nil {
		o.orders.Refetch()
	}
	if o.summary != nil {
		o.summary.Refetch()
	}
}

// UpdateStatus changes an order's status and, on success, invalidates the
// orders and shift summaries.
func (o *Orders) UpdateStatus(ctx context.Context, id int64, status api.OrderStatus) error {
	if _, err := o.statusMutation.Do(ctx, statusChange{id: id, status: status}); err != nil {
		return err
	}
	o.cache.Invalidate(query.NewKey(ResourceOrders, nil))
	o.cache.Invalidate(query.NewKey(ResourceShiftSummary, nil))
	return nil
}

// UpdatingStatus reports whether a status change is in flight.
func (o *Orders) UpdatingStatus() bool {
	return o.statusMutation.IsPending()
}

// Location returns the shareable part of the filter.
func (o *Orders) Location() Location {
	f := o.Filter()
	return Location{View: ViewOrders, Shift: f.Shift, StartDate: f.StartDate, EndDate: f.EndDate}
}

// ApplyLocation restores shift and date range from a saved location.
func (o *Orders) ApplyLocation(loc Location) {
	o.update(func(f *OrderFilter) {
		f.Shift = loc.Shift
		f.StartDate = loc.StartDate
		f.EndDate = loc.EndDate
	})
}

func (o *Orders) signal() {
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// forward relays a subscription's updates until it is closed.
func forward(sub *query.Subscription, out chan struct{}) {
	for range sub.Updates() {
		select {
		case out <- struct{}{}:
		default:
		}
	}
}
