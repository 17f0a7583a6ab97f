package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/query"
)

type fakeOrders struct {
	mu        sync.Mutex
	queries   []api.OrderQuery
	summaries []string
	statuses  []api.OrderStatus
	fail      error
	orders    []api.Order
}

func (f *fakeOrders) ListOrders(_ context.Context, q api.OrderQuery) (api.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail != nil {
		return api.OrderPage{}, f.fail
	}
	return api.OrderPage{Orders: f.orders, Pagination: api.Pagination{Page: q.Page, TotalPages: 5}}, nil
}

func (f *fakeOrders) ShiftSummary(_ context.Context, shift string) (api.ShiftSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, shift)
	return api.ShiftSummary{Shift: shift}, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, _ int64, status api.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return f.fail
}

func (f *fakeOrders) lastQuery() api.OrderQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *fakeOrders) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newOrdersFixture(t *testing.T) (*Orders, *fakeOrders, *query.Cache, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	cache := query.New(query.WithClock(fake))
	source := &fakeOrders{orders: []api.Order{{ID: 1}}}
	o := NewOrders(cache, source, WithClock(fake))
	o.Mount()
	t.Cleanup(func() {
		o.Unmount()
		cache.Wait()
	})
	cache.Wait()
	return o, source, cache, fake
}

func TestOrders_DefaultsToFirstPage(t *testing.T) {
	o, source, _, _ := newOrdersFixture(t)
	assert.Equal(t, OrderFilter{Page: 1, Limit: 10}, o.Filter())
	assert.Equal(t, api.OrderQuery{Page: 1, Limit: 10}, source.lastQuery())
	assert.Equal(t, "orders?limit=10&page=1", o.Key().String())
	assert.Equal(t, []string{""}, source.summaries)
}

func TestOrders_FilterChangesResetPage(t *testing.T) {
	changes := []struct {
		name  string
		apply func(o *Orders)
	}{
		{"status", func(o *Orders) { o.SetStatus(api.StatusReady) }},
		{"shift", func(o *Orders) { o.SetShift("12-13") }},
		{"date range", func(o *Orders) { o.SetDateRange("2026-03-01", "2026-03-02") }},
		{"clear", func(o *Orders) { o.Clear() }},
	}
	for _, tc := range changes {
		t.Run(tc.name, func(t *testing.T) {
			o, source, cache, _ := newOrdersFixture(t)
			o.SetStatus(api.StatusPending)
			o.SetPage(3)
			cache.Wait()
			require.Equal(t, 3, source.lastQuery().Page)

			tc.apply(o)
			cache.Wait()

			assert.Equal(t, 1, o.Filter().Page)
			assert.Equal(t, 1, o.Query().Page)
			assert.Contains(t, o.Key().Params, "page=1")
		})
	}
}

func TestOrders_PageChangeKeepsFilters(t *testing.T) {
	o, source, cache, _ := newOrdersFixture(t)
	o.SetStatus(api.StatusPreparing)
	o.SetShift("13-14")
	o.SetPage(2)
	cache.Wait()

	got := source.lastQuery()
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, api.StatusPreparing, got.Status)
	assert.Equal(t, "13-14", got.Shift)

	o.NextPage()
	cache.Wait()
	assert.Equal(t, 3, source.lastQuery().Page)
	o.PrevPage()
	o.PrevPage()
	o.PrevPage()
	assert.Equal(t, 1, o.Filter().Page)
}

func TestOrders_NextPageStopsAtLastPage(t *testing.T) {
	o, _, cache, _ := newOrdersFixture(t)
	o.SetPage(5)
	cache.Wait()
	o.NextPage()
	assert.Equal(t, 5, o.Filter().Page)
}

func TestOrders_SearchIsDebounced(t *testing.T) {
	o, source, cache, fake := newOrdersFixture(t)
	o.SetPage(4)
	cache.Wait()
	before := source.queryCount()

	o.SetSearchInput("a")
	fake.Advance(500 * time.Millisecond)
	o.SetSearchInput("an")
	fake.Advance(500 * time.Millisecond)
	o.SetSearchInput("ana")
	assert.True(t, o.SearchPending())
	assert.Equal(t, "ana", o.SearchInput())
	assert.Equal(t, "", o.Filter().Search)

	fake.Advance(time.Second)
	cache.Wait()

	assert.False(t, o.SearchPending())
	assert.Equal(t, before+1, source.queryCount())
	got := source.lastQuery()
	assert.Equal(t, "ana", got.Search)
	assert.Equal(t, 1, got.Page)
}

func TestOrders_ClearKeepsShiftAndCancelsSearch(t *testing.T) {
	o, _, cache, fake := newOrdersFixture(t)
	o.SetShift("11-12")
	o.SetStatus(api.StatusReady)
	o.SetSearchInput("pending text")
	o.Clear()
	fake.Advance(2 * time.Second)
	cache.Wait()

	assert.Equal(t, OrderFilter{Shift: "11-12", Page: 1, Limit: 10}, o.Filter())
	assert.Equal(t, "", o.SearchInput())
}

func TestOrders_ShiftTodosClearsShift(t *testing.T) {
	o, source, cache, _ := newOrdersFixture(t)
	o.SetShift("12-13")
	cache.Wait()
	o.SetShift("todos")
	cache.Wait()

	assert.Equal(t, "", o.Filter().Shift)
	assert.Equal(t, "", o.Query().Shift)
	assert.Equal(t, []string{"", "12-13"}, source.summaries)
}

func TestOrders_FailedRefetchKeepsRows(t *testing.T) {
	o, source, cache, _ := newOrdersFixture(t)
	require.Equal(t, StatePopulated, o.View().State)

	source.mu.Lock()
	source.fail = errors.New("servidor caído")
	source.mu.Unlock()
	o.Refetch()
	cache.Wait()

	view := o.View()
	assert.Equal(t, StatePopulated, view.State)
	assert.True(t, view.Toast())
	page, ok := o.Page()
	require.True(t, ok)
	assert.Len(t, page.Orders, 1)
}

func TestOrders_UpdateStatusInvalidates(t *testing.T) {
	o, source, cache, _ := newOrdersFixture(t)
	before := source.queryCount()

	require.NoError(t, o.UpdateStatus(context.Background(), 1, api.StatusDelivered))
	cache.Wait()

	assert.Equal(t, before+1, source.queryCount())
	assert.Equal(t, []api.OrderStatus{api.StatusDelivered}, source.statuses)
	assert.False(t, o.UpdatingStatus())
}

func TestOrders_LocationRoundTrip(t *testing.T) {
	o, _, cache, _ := newOrdersFixture(t)
	o.ApplyLocation(ParseLocation("orders?shift=12-13&startDate=2026-03-01&endDate=2026-03-02"))
	cache.Wait()

	assert.Equal(t, "orders?endDate=2026-03-02&shift=12-13&startDate=2026-03-01", o.Location().String())
	assert.Equal(t, "12-13", o.Filter().Shift)
}

func TestOrders_ChangesSignal(t *testing.T) {
	o, _, cache, _ := newOrdersFixture(t)
	for len(o.Changes()) > 0 {
		<-o.Changes()
	}
	o.SetStatus(api.StatusCancelled)
	cache.Wait()
	select {
	case <-o.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}
}
