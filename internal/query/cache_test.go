package query

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/comanda/internal/clock"
)

var ordersKey = NewKey("orders", url.Values{"page": {"1"}, "limit": {"10"}})

func newTestCache(t *testing.T, opts ...Option) (*Cache, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	c := New(append([]Option{WithClock(fake)}, opts...)...)
	t.Cleanup(c.Wait)
	return c, fake
}

func countingFetcher(calls *atomic.Int32, value any) Fetcher {
	return func(context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestSubscribe_ConcurrentSubscribersShareOneRequest(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return []string{"order"}, nil
	}

	var wg sync.WaitGroup
	subs := make([]*Subscription, 2)
	for i := range subs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subs[i] = c.Subscribe(ordersKey, fetch)
		}(i)
	}
	wg.Wait()
	close(release)
	c.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, sub := range subs {
		r := sub.Result()
		require.True(t, r.HasData)
		assert.Equal(t, StatusSuccess, r.Status)
		assert.Equal(t, []string{"order"}, r.Data)
		sub.Close()
	}
}

func TestSubscribe_ServesFreshDataWithoutRequest(t *testing.T) {
	c, fake := newTestCache(t, WithStaleTime(30*time.Second))
	var calls atomic.Int32
	fetch := countingFetcher(&calls, 1)

	c.Subscribe(ordersKey, fetch).Close()
	c.Wait()
	c.Subscribe(ordersKey, fetch).Close()
	c.Wait()
	assert.Equal(t, int32(1), calls.Load(), "fresh entry refetched")

	fake.Advance(31 * time.Second)
	sub := c.Subscribe(ordersKey, fetch)
	c.Wait()
	sub.Close()
	assert.Equal(t, int32(2), calls.Load(), "stale entry not refetched")
}

func TestSubscribe_LoadingUntilFirstResult(t *testing.T) {
	c, _ := newTestCache(t)
	release := make(chan struct{})
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) {
		<-release
		return "rows", nil
	})
	defer sub.Close()

	r := sub.Result()
	assert.True(t, r.IsLoading())
	assert.Equal(t, StatusLoading, r.Status)
	assert.True(t, r.Fetching)

	close(release)
	c.Wait()
	r = sub.Result()
	assert.False(t, r.IsLoading())
	v, ok := Data[string](r)
	require.True(t, ok)
	assert.Equal(t, "rows", v)
}

func TestInvalidate_WithoutSubscriberDefersRequest(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	fetch := countingFetcher(&calls, "x")

	c.Subscribe(ordersKey, fetch).Close()
	c.Wait()

	assert.NotPanics(t, func() {
		c.Invalidate(NewKey("orders", nil))
		c.Invalidate(NewKey("never-seen", nil))
	})
	c.Wait()
	assert.Equal(t, int32(1), calls.Load(), "invalidation without subscriber fetched")
	assert.True(t, c.Peek(ordersKey).Stale)

	sub := c.Subscribe(ordersKey, fetch)
	c.Wait()
	sub.Close()
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, c.Peek(ordersKey).Stale)
}

func TestInvalidate_RefetchesMountedEntriesByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	var ordersCalls, summaryCalls, productCalls atomic.Int32

	subs := []*Subscription{
		c.Subscribe(ordersKey, countingFetcher(&ordersCalls, 1)),
		c.Subscribe(NewKey("shiftSummary", url.Values{"shift": {"12-13"}}), countingFetcher(&summaryCalls, 2)),
		c.Subscribe(NewKey("products", nil), countingFetcher(&productCalls, 3)),
	}
	defer func() {
		for _, s := range subs {
			s.Close()
		}
	}()
	c.Wait()

	c.Invalidate(NewKey("orders", nil))
	c.Invalidate(NewKey("shiftSummary", nil))
	c.Wait()

	assert.Equal(t, int32(2), ordersCalls.Load())
	assert.Equal(t, int32(2), summaryCalls.Load())
	assert.Equal(t, int32(1), productCalls.Load())
}

func TestFetchFailure_KeepsPreviousData(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	boom := errors.New("boom")
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "rows", nil
		}
		return nil, boom
	})
	defer sub.Close()
	c.Wait()

	sub.Refetch()
	c.Wait()

	r := sub.Result()
	assert.Equal(t, StatusError, r.Status)
	assert.ErrorIs(t, r.Err, boom)
	assert.True(t, r.HasData)
	assert.Equal(t, "rows", r.Data)
	assert.False(t, r.ErrAt.IsZero())
}

func TestFetchFailure_WithoutDataHasNilData(t *testing.T) {
	c, _ := newTestCache(t)
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) {
		return nil, errors.New("down")
	})
	defer sub.Close()
	c.Wait()

	r := sub.Result()
	assert.Equal(t, StatusError, r.Status)
	assert.False(t, r.HasData)
	assert.Nil(t, r.Data)
	assert.False(t, r.IsLoading())
}

func TestNewerFetchSupersedesOlder(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	releaseFirst := make(chan struct{})
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			<-releaseFirst
			return "old", nil
		}
		return "new", nil
	})
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	c.Invalidate(ordersKey)
	require.Eventually(t, func() bool { return sub.Result().HasData }, time.Second, time.Millisecond)
	close(releaseFirst)
	c.Wait()

	assert.Equal(t, "new", sub.Result().Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubscriptionClose_IsIdempotentAndStopsNotifications(t *testing.T) {
	c, _ := newTestCache(t)
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) { return 1, nil })
	c.Wait()

	sub.Close()
	sub.Close()

	for range sub.Updates() {
	}
	c.SetData(ordersKey, func(any) any { return 2 })
	_, open := <-sub.Updates()
	assert.False(t, open)
}

func TestSetData_WritesAndNotifies(t *testing.T) {
	c, _ := newTestCache(t)
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) { return []int{1, 2}, nil })
	defer sub.Close()
	c.Wait()
	for len(sub.Updates()) > 0 {
		<-sub.Updates()
	}

	c.SetData(ordersKey, func(old any) any {
		rows := old.([]int)
		return append([]int{0}, rows...)
	})

	select {
	case <-sub.Updates():
	case <-time.After(time.Second):
		t.Fatal("no notification after SetData")
	}
	got, ok := Data[[]int](sub.Result())
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestSetData_SupersedesFetchInFlight(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	sub := c.Subscribe(ordersKey, func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return 10, nil
		}
		<-release
		return 10, nil
	})
	defer sub.Close()
	c.Wait()

	c.Invalidate(NewKey("orders", nil))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	c.SetData(ordersKey, func(any) any { return 6 })
	close(release)
	c.Wait()

	got, ok := Data[int](sub.Result())
	require.True(t, ok)
	assert.Equal(t, 6, got, "response fetched before the write replaced it")
	assert.False(t, sub.Result().IsLoading())
}

func TestFetch_PopulatesEntryForSubscribers(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	fetch := countingFetcher(&calls, "product")

	v, err := c.Fetch(context.Background(), ordersKey, fetch)
	require.NoError(t, err)
	assert.Equal(t, "product", v)

	v, err = c.Fetch(context.Background(), ordersKey, fetch)
	require.NoError(t, err)
	assert.Equal(t, "product", v)

	sub := c.Subscribe(ordersKey, fetch)
	defer sub.Close()
	c.Wait()
	assert.Equal(t, "product", sub.Result().Data)
	assert.Equal(t, int32(1), calls.Load(), "fresh entry hit the network again")
}

func TestFetch_ReturnsError(t *testing.T) {
	c, _ := newTestCache(t)
	_, err := c.Fetch(context.Background(), ordersKey, func(context.Context) (any, error) {
		return nil, errors.New("offline")
	})
	require.EqualError(t, err, "offline")
	assert.Equal(t, StatusError, c.Peek(ordersKey).Status)

	_, err = c.Fetch(context.Background(), NewKey("nobody", nil), nil)
	require.Error(t, err)
}

func TestSweep_DropsIdleEntriesAfterGCTime(t *testing.T) {
	c, fake := newTestCache(t, WithGCTime(5*time.Minute))
	mounted := c.Subscribe(NewKey("products", nil), func(context.Context) (any, error) { return 1, nil })
	defer mounted.Close()
	c.Subscribe(ordersKey, func(context.Context) (any, error) { return 2, nil }).Close()
	c.Wait()

	fake.Advance(4 * time.Minute)
	assert.Equal(t, 0, c.Sweep())
	fake.Advance(time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, Result{}, c.Peek(ordersKey))
}

func TestMutation_IsPending(t *testing.T) {
	release := make(chan struct{})
	m := NewMutation(func(_ context.Context, id int) (string, error) {
		<-release
		return "ok", nil
	})
	assert.False(t, m.IsPending())

	done := make(chan string)
	go func() {
		r, _ := m.Do(context.Background(), 7)
		done <- r
	}()
	require.Eventually(t, m.IsPending, time.Second, time.Millisecond)
	close(release)
	assert.Equal(t, "ok", <-done)
	assert.False(t, m.IsPending())
}

func TestMutate_InvalidatesOnlyOnSuccess(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	sub := c.Subscribe(NewKey("sides", nil), countingFetcher(&calls, "s"))
	defer sub.Close()
	c.Wait()

	err := c.Mutate(context.Background(), func(context.Context) error { return errors.New("rejected") }, NewKey("sides", nil))
	require.Error(t, err)
	c.Wait()
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, c.Mutate(context.Background(), func(context.Context) error { return nil }, NewKey("sides", nil)))
	c.Wait()
	assert.Equal(t, int32(2), calls.Load())
}

func TestKey_CanonicalAndMatches(t *testing.T) {
	a := NewKey("orders", url.Values{"page": {"1"}, "limit": {"10"}})
	b := NewKey("orders", url.Values{"limit": {"10"}, "page": {"1"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "orders?limit=10&page=1", a.String())
	assert.True(t, a.Matches(NewKey("orders", nil)))
	assert.True(t, a.Matches(b))
	assert.False(t, a.Matches(NewKey("orders", url.Values{"page": {"2"}})))
	assert.False(t, a.Matches(NewKey("products", nil)))
	assert.Equal(t, "products", NewKey("products", url.Values{}).String())
}
