package listview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/query"
)

// ErrInvalidRange is returned when a range starts after it ends.
var ErrInvalidRange = errors.New("la fecha de inicio es posterior a la fecha de fin")

// StatsSource is the part of the API client the stats view uses.
type StatsSource interface {
	Stats(ctx context.Context, q api.StatsQuery) (api.Stats, error)
}

// Stats owns the stats view: date range, client-side search and the
// mounted stats query.
type Stats struct {
	mu      sync.Mutex
	cache   *query.Cache
	source  StatsSource
	filter  StatsFilter
	search  string
	sub     *query.Subscription
	mounted bool
	changes chan struct{}
}

// NewStats returns an unmounted controller covering today on clk.
func NewStats(cache *query.Cache, source StatsSource, clk clock.Clock) *Stats {
	if clk == nil {
		clk = clock.Real()
	}
	return &Stats{
		cache:   cache,
		source:  source,
		filter:  DefaultStatsFilter(clk.Now()),
		changes: make(chan struct{}, 1),
	}
}

// Mount subscribes to the stats for the current range.
func (s *Stats) Mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return
	}
	s.mounted = true
	s.subscribeLocked()
}

// Unmount releases the stats query.
func (s *Stats) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
	s.sub.Close()
	s.sub = nil
}

func (s *Stats) subscribeLocked() {
	s.sub.Close()
	q := s.filter.Query()
	s.sub = s.cache.Subscribe(s.filter.Key(), func(ctx context.Context) (any, error) {
		return s.source.Stats(ctx, q)
	})
	go forward(s.sub, s.changes)
}

// Changes signals whenever the range, search or loaded data changes.
func (s *Stats) Changes() <-chan struct{} { return s.changes }

// Filter returns the current date range.
func (s *Stats) Filter() StatsFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetRange selects a new date range. Both dates are YYYY-MM-DD.
func (s *Stats) SetRange(start, end string) error {
	startDate, err := ParseDate(start)
	if err != nil {
		return fmt.Errorf("fecha de inicio inválida: %w", err)
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return fmt.Errorf("fecha de fin inválida: %w", err)
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return ErrInvalidRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := StatsFilter{StartDate: startDate, EndDate: endDate}
	if next == s.filter {
		return nil
	}
	s.filter = next
	if s.mounted {
		s.subscribeLocked()
	}
	s.signal()
	return nil
}

// SetSearch filters the loaded orders locally.
func (s *Stats) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
	s.signal()
}

// Search returns the local search text.
func (s *Stats) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Result returns the current stats query result.
func (s *Stats) Result() query.Result {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	if sub == nil {
		return query.Result{}
	}
	return sub.Result()
}

// Data returns the loaded stats.
func (s *Stats) Data() (api.Stats, bool) {
	return query.Data[api.Stats](s.Result())
}

// View derives the render state.
func (s *Stats) View() View {
	return Derive(s.Result(), func(data any) bool {
		stats, _ := data.(api.Stats)
		return len(stats.Orders) == 0
	})
}

// Orders returns the loaded orders matching the search.
func (s *Stats) Orders() []api.StatsOrder {
	stats, ok := s.Data()
	if !ok {
		return nil
	}
	return SearchOrders(stats.Orders, s.Search())
}

// Dishes returns per-dish quantities for the loaded range.
func (s *Stats) Dishes() []DishCount {
	stats, ok := s.Data()
	if !ok {
		return nil
	}
	return Aggregate(stats.Orders)
}

// Refetch reloads the current range.
func (s *Stats) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Refetch()
	}
}

// Location returns the shareable part of the view state.
func (s *Stats) Location() Location {
	f := s.Filter()
	return Location{View: ViewStats, StartDate: f.StartDate, EndDate: f.EndDate}
}

// ApplyLocation restores the range from a saved location. Incomplete or
// invalid ranges are ignored.
func (s *Stats) ApplyLocation(loc Location) {
	if loc.StartDate == "" || loc.EndDate == "" {
		return
	}
	_ = s.SetRange(loc.StartDate, loc.EndDate)
}

func (s *Stats) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// DishCount is the number of units ordered of one product.
type DishCount struct {
	Name     string
	Quantity int
	Share    float64
}

// Aggregate sums item quantities per product name, sorted by quantity
// descending and then by name.
func Aggregate(orders []api.StatsOrder) []DishCount {
	totals := make(map[string]int)
	sum := 0
	for _, o := range orders {
		for _, item := range o.Items {
			totals[item.Product.Name] += item.Quantity
			sum += item.Quantity
		}
	}
	counts := make([]DishCount, 0, len(totals))
	for name, qty := range totals {
		c := DishCount{Name: name, Quantity: qty}
		if sum > 0 {
			c.Share = float64(qty) / float64(sum)
		}
		counts = append(counts, c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Quantity != counts[j].Quantity {
			return counts[i].Quantity > counts[j].Quantity
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

// SearchOrders keeps orders whose id, customer national id or customer name
// contains term, ignoring case.
func SearchOrders(orders []api.StatsOrder, term string) []api.StatsOrder {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return orders
	}
	var out []api.StatsOrder
	for _, o := range orders {
		if strings.Contains(strconv.FormatInt(o.ID, 10), term) ||
			strings.Contains(strings.ToLower(o.User.NationalID), term) ||
			strings.Contains(strings.ToLower(o.User.Name), term) {
			out = append(out, o)
		}
	}
	return out
}
