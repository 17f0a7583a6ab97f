package listview

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/query"
)

// DefaultPageSize is the orders page size when none is configured.
const DefaultPageSize = 10

// DateLayout is the wire format of filter dates.
const DateLayout = "2006-01-02"

// OrderFilter is the orders view's filter and pagination state. Empty fields
// leave that dimension unfiltered.
type OrderFilter struct {
	Search    string
	Status    api.OrderStatus
	StartDate string
	EndDate   string
	Shift     string
	Page      int
	Limit     int
}

// DefaultOrderFilter returns the first page with the given page size.
func DefaultOrderFilter(limit int) OrderFilter {
	return OrderFilter{Page: 1, Limit: limit}.normalize()
}

func (f OrderFilter) normalize() OrderFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Shift = normalizeShift(f.Shift)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	return f
}

// Active reports whether any filter other than pagination is set.
func (f OrderFilter) Active() bool {
	return f.Search != "" || f.Status != "" || f.StartDate != "" || f.EndDate != "" || f.Shift != ""
}

// Query converts the filter to the API query.
func (f OrderFilter) Query() api.OrderQuery {
	return api.OrderQuery{
		Search:    f.Search,
		Status:    f.Status,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Shift:     f.Shift,
		Page:      f.Page,
		Limit:     f.Limit,
	}
}

// Key derives the cache key for the filter.
func (f OrderFilter) Key() query.Key {
	return query.NewKey(ResourceOrders, f.Query().Values())
}

// withoutPage is used to tell a bare page change from a filter change.
func (f OrderFilter) withoutPage() OrderFilter {
	f.Page = 0
	return f
}

// normalizeShift maps the "every shift" choices to no filter.
func normalizeShift(shift string) string {
	shift = strings.TrimSpace(shift)
	if strings.EqualFold(shift, "todos") || strings.EqualFold(shift, "all") {
		return ""
	}
	return shift
}

// StatsFilter is the stats view's date range.
type StatsFilter struct {
	StartDate string
	EndDate   string
}

// DefaultStatsFilter covers the day of now.
func DefaultStatsFilter(now time.Time) StatsFilter {
	today := now.Format(DateLayout)
	return StatsFilter{StartDate: today, EndDate: today}
}

// Query converts the filter to the API query.
func (f StatsFilter) Query() api.StatsQuery {
	return api.StatsQuery{StartDate: f.StartDate, EndDate: f.EndDate}
}

// Key derives the cache key for the filter.
func (f StatsFilter) Key() query.Key {
	values := url.Values{}
	if f.StartDate != "" {
		values.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		values.Set("end_date", f.EndDate)
	}
	return query.NewKey(ResourceStats, values)
}

// ParseDate validates a YYYY-MM-DD date. Empty input is allowed.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

func itoa(n int) string { return strconv.Itoa(n) }
