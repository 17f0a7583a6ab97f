package listview

import (
	"net/url"
	"strings"
)

// Views addressable by a location.
const (
	ViewOrders   = "orders"
	ViewProducts = "products"
	ViewStats    = "stats"
)

// Location is the shareable part of the view state: which view is open and
// its shift and date range. It is persisted so a restart reopens the same
// view with the same filters.
type Location struct {
	View      string
	Shift     string
	StartDate string
	EndDate   string
}

// ParseLocation decodes a location such as "orders?shift=12-13". Unknown
// views fall back to orders; malformed parameters are ignored.
func ParseLocation(s string) Location {
	s = strings.TrimSpace(s)
	path, rawQuery, _ := strings.Cut(s, "?")
	loc := Location{View: path}
	switch loc.View {
	case ViewOrders, ViewProducts, ViewStats:
	default:
		loc.View = ViewOrders
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return loc
	}
	loc.Shift = normalizeShift(values.Get("shift"))
	if d, err := ParseDate(values.Get("startDate")); err == nil {
		loc.StartDate = d
	}
	if d, err := ParseDate(values.Get("endDate")); err == nil {
		loc.EndDate = d
	}
	return loc
}

// String encodes the location with its parameters in canonical order.
func (l Location) String() string {
	view := l.View
	if view == "" {
		view = ViewOrders
	}
	values := url.Values{}
	if l.Shift != "" {
		values.Set("shift", l.Shift)
	}
	if l.StartDate != "" {
		values.Set("startDate", l.StartDate)
	}
	if l.EndDate != "" {
		values.Set("endDate", l.EndDate)
	}
	if len(values) == 0 {
		return view
	}
	return view + "?" + values.Encode()
}
