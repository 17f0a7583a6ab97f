package listview

import (
	"net/url"
	"strings"

	"github.com/five82/comanda/internal/query"
)

// Cache resources shared by the views and the realtime bridge.
const (
	ResourceOrders       = "orders"
	ResourceShiftSummary = "shiftSummary"
	ResourceShifts       = "shifts"
	ResourceProducts     = "products"
	ResourceSides        = "sides"
	ResourceStats        = "stats"
	ResourceUser         = "user"
)

var (
	// ProductsKey is the catalog listing.
	ProductsKey = query.NewKey(ResourceProducts, nil)
	// SidesKey is every side dish; invalidating it also stales ActiveSidesKey.
	SidesKey = query.NewKey(ResourceSides, nil)
	// ActiveSidesKey is the side dishes offered in the product form.
	ActiveSidesKey = query.NewKey(ResourceSides, url.Values{"active": {"true"}})
	// ShiftsKey is the server's list of pickup slots.
	ShiftsKey = query.NewKey(ResourceShifts, nil)
)

// ProductKey identifies a single product fetched for the edit form.
func ProductKey(id string) query.Key {
	return query.NewKey(ResourceProducts, url.Values{"id": {id}})
}

// ShiftSummaryKey identifies the preparation summary for shift. An empty
// shift summarizes every shift.
func ShiftSummaryKey(shift string) query.Key {
	shift = strings.TrimSpace(shift)
	if shift == "" {
		return query.NewKey(ResourceShiftSummary, url.Values{"shift": {"all"}})
	}
	return query.NewKey(ResourceShiftSummary, url.Values{"shift": {shift}})
}
