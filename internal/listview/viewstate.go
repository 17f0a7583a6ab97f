package listview

import (
	"time"

	"github.com/five82/comanda/internal/query"
)

// State is what a list view should render.
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "loading"
	}
}

// View is the derived render state of a query result.
type View struct {
	State State
	// Err is the latest fetch error. With StatePopulated it means a refetch
	// failed and the previous rows are still shown.
	Err        error
	ErrAt      time.Time
	Refreshing bool
}

// Derive maps a cache result to a view state. empty decides whether loaded
// data has no rows.
func Derive(r query.Result, empty func(data any) bool) View {
	v := View{Err: r.Err, ErrAt: r.ErrAt, Refreshing: r.Fetching && r.HasData}
	switch {
	case !r.HasData && r.Err != nil:
		v.State = StateError
	case !r.HasData:
		v.State = StateLoading
	case empty != nil && empty(r.Data):
		v.State = StateEmpty
	default:
		v.State = StatePopulated
	}
	return v
}

// Toast reports whether the view carries an error that should be surfaced as
// a notification rather than replacing the rows.
func (v View) Toast() bool {
	return v.Err != nil && (v.State == StatePopulated || v.State == StateEmpty)
}
