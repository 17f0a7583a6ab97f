package query

import "time"

// Status is the fetch state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Result is a point-in-time view of a cache entry.
type Result struct {
	Status Status
	// Data is the last successful value. It survives later failed fetches.
	Data    any
	HasData bool
	// Err is the error of the most recent fetch, nil after a success.
	Err       error
	ErrAt     time.Time
	UpdatedAt time.Time
	Fetching  bool
	Stale     bool
}

// IsLoading reports whether the entry has never produced data and is not in
// an error state.
func (r Result) IsLoading() bool {
	return !r.HasData && r.Err == nil
}

// Data returns the result's value as T.
func Data[T any](r Result) (T, bool) {
	var zero T
	if !r.HasData {
		return zero, false
	}
	v, ok := r.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
