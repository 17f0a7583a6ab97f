package listview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/five82/comanda/internal/query"
)

func TestDerive(t *testing.T) {
	isEmpty := func(data any) bool { rows, _ := data.([]int); return len(rows) == 0 }
	boom := errors.New("boom")
	now := time.Now()

	tests := []struct {
		name      string
		result    query.Result
		wantState State
		wantToast bool
	}{
		{"never fetched", query.Result{}, StateLoading, false},
		{"loading", query.Result{Status: query.StatusLoading, Fetching: true}, StateLoading, false},
		{"error without data", query.Result{Status: query.StatusError, Err: boom}, StateError, false},
		{"empty", query.Result{Status: query.StatusSuccess, HasData: true, Data: []int{}}, StateEmpty, false},
		{"populated", query.Result{Status: query.StatusSuccess, HasData: true, Data: []int{1}}, StatePopulated, false},
		{"failed refetch", query.Result{Status: query.StatusError, HasData: true, Data: []int{1}, Err: boom, ErrAt: now}, StatePopulated, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Derive(tt.result, isEmpty)
			assert.Equal(t, tt.wantState, v.State)
			assert.Equal(t, tt.wantToast, v.Toast())
		})
	}
}
