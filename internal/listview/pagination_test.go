package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		total, page int
		want        string
	}{
		{0, 1, ""},
		{1, 1, "1"},
		{5, 3, "1 2 3 4 5"},
		{20, 10, "1 … 8 9 10 11 12 … 20"},
		{20, 1, "1 2 3 … 20"},
		{20, 4, "1 2 3 4 5 6 … 20"},
		{20, 5, "1 2 3 4 5 6 7 … 20"},
		{20, 6, "1 … 4 5 6 7 8 … 20"},
		{20, 17, "1 … 15 16 17 18 19 20"},
		{20, 20, "1 … 18 19 20"},
		{7, 4, "1 2 3 4 5 6 7"},
		{7, 1, "1 2 3 … 7"},
		{9, 99, "1 … 7 8 9"},
	}
	for _, tt := range tests {
		got := FormatPages(PageNumbers(tt.total, tt.page))
		assert.Equal(t, tt.want, got, "PageNumbers(%d, %d)", tt.total, tt.page)
	}
}

func TestPageNumbers_NeverEllipsizesSinglePage(t *testing.T) {
	for total := 6; total <= 30; total++ {
		for page := 1; page <= total; page++ {
			items := PageNumbers(total, page)
			prev := 0
			for i, item := range items {
				if item.Ellipsis {
					next := items[i+1].Page
					assert.Greater(t, next-prev, 2, "ellipsis hides a single page in (%d, %d)", total, page)
					continue
				}
				prev = item.Page
			}
		}
	}
}
