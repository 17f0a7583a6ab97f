package listview

import "strings"

// pageWindow is how many page numbers are shown before collapsing.
const pageWindow = 5

// PageItem is one slot of a pagination bar: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "…"
	}
	return itoa(p.Page)
}

// PageNumbers returns the pagination bar for page out of totalPages. Up to
// five pages are listed in full. Beyond that the bar shows the first page,
// page-2..page+2 clamped to the range, and the last page, with an ellipsis
// for each gap. A gap of a single page shows that page instead.
func PageNumbers(totalPages, page int) []PageItem {
	if totalPages < 1 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if totalPages <= pageWindow {
		items := make([]PageItem, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			items = append(items, PageItem{Page: i})
		}
		return items
	}

	start := max(1, page-2)
	end := min(totalPages, page+2)

	var items []PageItem
	if start > 1 {
		items = append(items, PageItem{Page: 1})
		switch {
		case start == 3:
			items = append(items, PageItem{Page: 2})
		case start > 3:
			items = append(items, PageItem{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Page: i})
	}
	if end < totalPages {
		switch {
		case end == totalPages-2:
			items = append(items, PageItem{Page: totalPages - 1})
		case end < totalPages-2:
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: totalPages})
	}
	return items
}

// FormatPages renders items separated by spaces.
func FormatPages(items []PageItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}
