// Package cart derives the quantity summary from the current tag set. The
// cart is never patched in place: every rebuild walks all tags so the line
// quantities cannot drift from the tags they summarize.
package cart

import (
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/pkg/pagination"
)

// Line is one distinct catalog item with the number of tags referencing it.
// Quantity counts tags, never the catalog's own quantity column.
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

// Rebuild computes the cart from scratch. tagItems holds, per tag in store
// order, that tag's item set. Lines appear in first-encounter order of the
// tag-then-item traversal.
func Rebuild(tagItems [][]catalog.Item) []Line {
	counts := make(map[string]int)
	order := make([]catalog.Item, 0)

	for _, items := range tagItems {
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			// duplicate references inside one tag count once
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			if counts[item.ID] == 0 {
				order = append(order, item)
			}
			counts[item.ID]++
		}
	}

	lines := make([]Line, 0, len(order))
	for _, item := range order {
		lines = append(lines, Line{Item: item, Quantity: counts[item.ID]})
	}
	return lines
}

// View is one page of the cart plus the clamped paging state.
type View struct {
	Lines []Line          `json:"lines"`
	Page  pagination.Page `json:"page"`
}

// PageView windows the cart at the requested page, resetting to page 1 when
// the cart shrank out from under the requested page.
func PageView(lines []Line, requestedPage, pageSize int) View {
	page := pagination.Clamp(requestedPage, len(lines), pageSize)
	start, end := page.Bounds()
	return View{
		Lines: lines[start:end],
		Page:  page,
	}
}
