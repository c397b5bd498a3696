package pagination

// Page describes a clamped window over an in-memory list.
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Clamp resolves the requested page against the current list length. The
// page number is pulled back into [1, totalPages]; when the list shrinks so
// far that the requested page no longer exists, the view resets to page 1.
func Clamp(requested, totalItems, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = 1
	}

	return Page{
		Number:     number,
		Size:       pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Bounds returns the half-open [start, end) slice indices for the page.
func (p Page) Bounds() (int, int) {
	start := (p.Number - 1) * p.Size
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end := start + p.Size
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}
