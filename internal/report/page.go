package report

// Page is one page of a larger result.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Paginate returns the 1-indexed page of items. Out-of-range pages are
// clamped to the first or last page. An empty input yields page 1 with no
// items and zero total pages.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = 1
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := items[start:end:end]
	if pageItems == nil {
		pageItems = []T{}
	}

	return Page[T]{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
