// domain/page.go
package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based pagination request.
type Page struct {
	Page     int
	PageSize int
}

// Clamped applies defaults and bounds: page >= 1, page size in [1, MaxPageSize].
func (p Page) Clamped() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// TotalPages derives the page count: max(1, ceil(total/pageSize)).
// An empty result set still has one (empty) page.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Slice returns the [start, end) bounds of the page within a list of n items.
// A page past the end yields an empty range.
func (p Page) Slice(n int) (int, int) {
	start := (p.Page - 1) * p.PageSize
	if start >= n {
		return n, n
	}
	end := start + p.PageSize
	if end > n {
		end = n
	}
	return start, end
}
