package projection

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page selector shared by the list use cases.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into a valid window: page starts at 1 and
// page size falls back to DefaultPageSize and never exceeds MaxPageSize.
// Page is capped so that Offset cannot overflow.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	if maxPage := math.MaxInt / r.PageSize; r.Page > maxPage {
		r.Page = maxPage
	}
	return r
}

// Offset returns the zero-based row offset of the first item on the page.
func (r PageRequest) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (r PageRequest) Limit() int {
	return r.Normalize().PageSize
}

// Page represents one slice of a larger result set plus its total size.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// NewPage wraps items with the paging metadata of the request that produced them.
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	n := req.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: n.Page, PageSize: n.PageSize}
}
