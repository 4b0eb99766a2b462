package ranking

import (
	"errors"
	"fmt"
)

// PageSizes is the closed set of page sizes offered by list views.
var PageSizes = []int{5, 20, 50}

// DefaultPageSize is used when a request names no size.
const DefaultPageSize = 5

// ErrInvalidPageSize is returned for a size outside PageSizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Pager tracks the current page of a list of Total items.
type Pager struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"totalItems"`
}

// NewPager starts on page 1.
func NewPager(total, pageSize int) (Pager, error) {
	if !ValidPageSize(pageSize) {
		return Pager{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if total < 0 {
		total = 0
	}
	return Pager{Page: 1, PageSize: pageSize, Total: total}, nil
}

// TotalPages is ceil(Total / PageSize).
func (p Pager) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// GoTo moves to page. Pages outside [1, TotalPages] leave p unchanged.
func (p Pager) GoTo(page int) Pager {
	if page < 1 || page > p.TotalPages() {
		return p
	}
	p.Page = page
	return p
}

// WithPageSize switches size and resets to page 1.
func (p Pager) WithPageSize(size int) (Pager, error) {
	if !ValidPageSize(size) {
		return p, fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	p.PageSize = size
	p.Page = 1
	return p, nil
}

// Bounds returns the half-open index range of the current page.
func (p Pager) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PageSize
	if start < 0 || start > p.Total {
		start = p.Total
	}
	end = start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Slice returns the current page of items.
func Slice[T any](items []T, p Pager) []T {
	start, end := p.Bounds()
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}
	return items[start:end]
}

// Page is one page of ranked items.
type Page[T any] struct {
	Items      []T       `json:"items"`
	Sort       SortState `json:"sort"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// RankAndPaginate sorts items and cuts out the requested page. current is
// the page the caller is on; a request outside the valid range keeps it.
func RankAndPaginate[T any](r *Ranker[T], items []T, sort SortState, current, page, pageSize int) (Page[T], error) {
	pager, err := NewPager(len(items), pageSize)
	if err != nil {
		return Page[T]{}, err
	}
	pager = pager.GoTo(current).GoTo(page)

	ranked := r.Rank(items, sort.Field, sort.Order)
	return Page[T]{
		Items:      Slice(ranked, pager),
		Sort:       sort,
		Page:       pager.Page,
		PageSize:   pager.PageSize,
		TotalItems: pager.Total,
		TotalPages: pager.TotalPages(),
	}, nil
}
