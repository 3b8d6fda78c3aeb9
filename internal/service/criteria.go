package service

import (
	"strings"
	"sync/atomic"
)

var (
	defaultPageSize atomic.Int64
	maxPageSize     atomic.Int64
)

func init() {
	defaultPageSize.Store(10)
	maxPageSize.Store(100)
}

// SetPageLimits updates paging bounds; used at startup and on config reload.
func SetPageLimits(def, max int) {
	if max > 0 {
		maxPageSize.Store(int64(max))
	}
	if def > 0 && int64(def) <= maxPageSize.Load() {
		defaultPageSize.Store(int64(def))
	}
}

// SearchCriteria is implemented by every criteria type through BaseSearchCriteria.
type SearchCriteria interface {
	Base() *BaseSearchCriteria
}

// BaseSearchCriteria carries paging, ordering and free text search. Page is 1-indexed.
type BaseSearchCriteria struct {
	Page          int    `form:"page" json:"page"`
	Size          int    `form:"size" json:"size"`
	SortBy        string `form:"sortBy" json:"sortBy"`
	SortDirection string `form:"sortDirection" json:"sortDirection"`
	Search        string `form:"search" json:"search"`
	CurrentUserID string `form:"-" json:"-"`
}

func (c *BaseSearchCriteria) Base() *BaseSearchCriteria {
	return c
}

// Normalize clamps page and size to valid values.
func (c *BaseSearchCriteria) Normalize() {
	if c.Page < 1 {
		c.Page = 1
	}
	max := int(maxPageSize.Load())
	if c.Size < 1 {
		c.Size = int(defaultPageSize.Load())
	}
	if c.Size > max {
		c.Size = max
	}
}

func (c *BaseSearchCriteria) Offset() int {
	return (c.Page - 1) * c.Size
}

func (c *BaseSearchCriteria) Descending() bool {
	return strings.EqualFold(c.SortDirection, "desc") || strings.EqualFold(c.SortDirection, "descending")
}

// SearchResult is one page of items.
type SearchResult[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	TotalPage   int   `json:"totalPage"`
}

func newSearchResult[T any](items []T, c *BaseSearchCriteria, total int64) *SearchResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPage := 0
	if c.Size > 0 {
		totalPage = int((total + int64(c.Size) - 1) / int64(c.Size))
	}
	return &SearchResult[T]{
		Items:       items,
		CurrentPage: c.Page,
		PageSize:    c.Size,
		TotalCount:  total,
		TotalPage:   totalPage,
	}
}

// MapResult converts the items of a page keeping its paging metadata.
func MapResult[T, R any](in *SearchResult[T], fn func(*T) R) *SearchResult[R] {
	out := &SearchResult[R]{
		Items:       make([]R, 0, len(in.Items)),
		CurrentPage: in.CurrentPage,
		PageSize:    in.PageSize,
		TotalCount:  in.TotalCount,
		TotalPage:   in.TotalPage,
	}
	for i := range in.Items {
		out.Items = append(out.Items, fn(&in.Items[i]))
	}
	return out
}
