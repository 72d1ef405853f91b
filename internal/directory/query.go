package directory

import (
	"github.com/UnknownOlympus/hestia/internal/models"
)

// FilterAll disables the department or status filter.
const FilterAll = "all"

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Sort is the active sort column. An empty Key means server order.
type Sort struct {
	Key  models.Field
	Desc bool
}

// Query is the list query state of one session.
type Query struct {
	Page       int
	PageSize   int
	Search     string
	Department string
	Status     string
	Sort       Sort
}

// NewQuery returns the initial query: first page, no filters, no sort.
func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{
		Page:       1,
		PageSize:   pageSize,
		Department: FilterAll,
		Status:     FilterAll,
	}
}

// Ordering renders the sort as the API's ordering parameter: "key" or "-key".
func (q Query) Ordering() string {
	if q.Sort.Key == "" {
		return ""
	}
	if q.Sort.Desc {
		return "-" + string(q.Sort.Key)
	}
	return string(q.Sort.Key)
}

// Toggle returns the sort after the user picks key: the same key flips
// ascending to descending and back, a new key starts ascending.
func (s Sort) Toggle(key models.Field) Sort {
	if s.Key == key {
		return Sort{Key: key, Desc: !s.Desc}
	}
	return Sort{Key: key}
}

// TotalPages is ceil(count / pageSize), at least 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	return max(pages, 1)
}
