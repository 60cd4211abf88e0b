package task

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FilterKind identifies which of the four list queries a Filter selects.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterByStatus
	FilterByTitle
	FilterByStatusAndTitle
)

// String returns a short name used in logs.
func (k FilterKind) String() string {
	switch k {
	case FilterByStatus:
		return "status"
	case FilterByTitle:
		return "title"
	case FilterByStatusAndTitle:
		return "status+title"
	default:
		return "none"
	}
}

// Filter restricts a list query. A nil IsCompleted or an empty Title
// leaves that predicate out; both present are combined with AND.
type Filter struct {
	IsCompleted *bool
	// Title is matched as a case-insensitive substring.
	Title string
}

// Kind reports which predicates the filter carries.
func (f Filter) Kind() FilterKind {
	switch {
	case f.IsCompleted != nil && f.Title != "":
		return FilterByStatusAndTitle
	case f.IsCompleted != nil:
		return FilterByStatus
	case f.Title != "":
		return FilterByTitle
	default:
		return FilterNone
	}
}

// SortDirection is the ordering direction for one sort key.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortOrder is a single (field, direction) pair. Field uses the
// API-facing name, e.g. "createdAt".
type SortOrder struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// sortColumns whitelists the sortable fields and maps them to columns.
var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"isCompleted": "is_completed",
	"dueDate":     "due_date",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// DefaultSort is applied when a request carries no sort orders.
var DefaultSort = []SortOrder{{Field: "createdAt", Direction: Desc}}

// SortableFields returns the whitelisted sort field names in a stable order.
func SortableFields() []string {
	fields := make([]string, 0, len(sortColumns))
	for f := range sortColumns {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validate checks the field against the whitelist and the direction.
func (o SortOrder) Validate() error {
	if _, ok := sortColumns[o.Field]; !ok {
		return fmt.Errorf("%w: %q (sortable fields: %s)",
			ErrInvalidSortField, o.Field, strings.Join(SortableFields(), ", "))
	}
	if o.Direction != Asc && o.Direction != Desc {
		return fmt.Errorf("%w: %q (expected asc or desc)", ErrInvalidSortDirection, o.Direction)
	}
	return nil
}

// ParseSortOrder parses "field" or "field,direction". A missing direction
// means ascending; the direction is case-insensitive.
func ParseSortOrder(raw string) (SortOrder, error) {
	field, dir, hasDir := strings.Cut(strings.TrimSpace(raw), ",")
	order := SortOrder{Field: strings.TrimSpace(field), Direction: Asc}
	if hasDir {
		order.Direction = SortDirection(strings.ToLower(strings.TrimSpace(dir)))
	}
	if err := order.Validate(); err != nil {
		return SortOrder{}, err
	}
	return order, nil
}

// PageRequest selects a zero-based page of a sorted result set.
type PageRequest struct {
	Page int         `json:"page"`
	Size int         `json:"size"`
	Sort []SortOrder `json:"sort,omitempty"`
}

// Validate checks page bounds and every sort order.
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page must not be negative, got %d", ErrInvalidPageRequest, p.Page)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidPageRequest, p.Size)
	}
	if p.Page > MaxPage(p.Size) {
		return fmt.Errorf("%w: page must not exceed %d for size %d, got %d", ErrInvalidPageRequest, MaxPage(p.Size), p.Size, p.Page)
	}
	for _, o := range p.Sort {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxPage returns the largest page number whose offset and end row both fit
// in an int for the given positive size.
func MaxPage(size int) int {
	return math.MaxInt/size - 1
}

// Offset returns the number of rows preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Orders returns the requested sort orders, or DefaultSort when none were given.
func (p PageRequest) Orders() []SortOrder {
	if len(p.Sort) == 0 {
		return DefaultSort
	}
	return p.Sort
}

// Page is one slice of an ordered result set plus its position metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage builds a Page for content fetched with req out of total matching rows.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Page,
		Size:          req.Size,
		First:         req.Page == 0,
		Last:          req.Page+1 >= totalPages,
	}
}

// MapPage converts the content of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, fn(item))
	}
	return Page[U]{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
		First:         p.First,
		Last:          p.Last,
	}
}
