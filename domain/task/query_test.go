package task

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Kind(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   FilterKind
	}{
		{name: "empty", filter: Filter{}, want: FilterNone},
		{name: "status", filter: Filter{IsCompleted: boolPtr(false)}, want: FilterByStatus},
		{name: "title", filter: Filter{Title: "milk"}, want: FilterByTitle},
		{name: "both", filter: Filter{IsCompleted: boolPtr(true), Title: "milk"}, want: FilterByStatusAndTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Kind())
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    SortOrder
		wantErr error
	}{
		{name: "field and direction", raw: "createdAt,desc", want: SortOrder{Field: "createdAt", Direction: Desc}},
		{name: "bare field is ascending", raw: "title", want: SortOrder{Field: "title", Direction: Asc}},
		{name: "direction is case-insensitive", raw: "dueDate,DESC", want: SortOrder{Field: "dueDate", Direction: Desc}},
		{name: "whitespace is trimmed", raw: " id , asc ", want: SortOrder{Field: "id", Direction: Asc}},
		{name: "unknown field", raw: "priority,asc", wantErr: ErrInvalidSortField},
		{name: "column name is not a field", raw: "created_at", wantErr: ErrInvalidSortField},
		{name: "empty", raw: "", wantErr: ErrInvalidSortField},
		{name: "unknown direction", raw: "title,sideways", wantErr: ErrInvalidSortDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortOrder(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageRequest_Orders(t *testing.T) {
	assert.Equal(t, DefaultSort, PageRequest{Size: 10}.Orders())

	custom := []SortOrder{{Field: "title", Direction: Asc}}
	assert.Equal(t, custom, PageRequest{Size: 10, Sort: custom}.Orders())
}

func TestPageRequest_Validate_PageBound(t *testing.T) {
	assert.NoError(t, PageRequest{Page: MaxPage(10), Size: 10}.Validate())
	assert.NoError(t, PageRequest{Page: math.MaxInt - 1, Size: 1}.Validate())

	tests := []PageRequest{
		{Page: 1000000000000000000, Size: 10},
		{Page: MaxPage(10) + 1, Size: 10},
		{Page: math.MaxInt, Size: 1},
		{Page: math.MaxInt / 2, Size: 2},
	}
	for _, req := range tests {
		err := req.Validate()
		assert.ErrorIs(t, err, ErrInvalidPageRequest, "page=%d size=%d", req.Page, req.Size)
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 10}.Offset())
	assert.Equal(t, 30, PageRequest{Page: 3, Size: 10}.Offset())

	last := PageRequest{Page: MaxPage(10), Size: 10}
	assert.Positive(t, last.Offset())
	assert.LessOrEqual(t, last.Offset(), math.MaxInt-10)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name           string
		content        []int
		req            PageRequest
		total          int64
		wantTotalPages int
		wantFirst      bool
		wantLast       bool
	}{
		{name: "first of three", content: []int{1, 2}, req: PageRequest{Page: 0, Size: 2}, total: 5, wantTotalPages: 3, wantFirst: true, wantLast: false},
		{name: "last of three", content: []int{5}, req: PageRequest{Page: 2, Size: 2}, total: 5, wantTotalPages: 3, wantFirst: false, wantLast: true},
		{name: "exact fit", content: []int{1, 2}, req: PageRequest{Page: 0, Size: 2}, total: 2, wantTotalPages: 1, wantFirst: true, wantLast: true},
		{name: "empty result", content: nil, req: PageRequest{Page: 0, Size: 10}, total: 0, wantTotalPages: 0, wantFirst: true, wantLast: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.content, tt.req, tt.total)
			assert.NotNil(t, page.Content)
			assert.Len(t, page.Content, len(tt.content))
			assert.Equal(t, tt.total, page.TotalElements)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
			assert.Equal(t, tt.req.Page, page.Number)
			assert.Equal(t, tt.req.Size, page.Size)
			assert.Equal(t, tt.wantFirst, page.First)
			assert.Equal(t, tt.wantLast, page.Last)
		})
	}
}

func TestMapPage(t *testing.T) {
	page := NewPage([]int{1, 2}, PageRequest{Page: 1, Size: 2}, 6)

	mapped := MapPage(page, func(n int) string { return string(rune('a' + n - 1)) })

	assert.Equal(t, []string{"a", "b"}, mapped.Content)
	assert.Equal(t, page.TotalElements, mapped.TotalElements)
	assert.Equal(t, page.TotalPages, mapped.TotalPages)
	assert.Equal(t, page.Number, mapped.Number)
	assert.Equal(t, page.First, mapped.First)
	assert.Equal(t, page.Last, mapped.Last)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%milk%", likePattern("milk"))
	assert.Equal(t, `%50\% off%`, likePattern("50% off"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\tmp%`, likePattern(`c:\tmp`))
}
