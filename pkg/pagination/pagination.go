package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const DefaultPage = 1

// Params holds page-number pagination parameters extracted from a request.
type Params struct {
	Page int
	Size int
}

// FromContext extracts the page number from the echo context. A missing
// page defaults to 1; a value that is not a positive integer is an error.
// Pages past the end are accepted and simply produce an empty page.
func FromContext(c echo.Context, size int) (Params, error) {
	p := Params{Page: DefaultPage, Size: size}
	raw := c.QueryParam("page")
	if raw == "" {
		return p, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return p, fmt.Errorf("invalid page %q: %w", raw, err)
	}
	if page < 1 {
		return p, fmt.Errorf("invalid page %d: must be >= 1", page)
	}
	p.Page = page
	return p, nil
}

// TotalPages returns ceil(total/size), or 0 when there is nothing to show.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Bounds returns the half-open index range [start, end) of the given page
// clipped to total. Out-of-range pages yield start == end.
func Bounds(page, size, total int) (start, end int) {
	if page < 1 || size <= 0 {
		return 0, 0
	}
	start = (page - 1) * size
	if start >= total {
		return total, total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// Offset returns the index of the first item on the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// HasNext returns true if there are more pages after the current one.
func (p Params) HasNext(total int) bool {
	return p.Page < TotalPages(total, p.Size)
}

// HasPrevious returns true if there are pages before the current one.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}

// NextPage returns the following page number, clamped to the last page.
func (p Params) NextPage(total int) int {
	last := TotalPages(total, p.Size)
	if p.Page >= last {
		if last == 0 {
			return DefaultPage
		}
		return last
	}
	return p.Page + 1
}

// PreviousPage returns the preceding page number.
// Returns 1 if the result would fall before the first page.
func (p Params) PreviousPage() int {
	prev := p.Page - 1
	if prev < DefaultPage {
		return DefaultPage
	}
	return prev
}

// InRange reports whether the page points at existing data. An empty result
// set is considered in range for any page so that renderers show the
// "not found" state instead of a stale-page warning.
func (p Params) InRange(total int) bool {
	if total == 0 {
		return true
	}
	return p.Page >= 1 && p.Page <= TotalPages(total, p.Size)
}

// Response wraps a paginated API response.
type Response struct {
	Data        interface{} `json:"data"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	Total       int         `json:"total"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
	OutOfRange  bool        `json:"out_of_range"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:        data,
		Page:        p.Page,
		PageSize:    p.Size,
		Total:       total,
		TotalPages:  TotalPages(total, p.Size),
		HasNext:     p.HasNext(total),
		HasPrevious: p.HasPrevious(),
		OutOfRange:  !p.InRange(total),
	}
}
