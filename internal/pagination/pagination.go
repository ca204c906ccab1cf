// Package pagination computes client side pages over an in-memory collection.
package pagination

const (
	// DefaultItemsPerPage is the page size of the directory table.
	DefaultItemsPerPage = 5
	// MaxVisiblePages caps the page-number window.
	MaxVisiblePages = 5
)

// Page is the visible slice of a collection plus the numbers needed to render it.
type Page[T any] struct {
	Items        []T
	CurrentPage  int
	ItemsPerPage int
	TotalItems   int
	TotalPages   int
	StartIndex   int
	EndIndex     int
}

// TotalPages returns ceil(count / perPage).
func TotalPages(count, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	if count <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// Paginate slices items for currentPage. An out of range page yields no items.
func Paginate[T any](items []T, currentPage, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	start := (currentPage - 1) * perPage
	end := start + perPage

	visible := []T{}
	if currentPage >= 1 && start < len(items) {
		visible = items[start:min(end, len(items))]
	}

	return Page[T]{
		Items:        visible,
		CurrentPage:  currentPage,
		ItemsPerPage: perPage,
		TotalItems:   len(items),
		TotalPages:   TotalPages(len(items), perPage),
		StartIndex:   start,
		EndIndex:     end,
	}
}

// ShownFrom is the 1-based position of the first visible item.
func (p Page[T]) ShownFrom() int {
	return p.StartIndex + 1
}

// ShownTo is the 1-based position of the last visible item.
func (p Page[T]) ShownTo() int {
	return min(p.EndIndex, p.TotalItems)
}

// HasPrevious reports whether the previous control is enabled.
func (p Page[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether the next control is enabled.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// ShowControls reports whether the collection spans more than one page.
func (p Page[T]) ShowControls() bool {
	return p.TotalItems > p.ItemsPerPage
}

// Window returns the navigable page numbers around the current page.
func (p Page[T]) Window() []int {
	return PageWindow(p.CurrentPage, p.TotalPages)
}

// PageWindow returns at most MaxVisiblePages contiguous page numbers.
func PageWindow(currentPage, totalPages int) []int {
	var first, last int
	switch {
	case totalPages <= MaxVisiblePages:
		first, last = 1, totalPages
	case currentPage <= 3:
		first, last = 1, MaxVisiblePages
	case currentPage >= totalPages-2:
		first, last = totalPages-MaxVisiblePages+1, totalPages
	default:
		first, last = currentPage-2, currentPage+2
	}

	pages := make([]int, 0, MaxVisiblePages)
	for i := first; i <= last; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Controller is the pagination view-state: the current page over a collection of known size.
type Controller struct {
	current int
	perPage int
	total   int
}

// NewController starts on page one.
func NewController(perPage int) *Controller {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	return &Controller{current: 1, perPage: perPage}
}

// Restore rebuilds a controller from persisted state without clamping.
func Restore(current, perPage, count int) *Controller {
	c := NewController(perPage)
	c.current = current
	c.total = count
	return c
}

// Current returns the current page.
func (c *Controller) Current() int {
	return c.current
}

// TotalPages returns the page count for the current collection size.
func (c *Controller) TotalPages() int {
	return TotalPages(c.total, c.perPage)
}

// GoTo sets the page unconditionally.
func (c *Controller) GoTo(page int) {
	c.current = page
}

// Previous moves back one page unless already on the first.
func (c *Controller) Previous() bool {
	if c.current > 1 {
		c.current--
		return true
	}
	return false
}

// Next moves forward one page unless already on the last.
func (c *Controller) Next() bool {
	if c.current < c.TotalPages() {
		c.current++
		return true
	}
	return false
}

// SetTotal records a new collection size and pulls the current page back into range.
func (c *Controller) SetTotal(count int) {
	c.total = count
	c.current = min(c.current, max(1, c.TotalPages()))
}
