package intake

import (
	"time"

	"github.com/ehr/roster/pkg/pagination"
)

// DefaultLoadingDelay is how long a freshly mounted roster shows its
// loading indicator.
const DefaultLoadingDelay = 500 * time.Millisecond

// View is the derived state a roster renderer draws.
type View struct {
	Records    []Patient `json:"data"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
	Search     string    `json:"search"`
	SortField  SortField `json:"sort"`
	Ascending  bool      `json:"ascending"`
	Loading    bool      `json:"loading"`
	// OutOfRange is set when Page no longer points at data, e.g. after a
	// search shrank the result set. The controller does not correct it.
	OutOfRange bool `json:"out_of_range"`
}

// Controller holds the roster's UI parameters and recomputes the visible
// page from the store on every View call.
type Controller struct {
	store     Store
	loader    *Loader
	search    string
	sortField SortField
	ascending bool
	page      int
}

// NewController mounts a roster over store and starts its loading
// indicator.
func NewController(store Store, loadingDelay time.Duration) *Controller {
	return &Controller{
		store:     store,
		loader:    StartLoader(loadingDelay),
		sortField: SortByName,
		ascending: true,
		page:      pagination.DefaultPage,
	}
}

// SetSearch replaces the search text. The current page is kept as is.
func (c *Controller) SetSearch(text string) {
	c.search = text
}

// ToggleSort flips the direction when field is already selected, otherwise
// selects field in ascending order.
func (c *Controller) ToggleSort(field SortField) {
	if field == c.sortField {
		c.ascending = !c.ascending
		return
	}
	c.sortField = field
	c.ascending = true
}

// SetPage moves to page n without clamping.
func (c *Controller) SetPage(n int) {
	c.page = n
}

func (c *Controller) Query() Query {
	return Query{
		Search:    c.search,
		SortField: c.sortField,
		Ascending: c.ascending,
		Page:      c.page,
	}
}

// Loading reports whether the loading indicator is still showing.
func (c *Controller) Loading() bool {
	return c.loader.Loading()
}

// Ready is closed once the loading indicator clears.
func (c *Controller) Ready() <-chan struct{} {
	return c.loader.Done()
}

// View runs the list pipeline over the current store contents.
func (c *Controller) View() View {
	q := c.Query()
	res := Paginate(c.store.All(), q)
	pg := pagination.Params{Page: q.Page, Size: PageSize}
	return View{
		Records:    res.Page,
		Page:       q.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Search:     q.Search,
		SortField:  q.SortField,
		Ascending:  q.Ascending,
		Loading:    c.loader.Loading(),
		OutOfRange: !pg.InRange(res.Total),
	}
}

// Close unmounts the roster, cancelling a pending loading transition.
func (c *Controller) Close() {
	c.loader.Cancel()
}
