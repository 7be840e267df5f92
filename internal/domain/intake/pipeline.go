package intake

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ehr/roster/pkg/pagination"
)

// PageSize is the fixed number of rows on one roster page.
const PageSize = 10

// SortField selects the column the roster is ordered by.
type SortField string

const (
	SortByName          SortField = FieldNama
	SortByAdmissionDate SortField = FieldTanggalMasuk
)

// ParseSortField accepts the wire names ("nama", "tanggalMasuk") and the
// descriptive aliases ("name", "admissionDate"). An empty string selects
// SortByName.
func ParseSortField(s string) (SortField, error) {
	switch s {
	case "", FieldNama, "name":
		return SortByName, nil
	case FieldTanggalMasuk, "admissionDate":
		return SortByAdmissionDate, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// Query holds the list parameters driven by the roster UI.
type Query struct {
	Search    string
	SortField SortField
	Ascending bool
	Page      int
}

// Result is one page of the filtered, sorted roster.
type Result struct {
	Page       []Patient
	TotalPages int
	// Total is the number of records that matched the search.
	Total int
}

// Filter keeps records whose name contains search case-insensitively or
// whose NIK contains search verbatim. An empty search keeps everything.
func Filter(records []Patient, search string) []Patient {
	out := make([]Patient, 0, len(records))
	if search == "" {
		return append(out, records...)
	}
	fold := cases.Fold()
	needle := fold.String(search)
	for _, p := range records {
		if strings.Contains(fold.String(p.Nama), needle) || strings.Contains(p.NIK, search) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a stably sorted copy of records. Names compare
// case-insensitively; admission dates compare as text, which orders
// correctly because they are YYYY-MM-DD.
func Sort(records []Patient, field SortField, ascending bool) []Patient {
	out := make([]Patient, len(records))
	copy(out, records)

	key := sortKey(field)
	keys := make([]string, len(out))
	for i, p := range out {
		keys[i] = key(p)
	}
	sort.Stable(byKey{patients: out, keys: keys, ascending: ascending})
	return out
}

func sortKey(field SortField) func(Patient) string {
	if field == SortByAdmissionDate {
		return func(p Patient) string { return p.TanggalMasuk }
	}
	fold := cases.Fold()
	return func(p Patient) string { return fold.String(p.Nama) }
}

type byKey struct {
	patients  []Patient
	keys      []string
	ascending bool
}

func (b byKey) Len() int { return len(b.patients) }

func (b byKey) Less(i, j int) bool {
	if b.ascending {
		return b.keys[i] < b.keys[j]
	}
	return b.keys[i] > b.keys[j]
}

func (b byKey) Swap(i, j int) {
	b.patients[i], b.patients[j] = b.patients[j], b.patients[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Paginate runs filter, sort and page slicing over records. A page outside
// [1, TotalPages] yields an empty Page; clamping is the caller's decision.
func Paginate(records []Patient, q Query) Result {
	filtered := Filter(records, q.Search)
	sorted := Sort(filtered, q.SortField, q.Ascending)

	total := len(sorted)
	start, end := pagination.Bounds(q.Page, PageSize, total)
	page := make([]Patient, end-start)
	copy(page, sorted[start:end])

	return Result{
		Page:       page,
		TotalPages: pagination.TotalPages(total, PageSize),
		Total:      total,
	}
}
