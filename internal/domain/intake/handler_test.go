package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *MemoryStore, *echo.Echo) {
	svc, store, _ := newTestService()
	h := NewHandler(svc, nil)
	e := echo.New()
	return h, store, e
}

type listBody struct {
	Data        []Patient `json:"data"`
	Page        int       `json:"page"`
	PageSize    int       `json:"page_size"`
	Total       int       `json:"total"`
	TotalPages  int       `json:"total_pages"`
	HasNext     bool      `json:"has_next"`
	HasPrevious bool      `json:"has_previous"`
	OutOfRange  bool      `json:"out_of_range"`
	Loading     bool      `json:"loading"`
	Sort        string    `json:"sort"`
	Order       string    `json:"order"`
	Search      string    `json:"search"`
}

func TestHandler_CreatePatient(t *testing.T) {
	h, store, e := newTestHandler()

	body := `{"nama":"Siti","nik":"1234567890123456","diagnosa":"Flu","tanggalMasuk":"2024-01-05","dokter":"Dr. A","ruangan":"R1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Nama != "Siti" {
		t.Errorf("expected Siti, got %s", p.Nama)
	}
	if p.ID == "" {
		t.Error("expected generated id in response")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored record, got %d", store.Len())
	}
}

func TestHandler_CreatePatient_ValidationFailure(t *testing.T) {
	h, store, e := newTestHandler()

	body := `{"nama":"","nik":"123","diagnosa":"","tanggalMasuk":"","dokter":"","ruangan":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("validation failures are returned as data, got error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}

	var resp struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Errors) != 6 {
		t.Errorf("expected 6 field errors, got %v", resp.Errors)
	}
	if resp.Errors["nik"] != "NIK harus 16 digit" {
		t.Errorf("unexpected nik message %q", resp.Errors["nik"])
	}
	if store.Len() != 0 {
		t.Error("rejected submission must not be stored")
	}
}

func TestHandler_CreatePatient_BadJSON(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(`{"nama":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

type failingBody struct{ err error }

func (b failingBody) Read([]byte) (int, error) { return 0, b.err }

func TestHandler_BodyReadErrorKeepsStatus(t *testing.T) {
	h, store, e := newTestHandler()
	tooLarge := echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")

	for name, call := range map[string]echo.HandlerFunc{
		"create":   h.CreatePatient,
		"validate": h.ValidatePatient,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", failingBody{err: tooLarge})
			req.ContentLength = -1
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			err := call(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("expected 413, got %d", httpErr.Code)
			}
		})
	}
	if store.Len() != 0 {
		t.Errorf("expected nothing stored, got %d", store.Len())
	}
}

func TestHandler_ValidatePatient(t *testing.T) {
	h, store, e := newTestHandler()

	body := `{"nama":"Siti","nik":"12345"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/validate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ValidatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Valid {
		t.Error("expected valid=false")
	}
	if _, ok := resp.Errors["nama"]; ok {
		t.Error("did not expect a nama error")
	}
	if store.Len() != 0 {
		t.Error("validate must not store anything")
	}
}

func TestHandler_ListPatients(t *testing.T) {
	h, store, e := newTestHandler()
	for _, p := range rosterOf(25) {
		store.Add(p)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?page=3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body listBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 5 || body.TotalPages != 3 || body.Total != 25 {
		t.Errorf("unexpected page: len=%d pages=%d total=%d", len(body.Data), body.TotalPages, body.Total)
	}
	if body.PageSize != PageSize || body.Page != 3 {
		t.Errorf("unexpected paging fields %+v", body)
	}
	if body.HasNext || !body.HasPrevious {
		t.Errorf("expected last page navigation flags, got next=%v prev=%v", body.HasNext, body.HasPrevious)
	}
	if body.Sort != "nama" || body.Order != "asc" {
		t.Errorf("expected default nama/asc, got %s/%s", body.Sort, body.Order)
	}
}

func TestHandler_ListPatients_SearchSortOrder(t *testing.T) {
	h, store, e := newTestHandler()
	store.Add(Patient{ID: "1", Nama: "Budi", NIK: "3201123456000001", TanggalMasuk: "2024-01-02"})
	store.Add(Patient{ID: "2", Nama: "Amir", NIK: "3201000000000002", TanggalMasuk: "2024-01-03"})
	store.Add(Patient{ID: "3", Nama: "Citra", NIK: "3201000000000003", TanggalMasuk: "2024-01-01"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?sort=tanggalMasuk&order=desc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body listBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if got := names(body.Data); strings.Join(got, ",") != "Amir,Budi,Citra" {
		t.Errorf("unexpected order %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/patients?search=123456", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body = listBody{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if got := names(body.Data); len(got) != 1 || got[0] != "Budi" {
		t.Errorf("expected NIK search to match Budi only, got %v", got)
	}
	if body.Search != "123456" {
		t.Errorf("expected search echoed back, got %q", body.Search)
	}
}

func TestHandler_ListPatients_StalePage(t *testing.T) {
	h, store, e := newTestHandler()
	for _, p := range rosterOf(3) {
		store.Add(p)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?page=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body listBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Data) != 0 || !body.OutOfRange {
		t.Errorf("expected empty out-of-range page, got %+v", body)
	}
}

func TestHandler_ListPatients_BadParams(t *testing.T) {
	for _, qs := range []string{"page=abc", "page=0", "sort=dokter", "order=up"} {
		t.Run(qs, func(t *testing.T) {
			h, _, e := newTestHandler()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?"+qs, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.ListPatients(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", httpErr.Code)
			}
		})
	}
}

func TestHandler_ListPatients_Loading(t *testing.T) {
	svc, _, _ := newTestService()
	loader := StartLoader(time.Hour)
	defer loader.Cancel()
	h := NewHandler(svc, loader)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body listBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body.Loading {
		t.Error("expected loading=true while the loader is pending")
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, e := newTestHandler()
	api := e.Group("/api/v1")

	h.RegisterRoutes(api)

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Method+":"+r.Path] = true
	}

	expected := []string{
		"GET:/api/v1/patients",
		"POST:/api/v1/patients",
		"POST:/api/v1/patients/validate",
	}
	for _, path := range expected {
		if !routePaths[path] {
			t.Errorf("missing expected route: %s", path)
		}
	}
}

func TestHandler_CreateThenList(t *testing.T) {
	h, _, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api/v1"))

	body := `{"nama":"Siti","nik":"1234567890123456","diagnosa":"Flu","tanggalMasuk":"2024-01-05","dokter":"Dr. A","ruangan":"R1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/v1/patients" {
		t.Errorf("expected Location to point at the list view, got %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/patients?search=siti", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var list listBody
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Data) != 1 || list.Data[0].Nama != "Siti" {
		t.Errorf("expected the new record in the list, got %+v", list.Data)
	}
}
