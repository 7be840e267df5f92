package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/roster/pkg/pagination"
)

const listRouteName = "intake.listPatients"

type Handler struct {
	svc    *Service
	loader *Loader
}

// NewHandler serves the roster over HTTP. loader drives the "loading" flag
// of list responses; pass a Ready loader to disable it.
func NewHandler(svc *Service, loader *Loader) *Handler {
	if loader == nil {
		loader = StartLoader(0)
	}
	return &Handler{svc: svc, loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients).Name = listRouteName
	api.POST("/patients", h.CreatePatient)
	api.POST("/patients/validate", h.ValidatePatient)
}

type listResponse struct {
	*pagination.Response
	Loading bool      `json:"loading"`
	Sort    SortField `json:"sort"`
	Order   string    `json:"order"`
	Search  string    `json:"search"`
}

type validationResponse struct {
	Valid  bool        `json:"valid"`
	Errors FieldErrors `json:"errors"`
}

func (h *Handler) ListPatients(c echo.Context) error {
	q, err := queryFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res := h.svc.ListPatients(q)
	pg := pagination.Params{Page: q.Page, Size: PageSize}
	return c.JSON(http.StatusOK, listResponse{
		Response: pagination.NewResponse(res.Page, res.Total, pg),
		Loading:  h.loader.Loading(),
		Sort:     q.SortField,
		Order:    orderName(q.Ascending),
		Search:   q.Search,
	})
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return bindError(err)
	}
	created, err := h.svc.CreatePatient(c.Request().Context(), p)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: ve.Fields})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if loc := c.Echo().Reverse(listRouteName); loc != "" {
		c.Response().Header().Set(echo.HeaderLocation, loc)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ValidatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return bindError(err)
	}
	errs := h.svc.ValidatePatient(p)
	return c.JSON(http.StatusOK, validationResponse{Valid: len(errs) == 0, Errors: errs})
}

// bindError reports a bind failure as 400 unless reading the body already
// produced a more specific status, such as 413 from the body limit.
func bindError(err error) error {
	var he *echo.HTTPError
	for e := err; errors.As(e, &he); e = he.Internal {
		if he.Code != http.StatusBadRequest {
			return he
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func queryFromContext(c echo.Context) (Query, error) {
	pg, err := pagination.FromContext(c, PageSize)
	if err != nil {
		return Query{}, err
	}
	field, err := ParseSortField(c.QueryParam("sort"))
	if err != nil {
		return Query{}, err
	}
	asc := true
	switch c.QueryParam("order") {
	case "", "asc":
	case "desc":
		asc = false
	default:
		return Query{}, errors.New("order must be asc or desc")
	}
	return Query{
		Search:    c.QueryParam("search"),
		SortField: field,
		Ascending: asc,
		Page:      pg.Page,
	}, nil
}

func orderName(asc bool) string {
	if asc {
		return "asc"
	}
	return "desc"
}
