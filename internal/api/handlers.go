package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulexconde/npsdash/internal/archive"
	"github.com/paulexconde/npsdash/internal/dashboard"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/httputil"
	"github.com/paulexconde/npsdash/internal/pkg/paginator"
	"github.com/paulexconde/npsdash/internal/services"
	"go.uber.org/zap"
)

// Clock reports the database time.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

type Handlers struct {
	surveys     services.SurveyService
	clock       Clock
	archiver    *archive.Archiver
	pageSize    int
	topComments int
	logger      *zap.Logger
	now         func() time.Time
}

func NewHandlers(surveys services.SurveyService, clock Clock, archiver *archive.Archiver, pageSize, topComments int, logger *zap.Logger) *Handlers {
	return &Handlers{
		surveys:     surveys,
		clock:       clock,
		archiver:    archiver,
		pageSize:    pageSize,
		topComments: topComments,
		logger:      logger,
		now:         time.Now,
	}
}

// dataRequest is the body shared by the data, report and export endpoints.
type dataRequest struct {
	services.Selection
	Filter   string `json:"filter,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// sortSpec falls back to the default order. A field given without an order
// starts descending, like a header click.
func (req dataRequest) sortSpec() (services.SortSpec, error) {
	if req.Sort == "" && req.Order == "" {
		return services.DefaultSort, nil
	}

	spec := services.SortSpec{Field: services.DefaultSort.Field, Order: services.Desc}
	if req.Sort != "" {
		field, err := services.ParseSortField(req.Sort)
		if err != nil {
			return spec, err
		}
		spec.Field = field
	}
	if req.Order != "" {
		order, err := services.ParseSortOrder(req.Order)
		if err != nil {
			return spec, err
		}
		spec.Order = order
	}
	return spec, nil
}

type pagination struct {
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	TotalItems  int                `json:"totalItems"`
	PageSize    int                `json:"pageSize"`
	PrevPage    *int               `json:"prevPage"`
	NextPage    *int               `json:"nextPage"`
	Controls    paginator.Controls `json:"controls"`
}

type dataResponse struct {
	Rows       []models.Row      `json:"rows"`
	Pagination pagination        `json:"pagination"`
	Sort       services.SortSpec `json:"sort"`
}

// GET /api/projects
func (h *Handlers) Projects(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.logger, h.surveys.Catalog().Projects())
}

// GET /api/projects/{project}/campaigns
func (h *Handlers) Campaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.surveys.Catalog().Campaigns(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		httputil.Fault(w, h.logger, err)
		return
	}
	httputil.OK(w, h.logger, campaigns)
}

// POST /api/nps-data
func (h *Handlers) NPSData(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if !httputil.Decode(w, r, h.logger, &req) {
		return
	}
	spec, err := req.sortSpec()
	if err != nil {
		httputil.Fault(w, h.logger, err)
		return
	}

	rows, err := h.surveys.Fetch(r.Context(), req.Selection, req.Filter)
	if err != nil {
		httputil.Fault(w, h.logger, err)
		return
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = h.pageSize
	}
	view := dashboard.View(dashboard.FromRows(rows, spec, pageSize, req.Page))

	httputil.OK(w, h.logger, dataResponse{
		Rows: view.Page.Items,
		Pagination: pagination{
			CurrentPage: view.Page.CurrentPage,
			TotalPages:  view.Page.TotalPages,
			TotalItems:  view.Page.TotalItems,
			PageSize:    view.Page.Limit,
			PrevPage:    view.Page.PrevPage,
			NextPage:    view.Page.NextPage,
			Controls:    view.Page.Controls,
		},
		Sort: view.Sort,
	})
}

// POST /api/report
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if !httputil.Decode(w, r, h.logger, &req) {
		return
	}

	rows, err := h.surveys.Fetch(r.Context(), req.Selection, req.Filter)
	if err != nil {
		httputil.Fault(w, h.logger, err)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.topComments
	}
	httputil.OK(w, h.logger, services.BuildReport(rows, limit, h.surveys.Catalog().Location()))
}

// POST /api/export
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if !httputil.Decode(w, r, h.logger, &req) {
		return
	}

	rows, err := h.surveys.Fetch(r.Context(), req.Selection, req.Filter)
	if err != nil {
		httputil.Fault(w, h.logger, err)
		return
	}

	body, err := services.ExportCSV(rows, services.ExportOptions{Location: h.surveys.Catalog().Location()})
	if err != nil {
		httputil.InternalError(w, h.logger, err)
		return
	}

	name := services.ExportFileName(req.Project, h.now())
	if key, ok := h.archiver.Archive(name, body); ok {
		h.logger.Info("Export queued for archive", zap.String("key", key))
	}

	if err := httputil.Attachment(w, "text/csv; charset=utf-8", name, body); err != nil {
		h.logger.Warn("Export write failed", zap.Error(err))
	}
}

type testDBResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Time    *time.Time `json:"time,omitempty"`
}

// GET /api/test-db
func (h *Handlers) TestDB(w http.ResponseWriter, r *http.Request) {
	now, err := h.clock.Now(r.Context())
	if err != nil {
		h.logger.Error("Database test failed", zap.Error(err))
		httputil.JSON(w, h.logger, http.StatusInternalServerError, testDBResponse{
			Success: false,
			Message: "database connection failed",
		})
		return
	}
	httputil.OK(w, h.logger, testDBResponse{
		Success: true,
		Message: "database connection ok",
		Time:    &now,
	})
}
