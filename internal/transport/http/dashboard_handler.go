package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"startupdash/internal/config"
	apierrors "startupdash/internal/errors"
	"startupdash/internal/exporter"
	"startupdash/internal/infrastructure"
	"startupdash/internal/middleware"
	"startupdash/internal/services"
	"startupdash/pkg/contracts/domain"
)

// Query parameters of the filter controls
const (
	paramYearMin = "year_min"
	paramYearMax = "year_max"
	paramSector  = "sector"
	paramFormat  = "format"

	maxYear = 9999
)

// DashboardHandler handles dashboard, chart and export requests
type DashboardHandler struct {
	dashboard    DashboardServiceInterface
	exports      ExportServiceInterface
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard DashboardServiceInterface, exports ExportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		dashboard:    dashboard,
		exports:      exports,
		validator:    middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetDashboard)
		r.Get("/controls", h.GetControls)
		r.Get("/views/{view}", h.GetView)

		r.With(h.validator.ValidateRequest).Post("/exports", h.PrepareExport)
	})

	// Binary downloads
	r.Get("/charts/{view}.png", h.GetChart)
	r.Get("/export", h.DownloadExport)
	r.Get("/export.{format}", h.DownloadExport)
	r.Get("/exports/{id}", h.DownloadArtifact)

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	d, err := h.dashboard.Dashboard(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   d,
		"count":  d.Count,
	})
}

// GetControls handles GET /api/dashboard/controls
func (h *DashboardHandler) GetControls(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.dashboard.Controls(r.Context()),
	})
}

// GetView handles GET /api/dashboard/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	v, err := h.dashboard.View(r.Context(), name, params)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"view":   name,
		"params": params,
		"data":   v,
	})
}

// GetChart handles GET /api/dashboard/charts/{view}.png
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.dashboard.Chart(r.Context(), &buf, name, params); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", config.MIMETypePNG)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// DownloadExport handles GET /api/dashboard/export.{format} and
// GET /api/dashboard/export?format=, which defaults to CSV.
func (h *DashboardHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")
	if name == "" {
		var ok bool
		name, ok = h.query.ValidateEnum(w, r, paramFormat, exporter.FormatNames(), string(exporter.FormatCSV))
		if !ok {
			return
		}
	}

	format, err := h.exports.ParseFormat(name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	rows, err := h.exports.Write(r.Context(), &buf, format, params)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "export downloaded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("format", string(format)),
		slog.Int("rows", rows))

	writeAttachment(w, format.ContentType(), h.exports.FileName(format), buf.Bytes())
}

// exportRequest is the body of POST /exports. Omitted filter fields keep
// the dashboard defaults.
type exportRequest struct {
	Format string `json:"format" validate:"required"`
	domain.FilterParams
}

// PrepareExport handles POST /api/dashboard/exports
func (h *DashboardHandler) PrepareExport(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{FilterParams: h.dashboard.DefaultParams()}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := h.exports.ParseFormat(req.Format)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	a, err := h.exports.Prepare(r.Context(), format, req.FilterParams)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"id":         a.ID,
			"file_name":  a.FileName,
			"rows":       a.Rows,
			"size":       a.Size,
			"expires_at": a.ExpiresAt.Format(time.RFC3339),
			"url":        strings.TrimSuffix(r.URL.Path, "/") + "/" + a.ID,
		},
	})
}

// DownloadArtifact handles GET /api/dashboard/exports/{id}
func (h *DashboardHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := h.exports.Artifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeAttachment(w, a.ContentType, a.FileName, a.Data)
}

// parseParams reads the filter controls from the query string. Missing
// years fall back to the dashboard defaults. On failure the error response
// has been written.
func (h *DashboardHandler) parseParams(w http.ResponseWriter, r *http.Request) (domain.FilterParams, bool) {
	defaults := h.dashboard.DefaultParams()

	yearMin, ok := h.query.ValidateInt(w, r, paramYearMin, 0, maxYear, defaults.YearMin)
	if !ok {
		return domain.FilterParams{}, false
	}
	yearMax, ok := h.query.ValidateInt(w, r, paramYearMax, 0, maxYear, defaults.YearMax)
	if !ok {
		return domain.FilterParams{}, false
	}

	params := domain.FilterParams{
		YearMin: yearMin,
		YearMax: yearMax,
		Sectors: h.query.StringList(r, paramSector),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.FilterParams{}, false
	}
	return params, true
}

// handleServiceError maps service errors to API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apierrors.AppError
	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidParameter.WithDetails(err.Error()))
	case errors.Is(err, services.ErrViewNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrViewNotFound.WithDetails(
			fmt.Sprintf("known views: %s", viewList())))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat.WithDetails(err.Error()))
	case errors.Is(err, services.ErrExportNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrExportNotFound)
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
	case errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeRender:
		infrastructure.WithError(h.logger, err).ErrorContext(r.Context(), "render failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		h.errorHandler.HandleError(w, r, apierrors.ErrRenderFailed)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func viewList() string {
	names := make([]string, len(domain.AllViews))
	for i, v := range domain.AllViews {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
