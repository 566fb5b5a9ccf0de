package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"startupdash/internal/analytics"
	"startupdash/internal/charts"
	"startupdash/internal/dataset"
	apierrors "startupdash/internal/errors"
	"startupdash/internal/infrastructure"
	"startupdash/pkg/contracts/domain"
)

// DashboardConfig tunes the dashboard service.
type DashboardConfig struct {
	TopN         int
	DefaultYears domain.YearRange
	ChartWidth   int
	ChartHeight  int
}

// DashboardService runs the filter-and-aggregate pipeline over the loaded
// dataset. The dataset is never modified, so the service is safe for
// concurrent use.
type DashboardService struct {
	ds       *domain.Dataset
	controls domain.Controls
	topN     int
	renderer *charts.Renderer
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service for ds. Tracer and metrics
// may be nil.
func NewDashboardService(ds *domain.Dataset, cfg DashboardConfig, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*DashboardService, error) {
	if ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if cfg.TopN <= 0 {
		cfg.TopN = analytics.DefaultTopN
	}

	s := &DashboardService{
		ds:       ds,
		controls: dataset.Controls(ds, cfg.DefaultYears),
		topN:     cfg.TopN,
		renderer: charts.NewRenderer(cfg.ChartWidth, cfg.ChartHeight),
		tracer:   tracer,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
	}

	if metrics != nil {
		metrics.DatasetRecords.Record(context.Background(), int64(ds.Full.Len()), metric.WithAttributes(attribute.String("set", "full")))
		metrics.DatasetRecords.Record(context.Background(), int64(ds.Country.Len()), metric.WithAttributes(attribute.String("set", "country")))
	}

	s.logger.Info("DashboardService initialized",
		slog.Int("records", ds.Full.Len()),
		slog.Int("country_records", ds.Country.Len()),
		slog.Int("top_n", s.topN),
		slog.Int("year_min", s.controls.YearBounds.Min),
		slog.Int("year_max", s.controls.YearBounds.Max),
		slog.Int("sectors", len(s.controls.SectorOptions)))

	return s, nil
}

// Dataset returns the loaded dataset.
func (s *DashboardService) Dataset() *domain.Dataset {
	return s.ds
}

// Columns returns the dataset column schema.
func (s *DashboardService) Columns() []string {
	return s.ds.Columns
}

// Controls returns the filter widgets.
func (s *DashboardService) Controls(ctx context.Context) domain.Controls {
	return s.controls
}

// DefaultParams returns the initial selection.
func (s *DashboardService) DefaultParams() domain.FilterParams {
	return s.controls.DefaultParams()
}

// Dashboard runs one rerun for params.
func (s *DashboardService) Dashboard(ctx context.Context, params domain.FilterParams) (domain.Dashboard, error) {
	if err := checkParams(params); err != nil {
		return domain.Dashboard{}, err
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(paramAttrs(params)...))
	defer span.End()

	start := time.Now()
	d := analytics.Build(s.ds, params, s.topN)
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("dashboard.count", d.Count))
	infrastructure.RecordDashboardBuild(ctx, s.metrics, "dashboard", duration, d.Count)

	s.logger.DebugContext(ctx, "dashboard built",
		slog.Int("year_min", params.YearMin),
		slog.Int("year_max", params.YearMax),
		slog.Any("sectors", params.Sectors),
		slog.Int("count", d.Count),
		slog.Duration("duration", duration))

	return d, nil
}

// View returns a single view of the rerun for params.
func (s *DashboardService) View(ctx context.Context, name string, params domain.FilterParams) (interface{}, error) {
	view, ok := domain.ParseViewName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}

	d, err := s.Dashboard(ctx, params)
	if err != nil {
		return nil, err
	}

	v, _ := d.View(view)
	return v, nil
}

// Chart renders a view for params as PNG into w.
func (s *DashboardService) Chart(ctx context.Context, w io.Writer, name string, params domain.FilterParams) error {
	view, ok := domain.ParseViewName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}

	d, err := s.Dashboard(ctx, params)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.chart", trace.WithAttributes(attribute.String("chart.view", name)))
	defer span.End()

	res, err := s.renderer.Render(w, view, d)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return apierrors.NewRenderError("render "+name+" chart", err)
	}

	if res.Blank {
		s.logger.DebugContext(ctx, "chart rendered blank",
			slog.String("view", name),
			slog.String("reason", res.Cause.Error()))
	}
	if s.metrics != nil {
		s.metrics.ChartRenders.Add(ctx, 1, metric.WithAttributes(
			attribute.String("view", name),
			attribute.Bool("blank", res.Blank),
		))
	}
	return nil
}

// Filtered returns the filtered country subset for params.
func (s *DashboardService) Filtered(ctx context.Context, params domain.FilterParams) (domain.RecordSet, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "dashboard.filter", trace.WithAttributes(paramAttrs(params)...))
	defer span.End()

	filtered := analytics.Filter(s.ds.Country, params)
	span.SetAttributes(attribute.Int("dashboard.count", filtered.Len()))
	return filtered, nil
}

// checkParams guards callers that bypass request validation.
func checkParams(p domain.FilterParams) error {
	if p.YearMin > p.YearMax {
		return fmt.Errorf("%w: year_min %d is after year_max %d", ErrInvalidFilter, p.YearMin, p.YearMax)
	}
	return nil
}

func paramAttrs(p domain.FilterParams) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("filter.year_min", p.YearMin),
		attribute.Int("filter.year_max", p.YearMax),
		attribute.StringSlice("filter.sectors", p.Sectors),
	}
}
