package http

import (
	"context"
	"io"

	"startupdash/internal/exporter"
	"startupdash/internal/services"
	"startupdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	Controls(ctx context.Context) domain.Controls
	DefaultParams() domain.FilterParams
	Dashboard(ctx context.Context, params domain.FilterParams) (domain.Dashboard, error)
	View(ctx context.Context, name string, params domain.FilterParams) (interface{}, error)
	Chart(ctx context.Context, w io.Writer, name string, params domain.FilterParams) error
}

// ExportServiceInterface defines the export operations the handlers need
type ExportServiceInterface interface {
	ParseFormat(name string) (exporter.Format, error)
	FileName(format exporter.Format) string
	Write(ctx context.Context, w io.Writer, format exporter.Format, params domain.FilterParams) (int, error)
	Prepare(ctx context.Context, format exporter.Format, params domain.FilterParams) (*services.Artifact, error)
	Artifact(ctx context.Context, id string) (*services.Artifact, error)
}

// Ensure the concrete services satisfy the interfaces
var (
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ ExportServiceInterface    = (*services.ExportService)(nil)
)
