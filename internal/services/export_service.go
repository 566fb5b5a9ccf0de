package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "startupdash/internal/errors"
	"startupdash/internal/exporter"
	"startupdash/internal/infrastructure"
	"startupdash/pkg/contracts/domain"
)

// RecordSource provides the filtered records an export is made of.
type RecordSource interface {
	Columns() []string
	Filtered(ctx context.Context, params domain.FilterParams) (domain.RecordSet, error)
}

// ExportConfig tunes the export service.
type ExportConfig struct {
	BaseName        string
	ArtifactTTL     time.Duration
	CleanupInterval time.Duration
}

// Artifact is a prepared export waiting to be downloaded.
type Artifact struct {
	ID          string              `json:"id"`
	FileName    string              `json:"file_name"`
	ContentType string              `json:"content_type"`
	Format      exporter.Format     `json:"format"`
	Rows        int                 `json:"rows"`
	Size        int                 `json:"size"`
	Params      domain.FilterParams `json:"params"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`

	Data []byte `json:"-"`
}

// ExportService renders filtered record sets for download, either straight
// to a writer or as an artifact kept for a limited time.
type ExportService struct {
	source    RecordSource
	artifacts *cache.Cache
	baseName  string
	ttl       time.Duration
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewExportService creates an export service.
func NewExportService(source RecordSource, cfg ExportConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = 10 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = cfg.ArtifactTTL / 2
	}

	return &ExportService{
		source:    source,
		artifacts: cache.New(cfg.ArtifactTTL, cfg.CleanupInterval),
		baseName:  cfg.BaseName,
		ttl:       cfg.ArtifactTTL,
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "export_service"),
	}
}

// FileName returns the download name for format.
func (s *ExportService) FileName(format exporter.Format) string {
	return format.FileName(s.baseName)
}

// ParseFormat resolves a user supplied format name.
func (s *ExportService) ParseFormat(name string) (exporter.Format, error) {
	f, err := exporter.ParseFormat(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// Write renders the filtered records for params to w and returns the row
// count. Output is buffered so a failure never leaves a partial download.
func (s *ExportService) Write(ctx context.Context, w io.Writer, format exporter.Format, params domain.FilterParams) (int, error) {
	data, rows, err := s.render(ctx, format, params)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return rows, nil
}

// Prepare renders an export and keeps it for download under a new id.
func (s *ExportService) Prepare(ctx context.Context, format exporter.Format, params domain.FilterParams) (*Artifact, error) {
	data, rows, err := s.render(ctx, format, params)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a := &Artifact{
		ID:          uuid.New().String(),
		FileName:    s.FileName(format),
		ContentType: format.ContentType(),
		Format:      format,
		Rows:        rows,
		Size:        len(data),
		Params:      params,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
		Data:        data,
	}
	s.artifacts.Set(a.ID, a, cache.DefaultExpiration)

	if s.metrics != nil {
		s.metrics.ExportArtifacts.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	}
	s.logger.InfoContext(ctx, "export prepared",
		slog.String("id", a.ID),
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.Int("size", a.Size))

	return a, nil
}

// Artifact returns a prepared export that has not expired.
func (s *ExportService) Artifact(ctx context.Context, id string) (*Artifact, error) {
	v, ok := s.artifacts.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, id)
	}
	return v.(*Artifact), nil
}

// PendingArtifacts returns the number of artifacts held.
func (s *ExportService) PendingArtifacts() int {
	return s.artifacts.ItemCount()
}

func (s *ExportService) render(ctx context.Context, format exporter.Format, params domain.FilterParams) ([]byte, int, error) {
	records, err := s.source.Filtered(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, s.source.Columns(), records); err != nil {
		return nil, 0, apierrors.NewRenderError(fmt.Sprintf("render %s export", format), err)
	}

	infrastructure.RecordExport(ctx, s.metrics, string(format), records.Len())
	return buf.Bytes(), records.Len(), nil
}
