package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"startupdash/internal/exporter"
	"startupdash/internal/shared/testutil"
	"startupdash/pkg/contracts/domain"
)

// MockRecordSource is a mock for RecordSource
type MockRecordSource struct {
	mock.Mock
}

func (m *MockRecordSource) Columns() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockRecordSource) Filtered(ctx context.Context, params domain.FilterParams) (domain.RecordSet, error) {
	args := m.Called(ctx, params)
	set, _ := args.Get(0).(domain.RecordSet)
	return set, args.Error(1)
}

func newExportService(t *testing.T, source RecordSource, ttl time.Duration) *ExportService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewExportService(source, ExportConfig{
		BaseName:        "filtered_indian_startups",
		ArtifactTTL:     ttl,
		CleanupInterval: time.Minute,
	}, nil, logger)
}

func TestExportService_Write(t *testing.T) {
	params := domain.FilterParams{YearMin: 2000, YearMax: 2024}
	source := &MockRecordSource{}
	source.On("Columns").Return([]string{"name", "market"})
	source.On("Filtered", mock.Anything, params).Return(domain.RecordSet{
		{Name: domain.StringPtr("Flipkart"), Market: "E-Commerce"},
		{Market: "Unknown"},
	}, nil)

	svc := newExportService(t, source, time.Minute)

	var buf bytes.Buffer
	rows, err := svc.Write(context.Background(), &buf, exporter.FormatCSV, params)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "name,market\nFlipkart,E-Commerce\n,Unknown\n", buf.String())
	source.AssertExpectations(t)
}

func TestExportService_WritePropagatesFilterError(t *testing.T) {
	params := domain.FilterParams{YearMin: 2024, YearMax: 2000}
	source := &MockRecordSource{}
	source.On("Filtered", mock.Anything, params).Return(nil, ErrInvalidFilter)

	svc := newExportService(t, source, time.Minute)

	var buf bytes.Buffer
	_, err := svc.Write(context.Background(), &buf, exporter.FormatCSV, params)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Zero(t, buf.Len())
}

func TestExportService_PrepareAndFetch(t *testing.T) {
	params := domain.FilterParams{YearMin: 2000, YearMax: 2024, Sectors: []string{"E-Commerce"}}
	source := &MockRecordSource{}
	source.On("Columns").Return([]string{"name"})
	source.On("Filtered", mock.Anything, params).Return(domain.RecordSet{{Name: domain.StringPtr("Flipkart")}}, nil)

	svc := newExportService(t, source, time.Minute)
	ctx := context.Background()

	a, err := svc.Prepare(ctx, exporter.FormatXLSX, params)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "filtered_indian_startups.xlsx", a.FileName)
	assert.Equal(t, exporter.FormatXLSX.ContentType(), a.ContentType)
	assert.Equal(t, 1, a.Rows)
	assert.Equal(t, len(a.Data), a.Size)
	assert.Equal(t, 1, svc.PendingArtifacts())

	got, err := svc.Artifact(ctx, a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = svc.Artifact(ctx, "no-such-id")
	assert.True(t, errors.Is(err, ErrExportNotFound))
}

func TestExportService_ArtifactExpires(t *testing.T) {
	params := domain.FilterParams{YearMin: 2000, YearMax: 2024}
	source := &MockRecordSource{}
	source.On("Columns").Return([]string{"name"})
	source.On("Filtered", mock.Anything, params).Return(domain.RecordSet{}, nil)

	svc := newExportService(t, source, 20*time.Millisecond)

	a, err := svc.Prepare(context.Background(), exporter.FormatCSV, params)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := svc.Artifact(context.Background(), a.ID)
		return errors.Is(err, ErrExportNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestExportService_Formats(t *testing.T) {
	svc := newExportService(t, &MockRecordSource{}, time.Minute)

	f, err := svc.ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, exporter.FormatCSV, f)
	assert.Equal(t, "filtered_indian_startups.csv", svc.FileName(f))

	_, err = svc.ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
