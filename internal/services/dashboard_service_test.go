package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"

	"startupdash/internal/dataset"
	"startupdash/internal/infrastructure"
	"startupdash/internal/shared/testutil"
	"startupdash/pkg/contracts/domain"
)

func sampleDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	ds, err := dataset.Parse(context.Background(), bytes.NewReader(testutil.InvestmentsCSV(t, testutil.SampleRows()...)), dataset.Options{})
	require.NoError(t, err)
	return ds
}

func newDashboardService(t *testing.T) *DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewDashboardService(sampleDataset(t), DashboardConfig{
		DefaultYears: domain.YearRange{Min: 2000, Max: 2024},
		ChartWidth:   640,
		ChartHeight:  320,
	}, nil, nil, logger)
	require.NoError(t, err)
	return svc
}

func TestNewDashboardService_NilDataset(t *testing.T) {
	_, err := NewDashboardService(nil, DashboardConfig{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestDashboardService_Controls(t *testing.T) {
	svc := newDashboardService(t)

	c := svc.Controls(context.Background())
	assert.Equal(t, domain.YearRange{Min: 2007, Max: 2012}, c.YearBounds)
	assert.Equal(t, domain.FilterParams{YearMin: 2007, YearMax: 2012}, svc.DefaultParams())
	assert.Equal(t, svc.Dataset().Columns, svc.Columns())
}

func TestDashboardService_Dashboard(t *testing.T) {
	svc := newDashboardService(t)
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, svc.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 5, d.Count)
	assert.Len(t, d.TopCountries, 3)

	_, err = svc.Dashboard(ctx, domain.FilterParams{YearMin: 2020, YearMax: 2010})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestDashboardService_View(t *testing.T) {
	svc := newDashboardService(t)
	ctx := context.Background()

	v, err := svc.View(ctx, string(domain.ViewFoundingTrend), svc.DefaultParams())
	require.NoError(t, err)
	trend, ok := v.([]domain.YearCount)
	require.True(t, ok)
	assert.Len(t, trend, 4)

	_, err = svc.View(ctx, "pie-chart", svc.DefaultParams())
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestDashboardService_Chart(t *testing.T) {
	svc := newDashboardService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.Chart(ctx, &buf, string(domain.ViewTopCities), svc.DefaultParams()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())

	buf.Reset()
	err = svc.Chart(ctx, &buf, "unknown", svc.DefaultParams())
	assert.True(t, errors.Is(err, ErrViewNotFound))
	assert.Zero(t, buf.Len())
}

func TestDashboardService_Filtered(t *testing.T) {
	svc := newDashboardService(t)

	set, err := svc.Filtered(context.Background(), domain.FilterParams{YearMin: 2010, YearMax: 2010})
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "Ola", *set[0].Name)
	assert.Equal(t, "Paytm", *set[1].Name)
}

func TestDashboardService_ConcurrentReruns(t *testing.T) {
	svc := newDashboardService(t)
	want, err := svc.Dashboard(context.Background(), svc.DefaultParams())
	require.NoError(t, err)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			got, err := svc.Dashboard(ctx, svc.DefaultParams())
			if err != nil {
				return err
			}
			if got.Count != want.Count || len(got.TopSectors) != len(want.TopSectors) {
				return errors.New("rerun differs")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewDashboardService(sampleDataset(t), DashboardConfig{DefaultYears: domain.YearRange{Min: 2000, Max: 2024}}, nil, metrics, logger)
	require.NoError(t, err)

	_, err = svc.Dashboard(context.Background(), svc.DefaultParams())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["dashboard_builds_total"])
	assert.True(t, names["dashboard_build_duration_seconds"])
	assert.True(t, names["dataset_records"])
}
