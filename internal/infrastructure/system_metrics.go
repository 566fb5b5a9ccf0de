package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics are process gauges observed at collection time
type RuntimeMetrics struct {
	goroutines   metric.Int64ObservableGauge
	heapAlloc    metric.Int64ObservableGauge
	heapSys      metric.Int64ObservableGauge
	gcCount      metric.Int64ObservableCounter
	uptime       metric.Float64ObservableGauge
	registration metric.Registration
}

// RegisterRuntimeMetrics registers the runtime gauges on meter. Uptime is
// measured from start. Call Unregister to detach the callback.
func RegisterRuntimeMetrics(meter metric.Meter, start time.Time) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{}
	var err error

	if rm.goroutines, err = meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	); err != nil {
		return nil, fmt.Errorf("goroutines gauge: %w", err)
	}

	if rm.heapAlloc, err = meter.Int64ObservableGauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Heap bytes allocated by the Go runtime"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("heap alloc gauge: %w", err)
	}

	if rm.heapSys, err = meter.Int64ObservableGauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS by the Go runtime"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("heap sys gauge: %w", err)
	}

	if rm.gcCount, err = meter.Int64ObservableCounter(
		"system_gc_total",
		metric.WithDescription("Completed GC cycles"),
	); err != nil {
		return nil, fmt.Errorf("gc counter: %w", err)
	}

	if rm.uptime, err = meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Seconds since the process started serving"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("uptime gauge: %w", err)
	}

	rm.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		o.ObserveInt64(rm.goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(rm.heapAlloc, int64(mem.HeapAlloc))
		o.ObserveInt64(rm.heapSys, int64(mem.HeapSys))
		o.ObserveInt64(rm.gcCount, int64(mem.NumGC))
		o.ObserveFloat64(rm.uptime, time.Since(start).Seconds())
		return nil
	}, rm.goroutines, rm.heapAlloc, rm.heapSys, rm.gcCount, rm.uptime)
	if err != nil {
		return nil, fmt.Errorf("register runtime callback: %w", err)
	}

	return rm, nil
}

// Unregister detaches the collection callback
func (rm *RuntimeMetrics) Unregister() error {
	if rm == nil || rm.registration == nil {
		return nil
	}
	return rm.registration.Unregister()
}
