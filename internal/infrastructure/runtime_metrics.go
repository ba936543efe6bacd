package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the process
type RuntimeStats struct {
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	NumGC          uint32  `json:"num_gc"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// RuntimeMetrics exports Go runtime gauges and serves snapshots to the
// health endpoint.
type RuntimeMetrics struct {
	started time.Time
}

// NewRuntimeMetrics registers observable runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{started: time.Now()}

	goroutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return nil, err
	}
	heap, err := meter.Int64ObservableGauge("system_memory_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated by the Go runtime"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	uptime, err := meter.Float64ObservableGauge("system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := rm.Snapshot()
		o.ObserveInt64(goroutines, int64(s.Goroutines))
		o.ObserveInt64(heap, int64(s.HeapAllocBytes))
		o.ObserveFloat64(uptime, s.UptimeSeconds)
		return nil
	}, goroutines, heap, uptime)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Snapshot reads the current runtime statistics
func (rm *RuntimeMetrics) Snapshot() RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: ms.HeapAlloc,
		NumGC:          ms.NumGC,
		UptimeSeconds:  time.Since(rm.started).Seconds(),
	}
}
