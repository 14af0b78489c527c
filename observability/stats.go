package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xboot/app/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process gauges once per process on the
// global MeterProvider. Install an exporter first.
// The registrations are dropped once ctx is done.
func InitAppStats(ctx context.Context, name string) {
	once.Do(func() {
		meter := otel.Meter(
			appStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx: ctx,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
			)),
		}
		reg := lo.Must[metric.Registration](meter.RegisterCallback(
			func(_ context.Context, ob metric.Observer) error {
				ob.ObserveInt64(stats.goroutines, int64(runtime.NumGoroutine()))
				ob.ObserveInt64(stats.processes, int64(runtime.GOMAXPROCS(0)))
				return nil
			},
			stats.goroutines,
			stats.processes,
		))
		stats.shutdownCallback = func(context.Context) error {
			return reg.Unregister()
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}
