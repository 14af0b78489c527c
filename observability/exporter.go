package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xbst/lib/infra"
)

type MetricsExporterKind uint8

const (
	NoneMetricsExporter MetricsExporterKind = iota
	StdoutMetricsExporter
	PrometheusMetricsExporter
)

func (kind MetricsExporterKind) String() string {
	switch kind {
	case StdoutMetricsExporter:
		return "stdout"
	case PrometheusMetricsExporter:
		return "prometheus"
	default:
	}
	return "none"
}

func ParseMetricsExporterKind(name string) (MetricsExporterKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoneMetricsExporter, nil
	case "stdout", "console":
		return StdoutMetricsExporter, nil
	case "prometheus", "prom":
		return PrometheusMetricsExporter, nil
	default:
	}
	return NoneMetricsExporter, infra.NewErrorStack("[observability] unknown metrics exporter: " + name)
}

type exporterCfg struct {
	interval   time.Duration
	timeout    time.Duration
	out        io.Writer
	registerer promclient.Registerer
}

type ExporterOption func(*exporterCfg)

// WithExportInterval only applies to the stdout exporter.
func WithExportInterval(interval, timeout time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

func WithStdoutWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		if w != nil {
			cfg.out = w
		}
	}
}

// WithPrometheusRegisterer defaults to the prometheus default registerer,
// which promhttp.Handler serves.
func WithPrometheusRegisterer(reg promclient.Registerer) ExporterOption {
	return func(cfg *exporterCfg) {
		if reg != nil {
			cfg.registerer = reg
		}
	}
}

func noopShutdown(context.Context) error { return nil }

// InitMetricsExporter installs the global otel MeterProvider for kind.
// The returned shutdown flushes and stops the provider.
func InitMetricsExporter(kind MetricsExporterKind, opts ...ExporterOption) (func(ctx context.Context) error, error) {
	cfg := &exporterCfg{
		interval:   10 * time.Second,
		timeout:    5 * time.Second,
		out:        os.Stdout,
		registerer: promclient.DefaultRegisterer,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	switch kind {
	case NoneMetricsExporter:
		return noopShutdown, nil
	case StdoutMetricsExporter:
		return newConsoleMetricsExporter(cfg.interval, cfg.timeout, stdoutmetric.WithWriter(cfg.out))
	case PrometheusMetricsExporter:
		return newPrometheusMetricsExporter(prometheus.WithRegisterer(cfg.registerer))
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter kind")
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] stdout exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
