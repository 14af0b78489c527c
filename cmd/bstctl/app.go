package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"bstctl"}`
}

func (banner) PlainText() string {
	return "bstctl: binary search tree operation tooling"
}

// textTimeLayout is the timestamp layout of plain text logs.
const textTimeLayout = "2006-01-02 15:04:05.000"

func xloggerOptions(cfg *Config) []xlog.XLoggerOption {
	// Both values are checked by loadConfig.
	lvl, _ := xlog.ParseLogLevel(cfg.LogLevel)
	enc, _ := xlog.ParseLogEncoder(cfg.LogEncoder)
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
	}
	if enc == xlog.PlainText {
		return append(opts,
			xlog.WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
			xlog.WithXLoggerTimeEncoder(zapcore.TimeEncoderOfLayout(textTimeLayout)),
		)
	}
	return append(opts,
		xlog.WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
		xlog.WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
	)
}

func newXLogger(cfg *Config) xlog.XLogger {
	logger := xlog.NewXLogger(xloggerOptions(cfg)...)
	logger.Banner(banner{})
	return logger
}

func newFxLogger(logger xlog.XLogger) fxevent.Logger {
	return xlog.NewFxXLogger(logger)
}

func registerLoggerSync(lc fx.Lifecycle, logger xlog.XLogger) {
	lc.Append(fx.StopHook(func() {
		// Syncing a terminal stdout reports EINVAL.
		_ = logger.Sync()
	}))
}

func registerMetrics(lc fx.Lifecycle, cfg *Config, logger xlog.XLogger) {
	var (
		shutdown func(ctx context.Context) error
		server   *http.Server
		cancel   context.CancelFunc
	)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			if shutdown, err = observability.InitMetricsExporter(cfg.Metrics); err != nil {
				return err
			}
			if cfg.Metrics == observability.NoneMetricsExporter {
				return nil
			}
			var statsCtx context.Context
			statsCtx, cancel = context.WithCancel(context.Background())
			observability.InitAppStats(statsCtx, "bstctl")

			if cfg.MetricsAddr == "" {
				return nil
			}
			ln, err := net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var merr error
			if server != nil {
				merr = multierr.Append(merr, server.Shutdown(ctx))
			}
			if cancel != nil {
				cancel()
			}
			if shutdown != nil {
				merr = multierr.Append(merr, shutdown(ctx))
			}
			return merr
		},
	})
}

func newApp(cfg *Config, opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		fx.Supply(cfg),
		fx.Provide(newXLogger),
		fx.WithLogger(newFxLogger),
		fx.Invoke(registerLoggerSync, registerMetrics),
	}, opts...)...)
}

// runWithApp starts the app, runs fn to completion and stops the app.
func runWithApp(ctx context.Context, cfg *Config, fn func(ctx context.Context, logger xlog.XLogger) error) error {
	var logger xlog.XLogger
	app := newApp(cfg, fx.Populate(&logger))
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx, logger)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	return multierr.Append(runErr, app.Stop(stopCtx))
}
