package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

func executeRoot(t *testing.T, args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestRootCmd_Replay(t *testing.T) {
	path := writeScript(t, "insert 3 1 2\nfind 2\ncheck\n")
	require.NoError(t, executeRoot(t, "replay", path, "--log-level", "ERROR"))
	require.ErrorContains(t, executeRoot(t, "replay", writeScript(t, "pop\n"), "--log-level", "ERROR"), "line 1")
	require.Error(t, executeRoot(t, "replay"))

	path = writeScript(t, "insert 3 1 2\nmin\ncheck\n")
	require.NoError(t, executeRoot(t, "replay", path, "--desc", "--log-level", "ERROR"))
	require.ErrorContains(t, executeRoot(t, "replay", path, "--log-level", "WARNN"), "unknown xlogger level")
}

func TestLoadConfig_ReplayEnv(t *testing.T) {
	t.Setenv("BSTCTL_DESC", "true")
	t.Setenv("BSTCTL_STRINGS", "true")

	root := newRootCmd()
	replay, _, err := root.Find([]string{"replay"})
	require.NoError(t, err)
	cfg, err := loadConfig(replay)
	require.NoError(t, err)
	require.True(t, cfg.replay.desc)
	require.True(t, cfg.replay.strings)

	require.NoError(t, replay.Flags().Set("desc", "false"))
	cfg, err = loadConfig(replay)
	require.NoError(t, err)
	require.False(t, cfg.replay.desc)
}

func TestRootCmd_Soak(t *testing.T) {
	require.NoError(t, executeRoot(t, "soak",
		"--log-level", "ERROR",
		"--trees", "4",
		"--ops", "500",
		"--key-space", "32",
		"--workers", "2",
		"--seed", "9",
	))
	require.Error(t, executeRoot(t, "soak", "--log-level", "ERROR", "--trees", "0"))
}

func TestLoadConfig_EnvAndFile(t *testing.T) {
	t.Setenv("BSTCTL_LOG_LEVEL", "WARN")
	t.Setenv("BSTCTL_METRICS", "stdout")

	path := filepath.Join(t.TempDir(), "bstctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trees: 3\nkey-space: 7\n"), 0o644))

	root := newRootCmd()
	soak, _, err := root.Find([]string{"soak"})
	require.NoError(t, err)
	require.NoError(t, root.PersistentFlags().Set("config", path))
	require.NoError(t, soak.Flags().Set("workers", "5"))

	cfg, err := loadConfig(soak)
	require.NoError(t, err)
	require.Equal(t, "WARN", cfg.LogLevel)
	require.Equal(t, observability.StdoutMetricsExporter, cfg.Metrics)
	require.Equal(t, 3, cfg.soak.trees)
	require.Equal(t, 7, cfg.soak.keySpace)
	require.Equal(t, 5, cfg.soak.workers)
	require.Equal(t, 10000, cfg.soak.ops)
}

func TestLoadConfig_Invalid(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("metrics", "statsd"))
	_, err := loadConfig(root)
	require.Error(t, err)

	root = newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("log-encoder", "yaml"))
	_, err = loadConfig(root)
	require.Error(t, err)

	root = newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("log-level", "WARNN"))
	_, err = loadConfig(root)
	require.ErrorContains(t, err, "unknown xlogger level")
}

func TestXLoggerOptions(t *testing.T) {
	for _, enc := range []string{"json", "text"} {
		opts := xloggerOptions(&Config{LogLevel: "ERROR", LogEncoder: enc})
		require.Len(t, opts, 4)
		require.NotPanics(t, func() {
			logger := xlog.NewXLogger(opts...)
			require.Equal(t, "error", logger.Level())
		})
	}
}

func TestRunWithApp(t *testing.T) {
	cfg := &Config{LogLevel: "ERROR", Metrics: observability.NoneMetricsExporter}
	errRun := errors.New("run failed")
	called := false
	err := runWithApp(context.Background(), cfg, func(_ context.Context, logger xlog.XLogger) error {
		called = true
		require.NotNil(t, logger)
		return errRun
	})
	require.True(t, called)
	require.ErrorIs(t, err, errRun)
}

func TestRunWithApp_MetricsServer(t *testing.T) {
	cfg := &Config{
		LogLevel:    "ERROR",
		Metrics:     observability.PrometheusMetricsExporter,
		MetricsAddr: "127.0.0.1:0",
	}
	require.NoError(t, runWithApp(context.Background(), cfg, func(_ context.Context, _ xlog.XLogger) error {
		return nil
	}))
}
