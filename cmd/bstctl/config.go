package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

const envPrefix = "BSTCTL"

// Config is resolved from flags, then BSTCTL_* env vars, then the
// optional --config file.
type Config struct {
	LogLevel    string
	LogEncoder  string
	Metrics     observability.MetricsExporterKind
	MetricsAddr string

	replay replayConfig
	soak   soakConfig
}

func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	// Enable environment variable binding.
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bstctl] bind persistent flags")
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bstctl] bind local flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[bstctl] read config file")
		}
	}
	return v, nil
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		LogLevel:    v.GetString("log-level"),
		LogEncoder:  v.GetString("log-encoder"),
		MetricsAddr: v.GetString("metrics-addr"),
	}
	if _, err = xlog.ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if _, err = xlog.ParseLogEncoder(cfg.LogEncoder); err != nil {
		return nil, err
	}
	if cfg.Metrics, err = observability.ParseMetricsExporterKind(v.GetString("metrics")); err != nil {
		return nil, err
	}
	if cfg.MetricsAddr != "" && cfg.Metrics == observability.NoneMetricsExporter {
		cfg.Metrics = observability.PrometheusMetricsExporter
	}

	switch cmd.Name() {
	case "replay":
		cfg.replay = replayConfig{
			strings: v.GetBool("strings"),
			desc:    v.GetBool("desc"),
		}
	case "soak":
		cfg.soak = soakConfig{
			trees:    v.GetInt("trees"),
			ops:      v.GetInt("ops"),
			keySpace: v.GetInt("key-space"),
			workers:  v.GetInt("workers"),
			seed:     v.GetUint64("seed"),
		}
	default:
	}
	return cfg, nil
}
