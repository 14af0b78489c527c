package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/benz9527/xbst/xlog"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bstctl",
		Short: "Drive and check binary search trees outside unit tests",

		// SilenceUsage is an option to silence usage when an error occurs.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file")
	root.PersistentFlags().String("log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	root.PersistentFlags().String("log-encoder", "json", "json or text")
	root.PersistentFlags().String("metrics", "none", "metrics exporter: none, stdout or prometheus")

	root.AddCommand(newReplayCmd(), newSoakCmd())
	return root
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Apply a script of tree ops and log every result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.replay.script = args[0]
			return runWithApp(cmd.Context(), cfg, func(_ context.Context, logger xlog.XLogger) error {
				return runReplay(cfg.replay, logger)
			})
		},
	}
	cmd.Flags().Bool("strings", false, "treat keys as strings instead of int64")
	cmd.Flags().Bool("desc", false, "keep keys in descending order")
	return cmd
}

func newSoakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Run random ops on independent trees concurrently and verify them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runWithApp(cmd.Context(), cfg, func(ctx context.Context, logger xlog.XLogger) error {
				_, err := runSoak(ctx, cfg.soak, logger)
				return err
			})
		},
	}
	cmd.Flags().Int("trees", 64, "number of independent trees")
	cmd.Flags().Int("ops", 10000, "random ops per tree")
	cmd.Flags().Int("key-space", 1024, "keys are drawn from [0, key-space)")
	cmd.Flags().Int("workers", 8, "ants pool size")
	cmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().String("metrics-addr", "", "serve /metrics on this address while running")
	return cmd
}
