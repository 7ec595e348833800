package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-uid/internal/app"
	"katydid-common-uid/internal/config"
	"katydid-common-uid/internal/logger"
	"katydid-common-uid/pkg/idgen/domain"
	"katydid-common-uid/pkg/idgen/snowflake"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "uidgen",
		Short:        "Snowflake 64-bit id generator",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd(), newNextCmd(), newParseCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP id service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("init failed", zap.Error(err))
				return err
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringP("config", "c", "", "config file (yaml, json or toml)")
	return cmd
}

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Generate ids locally and print one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, _ := cmd.Flags().GetInt64("worker")
			datacenterID, _ := cmd.Flags().GetInt64("datacenter")
			n, _ := cmd.Flags().GetInt("count")

			gen, err := snowflake.New(workerID, datacenterID)
			if err != nil {
				return err
			}
			ids, err := gen.NextIDBatch(n)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().Int64("worker", 0, "worker id [0, 31]")
	cmd.Flags().Int64("datacenter", 0, "datacenter id [0, 31]")
	cmd.Flags().IntP("count", "n", 1, "number of ids")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <id>...",
		Short: "Decode ids (decimal, 0x hex or 0b binary) as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, arg := range args {
				id, err := domain.ParseID(arg)
				if err != nil {
					return fmt.Errorf("parse %q: %w", arg, err)
				}
				if err := enc.Encode(id.Info()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
