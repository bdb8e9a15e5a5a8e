package main

import (
	"context"
	"mpc-coordinator/internal/config"
	"mpc-coordinator/internal/logger"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.Logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mpc-coordinator",
		Short:         "Coordination store for threshold-signature signing sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the config file")
	root.AddCommand(newServeCmd(), newSnapshotCmd(), newEntityCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("mpc-coordinator failed")
		logger.Close()
		os.Exit(1)
	}
}
