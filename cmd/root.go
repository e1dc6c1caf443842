package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/deckbinder/deckbinder/binder"
	"github.com/deckbinder/deckbinder/binder/database"
	"github.com/deckbinder/deckbinder/binder/logger"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	cfg     *binder.Config
)

var rootCMD = &cobra.Command{
	Use:           "deckbinder",
	Short:         "card dataset import and search tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := binder.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(slog.New(logger.NewHandlerWithLevel(cfg.Log.Level)))
		return nil
	},
}

func init() {
	rootCMD.PersistentFlags().StringVar(&cfgPath, "config", "config.toml", "path to config")
	rootCMD.AddCommand(importCMD)
	rootCMD.AddCommand(searchCMD)
	rootCMD.AddCommand(suggestCMD)
	rootCMD.AddCommand(snapshotsCMD)
}

// Execute runs the CLI under a signal-aware context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCMD.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
