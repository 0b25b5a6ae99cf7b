package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/toodo/internal/database"
	"github.com/dukerupert/toodo/internal/logging"
	"github.com/dukerupert/toodo/internal/retention"
	"github.com/dukerupert/toodo/internal/settings"
	"github.com/dukerupert/toodo/internal/store"
	"github.com/dukerupert/toodo/internal/tracker"
)

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Apply the auto-delete policy once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			provider := settings.NewStoreProvider(store.NewSettingsStore(db))
			policy := retention.NewPolicy(store.NewTaskStore(db), provider, logger.With("component", "retention"))
			res, err := policy.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "option=%q deleted=%d\n", res.Option, res.Deleted)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the builtin prizes if the prize table is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			settingsStore := store.NewSettingsStore(db)
			t := tracker.New(
				store.NewTaskStore(db),
				store.NewPrizeStore(db),
				store.NewLedgerStore(db),
				settings.NewStoreProvider(settingsStore),
				nil,
				logger.With("component", "tracker"),
				tracker.Config{},
			)
			prizes, err := t.Prizes()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d prizes\n", len(prizes))
			return nil
		},
	}
}
