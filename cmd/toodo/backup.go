package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/toodo/internal/backup"
	"github.com/dukerupert/toodo/internal/database"
	"github.com/dukerupert/toodo/internal/logging"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Write an encrypted copy of the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			passphrase, _ := cmd.Flags().GetString("passphrase")
			if passphrase == "" {
				passphrase = cfg.BackupPassphrase
			}

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			n, err := backup.Create(db, args[0], passphrase, logger.With("component", "backup"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[0], n)
			return nil
		},
	}

	cmd.Flags().String("passphrase", "", "encryption passphrase (defaults to TOODO_BACKUP_PASSPHRASE)")

	return cmd
}

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Decrypt a backup into the database path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			passphrase, _ := cmd.Flags().GetString("passphrase")
			if passphrase == "" {
				passphrase = cfg.BackupPassphrase
			}
			force, _ := cmd.Flags().GetBool("force")

			if err := backup.Restore(args[0], cfg.DBPath, passphrase, force, logger.With("component", "backup")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().String("passphrase", "", "encryption passphrase (defaults to TOODO_BACKUP_PASSPHRASE)")
	cmd.Flags().Bool("force", false, "overwrite an existing database")

	return cmd
}
