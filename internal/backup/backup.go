// Package backup writes and restores passphrase-encrypted copies of the
// SQLite database.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrDestinationExists guards Restore against overwriting a live database.
var ErrDestinationExists = errors.New("destination database already exists")

// Create snapshots db with VACUUM INTO and writes the encrypted snapshot to
// outPath. It returns the size of the encrypted file.
func Create(db *sql.DB, outPath, passphrase string, logger *slog.Logger) (int64, error) {
	if passphrase == "" {
		return 0, fmt.Errorf("passphrase is required")
	}

	tmpDir, err := os.MkdirTemp("", "toodo-backup-*")
	if err != nil {
		return 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if _, err := db.Exec(`VACUUM INTO ?`, snapshot); err != nil {
		return 0, fmt.Errorf("snapshot database: %w", err)
	}

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := Seal(plaintext, passphrase)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, sealed, 0600); err != nil {
		return 0, fmt.Errorf("write backup: %w", err)
	}

	logger.Info("backup written", "path", outPath, "bytes", len(sealed))
	return int64(len(sealed)), nil
}

// Restore decrypts inPath into dbPath. Unless force is set an existing file
// at dbPath is left alone and ErrDestinationExists is returned.
func Restore(inPath, dbPath, passphrase string, force bool, logger *slog.Logger) error {
	if _, err := os.Stat(dbPath); err == nil && !force {
		return fmt.Errorf("%s: %w", dbPath, ErrDestinationExists)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	plaintext, err := Open(data, passphrase)
	if err != nil {
		return err
	}

	// Write beside the target and rename so a failed write never leaves a
	// truncated database behind.
	tmp := dbPath + ".restore"
	if err := os.WriteFile(tmp, plaintext, 0600); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(dbPath + suffix)
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}

	logger.Info("backup restored", "path", dbPath)
	return nil
}
