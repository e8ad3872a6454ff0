package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/seekr/internal/apperr"
)

func integrityCheck(ctx context.Context, conn *sql.DB) error {
	rows, err := conn.QueryContext(ctx, `PRAGMA quick_check`)
	if err != nil {
		return fmt.Errorf("index: integrity check: %w", err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return fmt.Errorf("index: integrity check: %w", err)
		}
		if msg != "ok" {
			problems = append(problems, msg)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("index: integrity check: %w", err)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrCorruptStore, strings.Join(problems, "; "))
	}
	return nil
}

// isCorrupt reports whether err means the database file is damaged or is not
// a database at all.
func isCorrupt(err error) bool {
	if errors.Is(err, apperr.ErrCorruptStore) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrCorrupt || se.Code == sqlite3.ErrNotADB
	}
	msg := err.Error()
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database")
}

// quarantine renames the database file, and its WAL/SHM side files, to a
// timestamped backup name and returns the new main file path.
func quarantine(path string, now time.Time) (string, error) {
	backup := fmt.Sprintf("%s.corrupt-%s", path, now.UTC().Format("20060102T150405Z"))
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		side := path + suffix
		if _, err := os.Stat(side); err == nil {
			if err := os.Rename(side, backup+suffix); err != nil {
				return "", fmt.Errorf("backup %s: %w", side, err)
			}
		}
	}
	return backup, nil
}
