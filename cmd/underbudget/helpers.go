package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/underbudget/internal/config"
	"github.com/Veraticus/underbudget/internal/storage"
)

const (
	defaultDatabasePath = "$HOME/.local/share/underbudget/underbudget.db"
	dateLayout          = "2006-01-02"
)

// databasePath returns the configured SQLite path with tilde and environment variables expanded.
func databasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDatabasePath
	}
	return config.ExpandPath(dbPath)
}

// initStorage opens the ledger database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseDate parses a YYYY-MM-DD flag value in local time.
func parseDate(flag, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date format (expected YYYY-MM-DD): %w", flag, err)
	}
	return t, nil
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
