package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/infrastructure/config"
)

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "journal.db")

	db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("Open() with empty path should fail")
	}
}

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    []string
		notWant []string
	}{
		{
			name: "wal",
			cfg:  Config{Path: "/tmp/j.db", WALMode: true, BusyTimeout: 2},
			want: []string{"file:/tmp/j.db?", "_busy_timeout=2000", "_journal_mode=WAL", "_foreign_keys=on"},
		},
		{
			name:    "rollback journal",
			cfg:     Config{Path: "j.db", BusyTimeout: 5},
			want:    []string{"_busy_timeout=5000"},
			notWant: []string{"_journal_mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.cfg.dsn()
			for _, w := range tt.want {
				if !strings.Contains(dsn, w) {
					t.Errorf("dsn %q missing %q", dsn, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dsn, w) {
					t.Errorf("dsn %q should not contain %q", dsn, w)
				}
			}
		})
	}
}

func TestConfigFromJournal(t *testing.T) {
	tests := []struct {
		name string
		in   config.JournalConfig
		want Config
	}{
		{
			name: "explicit values",
			in:   config.JournalConfig{Enabled: true, Path: "/var/lib/mpx-bridge/journal.db", WALMode: true, BusyTimeout: 9},
			want: Config{Path: "/var/lib/mpx-bridge/journal.db", WALMode: true, BusyTimeout: 9},
		},
		{
			name: "busy timeout defaulted",
			in:   config.JournalConfig{Path: "j.db"},
			want: Config{Path: "j.db", BusyTimeout: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfigFromJournal(tt.in); got != tt.want {
				t.Errorf("ConfigFromJournal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil receiver error = %v", err)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}
