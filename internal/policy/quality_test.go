package policy

import (
	"context"
	"path/filepath"
	"testing"

	"bookwish/internal/store"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAutoDownloadDefaultsOff(t *testing.T) {
	db := setupTestDB(t)
	q := NewQualityConfig()

	enabled, err := q.AutoDownloadEnabled(context.Background(), db)
	if err != nil {
		t.Fatalf("AutoDownloadEnabled failed: %v", err)
	}
	if enabled {
		t.Error("Expected auto-download off with no stored setting")
	}
}

func TestSetAutoDownloadVisibleImmediately(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	q := NewQualityConfig()

	if err := q.SetAutoDownload(ctx, db, true); err != nil {
		t.Fatalf("SetAutoDownload failed: %v", err)
	}
	enabled, err := q.AutoDownloadEnabled(ctx, db)
	if err != nil {
		t.Fatalf("AutoDownloadEnabled failed: %v", err)
	}
	if !enabled {
		t.Error("Expected auto-download on after SetAutoDownload(true)")
	}
}

func TestInvalidateRereadsStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	q := NewQualityConfig()

	if err := q.SetAutoDownload(ctx, db, true); err != nil {
		t.Fatalf("SetAutoDownload failed: %v", err)
	}

	// Out-of-band write the cache doesn't see.
	if err := db.SetSetting(ctx, "auto_download", "false"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	enabled, _ := q.AutoDownloadEnabled(ctx, db)
	if !enabled {
		t.Fatal("Expected stale cached value before Invalidate")
	}

	q.Invalidate()
	enabled, err := q.AutoDownloadEnabled(ctx, db)
	if err != nil {
		t.Fatalf("AutoDownloadEnabled failed: %v", err)
	}
	if enabled {
		t.Error("Expected fresh store value after Invalidate")
	}
}
