package service

import (
	"path/filepath"
	"testing"

	"github.com/sensorlab/doorwatch/database"
)

// setupTestDB opens a fresh database in a per-test temp dir. The seeded
// admin account (admin/adminpw) is available to every test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "doorwatch.db")
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
	})
}
