package store

import (
	"database/sql"
	"testing"

	"calkids/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestHousehold(t *testing.T, db *sql.DB) string {
	t.Helper()
	hs := NewHouseholdStore(db)
	h, err := hs.Create("Rossi", "Anna", "anna@example.com", "hashed-password")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return h.ID
}
