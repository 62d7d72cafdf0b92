package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateArchiveFixture writes a small export archive to path: one campaign
// with two sessions, shaped like the tables the SQLite exporter creates
func CreateArchiveFixture(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	statements := []string{
		`CREATE TABLE campaigns (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			summary TEXT,
			created_at TEXT,
			exported_at TEXT NOT NULL
		)`,
		`CREATE TABLE sessions (
			id INTEGER PRIMARY KEY,
			campaign_id INTEGER,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			summary TEXT,
			created_at TEXT
		)`,
		`INSERT INTO campaigns (id, name, exported_at) VALUES (1, 'Curse of the Drowned King', '2024-03-10T12:00:00Z')`,
		`INSERT INTO sessions (id, campaign_id, name, status, summary) VALUES (10, 1, 'The Lighthouse', 'completed', 'The party reached the light.
They did not like what they found.')`,
		`INSERT INTO sessions (id, campaign_id, name, status) VALUES (11, 1, 'The Reef', 'processing')`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to build archive fixture: %v", err)
		}
	}
}

// CreateInMemoryDB creates an in-memory SQLite database for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
