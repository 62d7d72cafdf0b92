package export

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/quest-log/internal"
)

// openArchive writes an exported archive to disk and opens it read-only
func openArchive(t *testing.T, data []byte) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := internal.OpenDatabase(path, true)
	if err != nil {
		t.Fatalf("Archive does not open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func assertRows(t *testing.T, db *sql.DB, table string, want int) {
	t.Helper()
	n, err := internal.CountRows(db, table)
	if err != nil {
		t.Fatal(err)
	}
	if n != want {
		t.Errorf("%s rows = %d, want %d", table, n, want)
	}
}

func TestSQLiteExporter_ExportSession(t *testing.T) {
	var buf bytes.Buffer
	exporter := &SQLiteExporter{TempDir: t.TempDir()}

	if err := exporter.ExportSession(testLegacySessionView(t), &buf); err != nil {
		t.Fatalf("SQLiteExporter.ExportSession() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SQLite format 3\x00")) {
		t.Fatal("Output is not a SQLite database")
	}

	db := openArchive(t, buf.Bytes())
	assertRows(t, db, "sessions", 1)
	assertRows(t, db, "artifacts", 5)
	assertRows(t, db, "campaigns", 0)

	var label, text string
	var legacy, sessionID int
	var artifactID sql.NullInt64
	err := db.QueryRow(
		`SELECT label, text, legacy, session_id, artifact_id FROM artifacts WHERE kind = 'low_point'`,
	).Scan(&label, &text, &legacy, &sessionID, &artifactID)
	if err != nil {
		t.Fatal(err)
	}
	if label != "Ambush" || text != "Goblins surprised the camp" {
		t.Errorf("low point = [%s] %s", label, text)
	}
	if legacy != 1 || artifactID.Valid {
		t.Errorf("legacy = %d, artifact_id = %v", legacy, artifactID)
	}
	if sessionID != 2 {
		t.Errorf("legacy artifacts take the session id, got %d", sessionID)
	}

	entries, _ := os.ReadDir(exporter.TempDir)
	if len(entries) != 0 {
		t.Errorf("working file should be removed, found %d entries", len(entries))
	}
}

func TestSQLiteExporter_ExportSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SQLiteExporter{TempDir: t.TempDir()}).ExportSnapshot(testSnapshot(), &buf); err != nil {
		t.Fatalf("SQLiteExporter.ExportSnapshot() error = %v", err)
	}

	db := openArchive(t, buf.Bytes())
	assertRows(t, db, "campaigns", 1)
	assertRows(t, db, "sessions", 2)
	assertRows(t, db, "personas", 2)
	assertRows(t, db, "artifacts", 3)
	assertRows(t, db, "moments", 1)

	var aliases string
	if err := db.QueryRow(`SELECT aliases FROM personas WHERE id = 20`).Scan(&aliases); err != nil {
		t.Fatal(err)
	}
	if aliases != `["Red"]` {
		t.Errorf("aliases = %s", aliases)
	}

	var exportedAt sql.NullString
	if err := db.QueryRow(`SELECT exported_at FROM campaigns`).Scan(&exportedAt); err != nil {
		t.Fatal(err)
	}
	if !exportedAt.Valid {
		t.Error("exported_at should be set")
	}
}

func TestSQLiteExporter_Extension(t *testing.T) {
	exporter := &SQLiteExporter{}
	if got := exporter.Extension(); got != "db" {
		t.Errorf("SQLiteExporter.Extension() = %v, want db", got)
	}
}
