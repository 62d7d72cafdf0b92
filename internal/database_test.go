package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/quest-log/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		readOnly bool
		wantErr  bool
	}{
		{
			name: "new writable database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "archive.db")
			},
			wantErr: false,
		},
		{
			name: "existing database read-only",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "archive.db")
				db, err := OpenDatabase(path, false)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if _, err := db.Exec("CREATE TABLE t (id INTEGER)"); err != nil {
					t.Fatalf("setup: %v", err)
				}
				db.Close()
				return path
			},
			readOnly: true,
			wantErr:  false,
		},
		{
			name: "non-existent database read-only",
			setup: func(t *testing.T) string {
				// The error comes from Ping, not Open
				return filepath.Join(t.TempDir(), "nonexistent.db")
			},
			readOnly: true,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.setup(t), tt.readOnly)
			if (err != nil) != tt.wantErr {
				t.Errorf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if db == nil {
					t.Fatal("OpenDatabase() returned nil database")
				}
				db.Close()
			}
		})
	}
}

func TestOpenDatabase_ReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	testutil.CreateArchiveFixture(t, path)

	db, err := OpenDatabase(path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE extra (id INTEGER)"); err == nil {
		t.Error("CREATE TABLE should fail on a read-only handle")
	}
	if _, err := db.Exec("DELETE FROM sessions"); err == nil {
		t.Error("DELETE should fail on a read-only handle")
	}
	n, err := CountRows(db, "sessions")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("sessions = %d, want 2", n)
	}
}

func TestOpenDatabase_ReadOnlyDoesNotCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	if db, err := OpenDatabase(path, true); err == nil {
		db.Close()
		t.Fatal("opening a missing archive read-only should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("read-only open created %s", path)
	}
}

func TestExecAllAndCountRows(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "archive.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = ExecAll(tx,
		"CREATE TABLE quotes (id INTEGER PRIMARY KEY, text TEXT)",
		"INSERT INTO quotes (id, text) VALUES (1, 'Halt!')",
		"INSERT INTO quotes (id, text) VALUES (2, 'Follow the light')",
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	n, err := CountRows(db, "quotes")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountRows() = %d, want 2", n)
	}

	if _, err := CountRows(db, "missing"); err == nil {
		t.Error("CountRows() on a missing table should fail")
	}

	tx, _ = db.Begin()
	defer tx.Rollback()
	if err := ExecAll(tx, "NOT SQL"); err == nil {
		t.Error("ExecAll() should stop at invalid SQL")
	}
}

func TestExecAll_StopsAtFirstError(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	err = ExecAll(tx,
		"CREATE TABLE moments (id INTEGER PRIMARY KEY, title TEXT NOT NULL)",
		"INSERT INTO moments (id, title) VALUES (50, 'Pratfall')",
		"INSERT INTO moments (id) VALUES (51)",
		"INSERT INTO moments (id, title) VALUES (52, 'Never reached')",
	)
	if err == nil {
		t.Fatal("ExecAll() should fail on the NOT NULL violation")
	}

	var n int
	if err := tx.QueryRow("SELECT COUNT(*) FROM moments").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("moments rows = %d, want 1", n)
	}
}
