package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/iksnae/quest-log/internal"
)

// sqliteSchema is the layout of an exported archive. Artifacts of every
// kind share one table; legacy artifacts have no artifact_id.
var sqliteSchema = []string{
	`CREATE TABLE campaigns (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		summary TEXT,
		created_at TEXT,
		exported_at TEXT
	)`,
	`CREATE TABLE sessions (
		id INTEGER PRIMARY KEY,
		campaign_id INTEGER,
		name TEXT NOT NULL,
		status TEXT,
		summary TEXT,
		error_message TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE personas (
		id INTEGER PRIMARY KEY,
		campaign_id INTEGER,
		name TEXT NOT NULL,
		role TEXT,
		description TEXT,
		aliases TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE artifacts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		artifact_id INTEGER,
		legacy INTEGER NOT NULL DEFAULT 0,
		label TEXT,
		text TEXT NOT NULL,
		session_id INTEGER,
		persona_id INTEGER
	)`,
	`CREATE TABLE moments (
		id INTEGER PRIMARY KEY,
		session_id INTEGER,
		title TEXT,
		description TEXT,
		type TEXT
	)`,
}

// SQLiteExporter writes a self-contained SQLite archive. The database is
// built in a temporary file and then streamed to the writer.
type SQLiteExporter struct {
	// TempDir is where the working file is created; empty means os.TempDir
	TempDir string
}

// ExportSession archives one session and its artifacts
func (e *SQLiteExporter) ExportSession(session *internal.SessionView, w io.Writer) error {
	return e.build(w, func(tx *sql.Tx) error {
		if err := insertSession(tx, session); err != nil {
			return err
		}
		return insertArtifacts(tx, session.Artifacts, &session.ID)
	})
}

// ExportSnapshot archives a whole campaign
func (e *SQLiteExporter) ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error {
	return e.build(w, func(tx *sql.Tx) error {
		c := snapshot.Campaign
		_, err := tx.Exec(
			`INSERT INTO campaigns (id, name, description, summary, created_at, exported_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Description, c.Summary, formatTime(c.CreatedAt.Time), formatTime(snapshot.ExportedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert campaign: %w", err)
		}

		for i := range snapshot.Sessions {
			if err := insertSession(tx, &snapshot.Sessions[i]); err != nil {
				return err
			}
		}

		for _, p := range snapshot.Personas {
			aliases, err := json.Marshal(p.Aliases)
			if err != nil {
				return fmt.Errorf("failed to encode aliases of %s: %w", p.Name, err)
			}
			_, err = tx.Exec(
				`INSERT INTO personas (id, campaign_id, name, role, description, aliases) VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, p.CampaignID, p.Name, p.Role, lo.EmptyableToPtr(p.Description), string(aliases),
			)
			if err != nil {
				return fmt.Errorf("failed to insert persona %d: %w", p.ID, err)
			}
		}

		err = insertArtifacts(tx, internal.ResolvedArtifacts{
			High:   snapshot.Highlights,
			Low:    snapshot.LowPoints,
			Quotes: snapshot.Quotes,
		}, nil)
		if err != nil {
			return err
		}

		for _, m := range snapshot.Moments {
			_, err := tx.Exec(
				`INSERT INTO moments (id, session_id, title, description, type) VALUES (?, ?, ?, ?, ?)`,
				m.ID, m.SessionID, m.Title, lo.EmptyableToPtr(m.Description), m.Type,
			)
			if err != nil {
				return fmt.Errorf("failed to insert moment %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

// build creates the schema, runs fill in one transaction and copies the
// finished file to w
func (e *SQLiteExporter) build(w io.Writer, fill func(tx *sql.Tx) error) error {
	tmp, err := os.CreateTemp(e.TempDir, "questlog-export-*.db")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(path) }()

	db, err := internal.OpenDatabase(path, false)
	if err != nil {
		return err
	}

	if err := e.fill(db, fill); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to reopen archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

func (e *SQLiteExporter) fill(db *sql.DB, fill func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := internal.ExecAll(tx, sqliteSchema...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := fill(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertSession(tx *sql.Tx, s *internal.SessionView) error {
	_, err := tx.Exec(
		`INSERT INTO sessions (id, campaign_id, name, status, summary, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CampaignID, s.Name, string(s.Status),
		lo.EmptyableToPtr(s.Summary), lo.EmptyableToPtr(s.ErrorMessage), formatTime(s.CreatedAt.Time),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %d: %w", s.ID, err)
	}
	return nil
}

// insertArtifacts stores every artifact group. defaultSession fills in the
// session of artifacts that carry none, which is the case for legacy ones.
func insertArtifacts(tx *sql.Tx, a internal.ResolvedArtifacts, defaultSession *int) error {
	stmt, err := tx.Prepare(
		`INSERT INTO artifacts (kind, artifact_id, legacy, label, text, session_id, persona_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare artifact insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range [][]internal.Artifact{a.High, a.Low, a.Quotes} {
		for _, art := range group {
			sessionID := art.SessionID
			if sessionID == nil {
				sessionID = defaultSession
			}
			_, err := stmt.Exec(
				art.Kind.String(), lo.EmptyableToPtr(art.ID), lo.Ternary(art.Legacy, 1, 0),
				lo.EmptyableToPtr(art.Label), art.Text, sessionID, art.PersonaID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s: %w", art.Kind, err)
			}
		}
	}
	return nil
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// Extension returns the file extension for this format
func (e *SQLiteExporter) Extension() string {
	return "db"
}
