package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDocumentName = "main"

// sqliteSchema holds the DDL steps in order. The database's user_version
// pragma records how many of them have run; append new steps, never edit old
// ones.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
  name TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`ALTER TABLE documents ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`,
}

// SQLiteBackend stores the document as one row of a SQLite table. The
// document itself is still read and written whole.
type SQLiteBackend struct {
	db   *sql.DB
	name string
}

func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := upgradeSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, name: defaultDocumentName}, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Read() ([]byte, error) {
	var body string
	err := b.db.QueryRow(`SELECT body FROM documents WHERE name = ?`, b.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", b.name, err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Write(data []byte) error {
	_, err := b.db.Exec(`
INSERT INTO documents(name, body, updated_at, revision)
VALUES(?, ?, ?, 1)
ON CONFLICT(name) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at, revision=documents.revision+1
`, b.name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write document %q: %w", b.name, err)
	}
	return nil
}

// SchemaVersion reports how many schema steps the database has applied.
func (b *SQLiteBackend) SchemaVersion() (int, error) {
	return schemaVersion(b.db)
}

// Revision reports how many times the document row has been written.
func (b *SQLiteBackend) Revision() (int, error) {
	var rev int
	err := b.db.QueryRow(`SELECT revision FROM documents WHERE name = ?`, b.name).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read document revision: %w", err)
	}
	return rev, nil
}

func schemaVersion(q interface {
	QueryRow(query string, args ...any) *sql.Row
}) (int, error) {
	var version int
	if err := q.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// upgradeSQLiteSchema runs the steps past the stored user_version, each in
// its own transaction together with the version bump.
func upgradeSQLiteSchema(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(sqliteSchema) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, len(sqliteSchema))
	}
	for i := current; i < len(sqliteSchema); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin schema step %d: %w", i+1, err)
		}
		if _, err := tx.Exec(sqliteSchema[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
		// PRAGMA arguments cannot be bound.
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema step %d: %w", i+1, err)
		}
	}
	return nil
}
