package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/ChaseRain/lessonslides/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

const createDecksTable = `
CREATE TABLE IF NOT EXISTS decks (
	id TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteBackend keeps snapshots in a single decks table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to open database")
	}
	// one connection so :memory: databases are shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to ping database")
	}
	if _, err := db.Exec(createDecksTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to create decks table")
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, id string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO decks (id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		id, data)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to save deck")
	}
	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM decks WHERE id = ?`, id).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeNotFound, "deck not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to load deck")
	}
	return data, nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to delete deck")
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
