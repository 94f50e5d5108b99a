// Package sqlite is the local store: a single embedded database
// holding the mirrored server entities plus the pending-progress
// queue.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"quiz-pocket/internal/quiz"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and runs the
// idempotent schema, so it is safe to call on every application start.
// Any failure here or in later operations wraps
// quiz.ErrStorageUnavailable; the store never attempts repair.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quizpocket.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storageErr(err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, storageErr(err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) String() string {
	return fmt.Sprintf("sqlite_store(%T)", s.db)
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", quiz.ErrStorageUnavailable, err)
}
