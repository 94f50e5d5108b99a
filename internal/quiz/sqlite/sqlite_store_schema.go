package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// No FK constraints: mirrored rows arrive in whatever order the
	// server hands them out, and staleness is preferred over cascade
	// deletes. Relationships stay loose application-level references.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			title TEXT,
			image TEXT,
			parent INTEGER DEFAULT 0,
			description TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS banners (
			id INTEGER PRIMARY KEY,
			title TEXT,
			image TEXT,
			url TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY,
			title TEXT,
			description TEXT,
			category INTEGER DEFAULT 0,
			categorytitle TEXT,
			question_count INTEGER DEFAULT 0,
			total_score INTEGER DEFAULT 0,
			image TEXT,
			local_image_path TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY,
			title TEXT,
			option_1 TEXT,
			option_2 TEXT,
			option_3 TEXT,
			option_4 TEXT,
			-- One-based, as on the wire. Converted at the store boundary.
			correct INTEGER DEFAULT 0,
			explanation TEXT,
			link TEXT,
			score INTEGER DEFAULT 0,
			story TEXT,
			topic INTEGER DEFAULT 0,
			category INTEGER DEFAULT 0,
			difficulty INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			fullname TEXT,
			age TEXT,
			relationship TEXT,
			email TEXT,
			phone TEXT,
			nickname TEXT,
			password TEXT,
			icon INTEGER DEFAULT 0,
			badge INTEGER DEFAULT 0,
			premium INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS user_quiz_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			quiz_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			next_attempt_at_unix INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic);`,
		`CREATE INDEX IF NOT EXISTS idx_progress_unsynced ON user_quiz_progress(synced, next_attempt_at_unix);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storageErr(err)
		}
	}
	return nil
}
