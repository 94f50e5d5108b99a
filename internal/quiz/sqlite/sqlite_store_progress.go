package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quiz-pocket/internal/quiz"
)

// EnqueueProgress appends a completed quiz to the write-ahead queue
// with synced=0. The local row id is the only identity the store ever
// generates.
func (s *SQLiteStore) EnqueueProgress(ctx context.Context, record quiz.ProgressRecord) (int64, error) {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_quiz_progress
		 (user_id, quiz_id, score, correct_answers, total_questions, payload, created_at_unix, synced, attempts, next_attempt_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0)`,
		record.UserID,
		record.QuizID,
		record.Score,
		record.CorrectAnswers,
		record.TotalQuestions,
		record.Payload,
		createdAt.UnixNano(),
	)
	if err != nil {
		return 0, storageErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr(err)
	}
	return id, nil
}

const progressColumns = `id, user_id, quiz_id, score, correct_answers, total_questions, payload, created_at_unix, synced, attempts, next_attempt_at_unix`

// UnsyncedProgress returns queued records whose next attempt is due,
// oldest first.
func (s *SQLiteStore) UnsyncedProgress(ctx context.Context, now time.Time) ([]quiz.ProgressRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+progressColumns+`
		 FROM user_quiz_progress
		 WHERE synced = 0 AND next_attempt_at_unix <= ?
		 ORDER BY id ASC`,
		now.UnixNano(),
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	records := make([]quiz.ProgressRecord, 0)
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return records, nil
}

// MarkProgressSynced flips synced 0 -> 1. Re-marking an already synced
// row is a no-op, which keeps the transition exactly-once.
func (s *SQLiteStore) MarkProgressSynced(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE user_quiz_progress SET synced = 1 WHERE id = ? AND synced = 0`,
		id,
	)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// MarkProgressAttempt records a failed upload: bumps the attempt count
// and defers the record until nextAttempt.
func (s *SQLiteStore) MarkProgressAttempt(ctx context.Context, id int64, nextAttempt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE user_quiz_progress
		 SET attempts = attempts + 1, next_attempt_at_unix = ?
		 WHERE id = ? AND synced = 0`,
		nextAttempt.UnixNano(),
		id,
	)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *SQLiteStore) ProgressByID(ctx context.Context, id int64) (quiz.ProgressRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+progressColumns+` FROM user_quiz_progress WHERE id = ?`,
		id,
	)
	record, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.ProgressRecord{}, quiz.ErrProgressNotFound
		}
		return quiz.ProgressRecord{}, storageErr(err)
	}
	return record, nil
}

// PurgeSyncedBefore deletes synced rows older than cutoff. The queue
// is an audit log by default; nothing calls this unless a retention
// window is wanted.
func (s *SQLiteStore) PurgeSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM user_quiz_progress WHERE synced = 1 AND created_at_unix < ?`,
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, storageErr(err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr(err)
	}
	return deleted, nil
}

type progressScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row progressScanner) (quiz.ProgressRecord, error) {
	var (
		record        quiz.ProgressRecord
		createdAtUnix int64
		synced        int
		nextUnix      int64
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.QuizID,
		&record.Score,
		&record.CorrectAnswers,
		&record.TotalQuestions,
		&record.Payload,
		&createdAtUnix,
		&synced,
		&record.Attempts,
		&nextUnix,
	)
	if err != nil {
		return quiz.ProgressRecord{}, err
	}

	record.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	record.Synced = synced != 0
	if nextUnix > 0 {
		record.NextAttemptAt = time.Unix(0, nextUnix).UTC()
	}
	return record, nil
}
