package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"quiz-pocket/internal/quiz"
)

func (s *SQLiteStore) UpsertUser(ctx context.Context, user quiz.UserProfile) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO users
			 (id, fullname, age, relationship, email, phone, nickname, password, icon, badge, premium)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID,
			user.Fullname,
			user.Age,
			user.Relationship,
			user.Email,
			user.Phone,
			user.Nickname,
			user.Password,
			user.Icon,
			user.Badge,
			boolToInt(user.Premium),
		)
		return err
	})
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int) (quiz.UserProfile, error) {
	var (
		user    quiz.UserProfile
		premium int
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, fullname, age, relationship, email, phone, nickname, password, icon, badge, premium
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&user.ID,
		&user.Fullname,
		&user.Age,
		&user.Relationship,
		&user.Email,
		&user.Phone,
		&user.Nickname,
		&user.Password,
		&user.Icon,
		&user.Badge,
		&premium,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.UserProfile{}, quiz.ErrUserNotFound
		}
		return quiz.UserProfile{}, storageErr(err)
	}
	user.Premium = premium != 0
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
