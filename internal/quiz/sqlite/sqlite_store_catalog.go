package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"quiz-pocket/internal/quiz"
)

// Catalog writes mirror the server: each Replace clears its scope and
// rewrites it inside one transaction, so rows the server dropped (or an
// empty fetch) clear out locally too. Replaying the same batch is a
// no-op observationally.

func (s *SQLiteStore) ReplaceCategories(ctx context.Context, categories []quiz.Category) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return err
		}
		for _, category := range categories {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO categories (id, title, image, parent, description)
				 VALUES (?, ?, ?, ?, ?)`,
				category.ID,
				category.Title,
				category.Image,
				category.Parent,
				category.Description,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetCategories(ctx context.Context) ([]quiz.Category, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, image, parent, description FROM categories ORDER BY id ASC`,
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	categories := make([]quiz.Category, 0)
	for rows.Next() {
		var category quiz.Category
		if err := rows.Scan(
			&category.ID,
			&category.Title,
			&category.Image,
			&category.Parent,
			&category.Description,
		); err != nil {
			return nil, storageErr(err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return categories, nil
}

func (s *SQLiteStore) ReplaceBanners(ctx context.Context, banners []quiz.Banner) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM banners`); err != nil {
			return err
		}
		for _, banner := range banners {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO banners (id, title, image, url) VALUES (?, ?, ?, ?)`,
				banner.ID,
				banner.Title,
				banner.Image,
				banner.URL,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetBanners(ctx context.Context) ([]quiz.Banner, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, image, url FROM banners ORDER BY id ASC`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	banners := make([]quiz.Banner, 0)
	for rows.Next() {
		var banner quiz.Banner
		if err := rows.Scan(&banner.ID, &banner.Title, &banner.Image, &banner.URL); err != nil {
			return nil, storageErr(err)
		}
		banners = append(banners, banner)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return banners, nil
}

// ReplaceTopics scopes the rewrite to one category; other categories'
// topics are untouched. INSERT OR REPLACE handles a topic that moved
// here from another category.
func (s *SQLiteStore) ReplaceTopics(ctx context.Context, categoryID int, topics []quiz.Topic) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE category = ?`, categoryID); err != nil {
			return err
		}
		for _, topic := range topics {
			if err := upsertTopicTx(ctx, tx, topic); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) UpsertTopic(ctx context.Context, topic quiz.Topic) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertTopicTx(ctx, tx, topic)
	})
}

func upsertTopicTx(ctx context.Context, tx *sql.Tx, topic quiz.Topic) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO topics
		 (id, title, description, category, categorytitle, question_count, total_score, image, local_image_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		topic.ID,
		topic.Title,
		topic.Description,
		topic.CategoryID,
		topic.CategoryTitle,
		topic.QuestionCount,
		topic.TotalScore,
		topic.Image,
		topic.LocalImagePath,
	)
	return err
}

const topicColumns = `id, title, description, category, categorytitle, question_count, total_score, image, local_image_path`

func (s *SQLiteStore) GetTopics(ctx context.Context) ([]quiz.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY id ASC`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func (s *SQLiteStore) GetTopicsByCategory(ctx context.Context, categoryID int) ([]quiz.Topic, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+topicColumns+` FROM topics WHERE category = ? ORDER BY id ASC`,
		categoryID,
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func (s *SQLiteStore) GetTopicByID(ctx context.Context, id int) (quiz.Topic, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	topic, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.Topic{}, quiz.ErrTopicNotFound
		}
		return quiz.Topic{}, storageErr(err)
	}
	return topic, nil
}

func (s *SQLiteStore) ReplaceQuestions(ctx context.Context, topicID int, questions []quiz.Question) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE topic = ?`, topicID); err != nil {
			return err
		}
		for _, question := range questions {
			_, err := tx.ExecContext(
				ctx,
				`INSERT OR REPLACE INTO questions
				 (id, title, option_1, option_2, option_3, option_4, correct, explanation, link, score, story, topic, category, difficulty)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				question.ID,
				question.Title,
				question.Options[0],
				question.Options[1],
				question.Options[2],
				question.Options[3],
				quiz.CorrectToWire(question.CorrectAnswer),
				question.Explanation,
				question.Link,
				question.Score,
				question.Story,
				question.TopicID,
				question.CategoryID,
				question.Difficulty,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetQuestionsByTopic(ctx context.Context, topicID int) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, option_1, option_2, option_3, option_4, correct, explanation, link, score, story, topic, category, difficulty
		 FROM questions WHERE topic = ? ORDER BY id ASC`,
		topicID,
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	questions := make([]quiz.Question, 0)
	for rows.Next() {
		var (
			question quiz.Question
			correct  int
		)
		if err := rows.Scan(
			&question.ID,
			&question.Title,
			&question.Options[0],
			&question.Options[1],
			&question.Options[2],
			&question.Options[3],
			&correct,
			&question.Explanation,
			&question.Link,
			&question.Score,
			&question.Story,
			&question.TopicID,
			&question.CategoryID,
			&question.Difficulty,
		); err != nil {
			return nil, storageErr(err)
		}
		question.CorrectAnswer = quiz.CorrectFromWire(correct)
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return questions, nil
}

type topicScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row topicScanner) (quiz.Topic, error) {
	var topic quiz.Topic
	err := row.Scan(
		&topic.ID,
		&topic.Title,
		&topic.Description,
		&topic.CategoryID,
		&topic.CategoryTitle,
		&topic.QuestionCount,
		&topic.TotalScore,
		&topic.Image,
		&topic.LocalImagePath,
	)
	return topic, err
}

func scanTopics(rows *sql.Rows) ([]quiz.Topic, error) {
	topics := make([]quiz.Topic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return topics, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return storageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(err)
	}
	return nil
}
