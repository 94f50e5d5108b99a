package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStorageUnavailable wraps any failure of the local store
	// itself (cannot open, cannot write). Never absorbed silently.
	ErrStorageUnavailable = errors.New("local store unavailable")

	// ErrFetchFailed marks a remote gateway call that failed or
	// returned a malformed body. The read-through service absorbs it
	// whenever a cache fallback exists.
	ErrFetchFailed = errors.New("remote fetch failed")

	// ErrNoData is the only read error that reaches callers: both the
	// fetch and the local fallback came up empty-handed.
	ErrNoData = errors.New("no data available")

	ErrTopicNotFound    = errors.New("topic not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrProgressNotFound = errors.New("progress record not found")
)

// CatalogRepository is the mirrored-entity side of the local store. A
// successful list fetch carries the server's full state for its scope,
// so the Replace methods clear that scope and rewrite it; rows the
// server stopped returning disappear from the mirror, and an empty
// batch empties the scope. UpsertTopic is the one row-level write,
// serving the topic detail view.
type CatalogRepository interface {
	ReplaceCategories(ctx context.Context, categories []Category) error
	GetCategories(ctx context.Context) ([]Category, error)

	ReplaceBanners(ctx context.Context, banners []Banner) error
	GetBanners(ctx context.Context) ([]Banner, error)

	ReplaceTopics(ctx context.Context, categoryID int, topics []Topic) error
	UpsertTopic(ctx context.Context, topic Topic) error
	GetTopics(ctx context.Context) ([]Topic, error)
	GetTopicsByCategory(ctx context.Context, categoryID int) ([]Topic, error)
	GetTopicByID(ctx context.Context, id int) (Topic, error)

	ReplaceQuestions(ctx context.Context, topicID int, questions []Question) error
	GetQuestionsByTopic(ctx context.Context, topicID int) ([]Question, error)
}

type UserRepository interface {
	UpsertUser(ctx context.Context, user UserProfile) error
	GetUser(ctx context.Context, id int) (UserProfile, error)
}

// ProgressRepository is the write-ahead queue. A record transitions
// synced=false -> synced=true exactly once and is retained afterwards
// as an audit log; PurgeSyncedBefore exists for callers that want a
// retention window.
type ProgressRepository interface {
	EnqueueProgress(ctx context.Context, record ProgressRecord) (int64, error)
	UnsyncedProgress(ctx context.Context, now time.Time) ([]ProgressRecord, error)
	MarkProgressSynced(ctx context.Context, id int64) error
	MarkProgressAttempt(ctx context.Context, id int64, nextAttempt time.Time) error
	ProgressByID(ctx context.Context, id int64) (ProgressRecord, error)
	PurgeSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
