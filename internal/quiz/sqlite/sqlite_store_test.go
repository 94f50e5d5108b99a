package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quiz-pocket/internal/quiz"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func sampleCategories() []quiz.Category {
	return []quiz.Category{
		{ID: 1, Title: "Science", Image: "cdn/science.png", Parent: 0, Description: "All of science"},
		{ID: 2, Title: "Physics", Image: "cdn/physics.png", Parent: 1, Description: "Mechanics and more"},
	}
}

func TestReplaceCategoriesIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	categories := sampleCategories()
	if err := store.ReplaceCategories(ctx, categories); err != nil {
		t.Fatalf("ReplaceCategories failed: %v", err)
	}
	if err := store.ReplaceCategories(ctx, categories); err != nil {
		t.Fatalf("second ReplaceCategories failed: %v", err)
	}

	got, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 categories after double replace, got %d", len(got))
	}
	if got[0] != categories[0] || got[1] != categories[1] {
		t.Fatalf("categories round trip mismatch: %+v", got)
	}
}

func TestReplaceCategoriesDropsStaleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceCategories(ctx, sampleCategories()); err != nil {
		t.Fatalf("ReplaceCategories failed: %v", err)
	}

	replacement := quiz.Category{ID: 1, Title: "Renamed", Image: "", Parent: 2, Description: ""}
	if err := store.ReplaceCategories(ctx, []quiz.Category{replacement}); err != nil {
		t.Fatalf("second ReplaceCategories failed: %v", err)
	}

	got, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	// The mirror matches the last batch wholesale: the row the server
	// stopped returning is gone, and no field-level merge happened.
	if len(got) != 1 || got[0] != replacement {
		t.Fatalf("expected only the replacement row, got %+v", got)
	}

	if err := store.ReplaceCategories(ctx, nil); err != nil {
		t.Fatalf("empty ReplaceCategories failed: %v", err)
	}
	got, err = store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories after empty replace failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty batch must empty the mirror, got %+v", got)
	}
}

func TestTopicsByCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	physicsTopics := []quiz.Topic{
		{ID: 10, Title: "Gravity", CategoryID: 2, CategoryTitle: "Physics", QuestionCount: 5, TotalScore: 50, Image: "cdn/g.png"},
		{ID: 11, Title: "Optics", CategoryID: 2, CategoryTitle: "Physics", QuestionCount: 3, TotalScore: 30, Image: "cdn/o.png"},
	}
	if err := store.ReplaceTopics(ctx, 2, physicsTopics); err != nil {
		t.Fatalf("ReplaceTopics failed: %v", err)
	}
	biologyTopics := []quiz.Topic{
		{ID: 12, Title: "Cells", CategoryID: 3, CategoryTitle: "Biology", QuestionCount: 4, TotalScore: 40, Image: "cdn/c.png"},
	}
	if err := store.ReplaceTopics(ctx, 3, biologyTopics); err != nil {
		t.Fatalf("ReplaceTopics failed: %v", err)
	}

	physics, err := store.GetTopicsByCategory(ctx, 2)
	if err != nil {
		t.Fatalf("GetTopicsByCategory failed: %v", err)
	}
	if len(physics) != 2 || physics[0].ID != 10 || physics[1].ID != 11 {
		t.Fatalf("unexpected physics topics: %+v", physics)
	}

	all, err := store.GetTopics(ctx)
	if err != nil {
		t.Fatalf("GetTopics failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(all))
	}

	topic, err := store.GetTopicByID(ctx, 12)
	if err != nil {
		t.Fatalf("GetTopicByID failed: %v", err)
	}
	if topic.Title != "Cells" || topic.CategoryTitle != "Biology" {
		t.Fatalf("unexpected topic: %+v", topic)
	}

	if _, err := store.GetTopicByID(ctx, 999); !errors.Is(err, quiz.ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestReplaceTopicsScopedToCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceTopics(ctx, 2, []quiz.Topic{
		{ID: 10, Title: "Gravity", CategoryID: 2},
		{ID: 11, Title: "Optics", CategoryID: 2},
	}); err != nil {
		t.Fatalf("ReplaceTopics failed: %v", err)
	}
	if err := store.ReplaceTopics(ctx, 3, []quiz.Topic{
		{ID: 12, Title: "Cells", CategoryID: 3},
	}); err != nil {
		t.Fatalf("ReplaceTopics failed: %v", err)
	}

	// Rewriting category 2 with one topic drops its stale sibling but
	// leaves category 3 alone.
	if err := store.ReplaceTopics(ctx, 2, []quiz.Topic{
		{ID: 10, Title: "Gravity", CategoryID: 2},
	}); err != nil {
		t.Fatalf("scoped ReplaceTopics failed: %v", err)
	}

	physics, err := store.GetTopicsByCategory(ctx, 2)
	if err != nil {
		t.Fatalf("GetTopicsByCategory failed: %v", err)
	}
	if len(physics) != 1 || physics[0].ID != 10 {
		t.Fatalf("expected only topic 10 to survive, got %+v", physics)
	}

	biology, err := store.GetTopicsByCategory(ctx, 3)
	if err != nil {
		t.Fatalf("GetTopicsByCategory failed: %v", err)
	}
	if len(biology) != 1 || biology[0].ID != 12 {
		t.Fatalf("other categories must be untouched, got %+v", biology)
	}
}

func TestUpsertTopicWritesSingleRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceTopics(ctx, 2, []quiz.Topic{
		{ID: 10, Title: "Gravity", CategoryID: 2},
		{ID: 11, Title: "Optics", CategoryID: 2},
	}); err != nil {
		t.Fatalf("ReplaceTopics failed: %v", err)
	}

	detail := quiz.Topic{ID: 10, Title: "Gravity", CategoryID: 2, LocalImagePath: "/data/images/g.png"}
	if err := store.UpsertTopic(ctx, detail); err != nil {
		t.Fatalf("UpsertTopic failed: %v", err)
	}

	got, err := store.GetTopicByID(ctx, 10)
	if err != nil {
		t.Fatalf("GetTopicByID failed: %v", err)
	}
	if got != detail {
		t.Fatalf("topic detail mismatch: %+v", got)
	}

	all, err := store.GetTopicsByCategory(ctx, 2)
	if err != nil {
		t.Fatalf("GetTopicsByCategory failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("single-row upsert must not drop siblings, got %+v", all)
	}
}

func TestQuestionCorrectIndexRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	question := quiz.Question{
		ID:            100,
		Title:         "Speed of light?",
		Options:       [quiz.OptionCount]string{"3e8 m/s", "3e6 m/s", "3e10 m/s", "340 m/s"},
		CorrectAnswer: 2, // zero-based in memory
		Explanation:   "Roughly 3e8 in vacuum.",
		Score:         10,
		TopicID:       10,
	}
	if err := store.ReplaceQuestions(ctx, 10, []quiz.Question{question}); err != nil {
		t.Fatalf("ReplaceQuestions failed: %v", err)
	}

	// The persisted column carries the one-based wire form.
	var stored int
	if err := store.db.QueryRow(`SELECT correct FROM questions WHERE id = 100`).Scan(&stored); err != nil {
		t.Fatalf("raw correct read failed: %v", err)
	}
	if stored != 3 {
		t.Fatalf("expected stored correct=3, got %d", stored)
	}

	got, err := store.GetQuestionsByTopic(ctx, 10)
	if err != nil {
		t.Fatalf("GetQuestionsByTopic failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if got[0].CorrectAnswer != 2 {
		t.Fatalf("expected zero-based correct answer 2, got %d", got[0].CorrectAnswer)
	}
	if got[0].Options != question.Options {
		t.Fatalf("options mismatch: %+v", got[0].Options)
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := quiz.UserProfile{
		ID: 42, Fullname: "Asha Rao", Age: "13-15", Relationship: "student",
		Email: "asha@example.com", Phone: "555-0101", Nickname: "asha",
		Password: "opaque", Icon: 3, Badge: 2, Premium: true,
	}
	if err := store.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	got, err := store.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got != user {
		t.Fatalf("user round trip mismatch: %+v", got)
	}

	if _, err := store.GetUser(ctx, 7); !errors.Is(err, quiz.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProgressQueueLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := store.EnqueueProgress(ctx, quiz.ProgressRecord{
		UserID: 42, QuizID: 7, Score: 30, CorrectAnswers: 3, TotalQuestions: 5,
		Payload:   `[{"q":1,"a":2}]`,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("EnqueueProgress failed: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero local row id")
	}

	pending, err := store.UnsyncedProgress(ctx, now)
	if err != nil {
		t.Fatalf("UnsyncedProgress failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id || pending[0].Synced {
		t.Fatalf("unexpected pending queue: %+v", pending)
	}
	if pending[0].Payload != `[{"q":1,"a":2}]` {
		t.Fatalf("payload not preserved: %q", pending[0].Payload)
	}

	if err := store.MarkProgressSynced(ctx, id); err != nil {
		t.Fatalf("MarkProgressSynced failed: %v", err)
	}
	// Exactly-once transition: a second mark is a harmless no-op.
	if err := store.MarkProgressSynced(ctx, id); err != nil {
		t.Fatalf("repeat MarkProgressSynced failed: %v", err)
	}

	pending, err = store.UnsyncedProgress(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("UnsyncedProgress after sync failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after sync, got %d rows", len(pending))
	}

	record, err := store.ProgressByID(ctx, id)
	if err != nil {
		t.Fatalf("ProgressByID failed: %v", err)
	}
	if !record.Synced {
		t.Fatalf("expected record to be synced")
	}
	if !record.CreatedAt.Equal(now) {
		t.Fatalf("created_at mismatch: %v != %v", record.CreatedAt, now)
	}
}

func TestMarkProgressAttemptDefersRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := store.EnqueueProgress(ctx, quiz.ProgressRecord{UserID: 1, QuizID: 2, Payload: "[]", CreatedAt: now})
	if err != nil {
		t.Fatalf("EnqueueProgress failed: %v", err)
	}

	next := now.Add(time.Hour)
	if err := store.MarkProgressAttempt(ctx, id, next); err != nil {
		t.Fatalf("MarkProgressAttempt failed: %v", err)
	}

	due, err := store.UnsyncedProgress(ctx, now)
	if err != nil {
		t.Fatalf("UnsyncedProgress failed: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("deferred record should not be due yet, got %d rows", len(due))
	}

	due, err = store.UnsyncedProgress(ctx, next.Add(time.Second))
	if err != nil {
		t.Fatalf("UnsyncedProgress after deferral failed: %v", err)
	}
	if len(due) != 1 || due[0].Attempts != 1 {
		t.Fatalf("expected 1 due record with attempts=1, got %+v", due)
	}
}

func TestPurgeSyncedBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	oldID, err := store.EnqueueProgress(ctx, quiz.ProgressRecord{UserID: 1, QuizID: 1, Payload: "[]", CreatedAt: old})
	if err != nil {
		t.Fatalf("enqueue old failed: %v", err)
	}
	if _, err := store.EnqueueProgress(ctx, quiz.ProgressRecord{UserID: 1, QuizID: 2, Payload: "[]", CreatedAt: fresh}); err != nil {
		t.Fatalf("enqueue fresh failed: %v", err)
	}
	if err := store.MarkProgressSynced(ctx, oldID); err != nil {
		t.Fatalf("mark synced failed: %v", err)
	}

	deleted, err := store.PurgeSyncedBefore(ctx, fresh.Add(-time.Hour))
	if err != nil {
		t.Fatalf("PurgeSyncedBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 purged row, got %d", deleted)
	}

	// The unsynced row survives regardless of age.
	pending, err := store.UnsyncedProgress(ctx, fresh)
	if err != nil {
		t.Fatalf("UnsyncedProgress failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the unsynced row to survive the purge, got %d rows", len(pending))
	}
}

func TestSchemaIdempotentAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	ctx := context.Background()
	if err := store.ReplaceCategories(ctx, sampleCategories()); err != nil {
		t.Fatalf("ReplaceCategories failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories after reopen failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected data to survive reopen, got %d categories", len(got))
	}
}

func TestOpenFailureWrapsStorageUnavailable(t *testing.T) {
	// A directory is not a valid database file.
	if _, err := NewSQLiteStore(t.TempDir()); !errors.Is(err, quiz.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
