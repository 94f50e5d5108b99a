// Package syncer drains the pending-progress queue to the remote
// service. Records are written locally first and uploaded later;
// drains are opportunistic (startup, after actions that plausibly
// restored connectivity), never scheduled.
package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"quiz-pocket/internal/gateway"
	"quiz-pocket/internal/quiz"
)

// Uploader is the slice of the gateway the engine needs;
// *gateway.Client satisfies it.
type Uploader interface {
	SaveProgress(ctx context.Context, upload gateway.ProgressUpload) (bool, string, error)
}

// Policy is the explicit retry policy: exponential backoff from
// BaseDelay capped at MaxDelay, with an optional attempt cap. The zero
// value retries every drain with no delay, which is the legacy
// behavior.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NextDelay is the wait before retrying a record that has already
// failed `attempts` times.
func (p Policy) NextDelay(attempts int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 0; i < attempts; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// DrainStats summarizes one DrainOnce pass.
type DrainStats struct {
	Uploaded int  `json:"uploaded"`
	Failed   int  `json:"failed"`
	Skipped  int  `json:"skipped"`
	Draining bool `json:"already_draining,omitempty"`
}

type Engine struct {
	queue    quiz.ProgressRepository
	uploader Uploader
	deviceID string
	policy   Policy
	logger   *slog.Logger

	// Serializes drains within this process; overlapping calls return
	// immediately instead of double-reading the queue.
	draining atomic.Bool

	now func() time.Time
}

func New(queue quiz.ProgressRepository, uploader Uploader, deviceID string, policy Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		queue:    queue,
		uploader: uploader,
		deviceID: deviceID,
		policy:   policy,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue appends a completed quiz to the durable queue. It succeeds
// or fails on local storage alone; no network attempt happens here.
func (e *Engine) Enqueue(ctx context.Context, record quiz.ProgressRecord) (int64, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = e.now()
	}
	id, err := e.queue.EnqueueProgress(ctx, record)
	if err != nil {
		return 0, err
	}
	e.logger.Info("progress queued", "id", id, "user", record.UserID, "quiz", record.QuizID)
	return id, nil
}

// DrainOnce uploads every due unsynced record. Per record: success
// marks it synced, failure bumps its attempt count and defers it per
// the policy, and the drain moves on either way. A concurrent drain
// returns immediately with Draining set.
func (e *Engine) DrainOnce(ctx context.Context) (DrainStats, error) {
	var stats DrainStats
	if !e.draining.CompareAndSwap(false, true) {
		stats.Draining = true
		return stats, nil
	}
	defer e.draining.Store(false)

	records, err := e.queue.UnsyncedProgress(ctx, e.now())
	if err != nil {
		return stats, err
	}

	for _, record := range records {
		if e.policy.MaxAttempts > 0 && record.Attempts >= e.policy.MaxAttempts {
			stats.Skipped++
			continue
		}

		ok, message, err := e.uploader.SaveProgress(ctx, e.uploadFor(record))
		if err != nil || !ok {
			stats.Failed++
			e.logger.Warn("progress upload failed",
				"id", record.ID,
				"attempts", record.Attempts+1,
				"message", message,
				"error", err,
			)
			next := e.now().Add(e.policy.NextDelay(record.Attempts))
			if markErr := e.queue.MarkProgressAttempt(ctx, record.ID, next); markErr != nil {
				return stats, markErr
			}
			continue
		}

		if err := e.queue.MarkProgressSynced(ctx, record.ID); err != nil {
			return stats, err
		}
		stats.Uploaded++
		e.logger.Info("progress synced", "id", record.ID, "message", message)
	}

	return stats, nil
}

func (e *Engine) uploadFor(record quiz.ProgressRecord) gateway.ProgressUpload {
	payload := json.RawMessage(record.Payload)
	if !json.Valid(payload) {
		// Payload is opaque to the engine but the upload body must
		// stay well-formed JSON.
		encoded, _ := json.Marshal(record.Payload)
		payload = encoded
	}
	return gateway.ProgressUpload{
		UserID:         record.UserID,
		QuizID:         record.QuizID,
		Score:          record.Score,
		CorrectAnswers: record.CorrectAnswers,
		TotalQuestions: record.TotalQuestions,
		QuizData:       payload,
		Datetime:       record.CreatedAt.Format(time.RFC3339),
		DeviceID:       e.deviceID,
	}
}
