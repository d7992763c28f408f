package store

import (
	"context"
	"time"

	"github.com/lexivo/lexivo/internal/review"
)

// LessonProgress is the durable per-user, per-lesson progress record.
type LessonProgress struct {
	UserID             string    `json:"user_id"`
	LessonID           string    `json:"lesson_id"`
	ExercisesCompleted int       `json:"exercises_completed"`
	TotalExercises     int       `json:"total_exercises"`
	ProgressPercent    int       `json:"progress_percent"`
	LastAccessed       time.Time `json:"last_accessed"`
}

// Percent computes the rounded progress percentage.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

// HistoryRecord is one completed lesson attempt. Every attempt gets its
// own record, including re-completions of an already-completed lesson.
type HistoryRecord struct {
	UserID        string    `json:"user_id"`
	LessonID      string    `json:"lesson_id"`
	SessionID     string    `json:"session_id"`
	CompletedAt   time.Time `json:"completed_at"`
	Accuracy      float64   `json:"accuracy"`
	TimeSpentMs   int64     `json:"time_spent_ms"`
	ExerciseCount int       `json:"exercise_count"`
	LivesUsed     int       `json:"lives_used"`
	XPEarned      int       `json:"xp_earned"`
}

// Profile holds the learner's consumable resource balance.
type Profile struct {
	UserID   string `json:"user_id" db:"user_id"`
	Lives    int    `json:"lives" db:"lives"`
	MaxLives int    `json:"max_lives" db:"max_lives"`
}

// ReviewStats is the per-user scheduling aggregate for the stats command.
type ReviewStats struct {
	TotalItems     int
	DueNow         int
	AverageEase    float64
	AverageQuality float64
}

// ReviewItemRepo persists per-item scheduling state.
type ReviewItemRepo interface {
	// Get returns the item, or ErrNotFound if the learner has never seen it.
	Get(ctx context.Context, userID, itemID string) (*review.Item, error)

	// Upsert writes the item. Writes whose LastReviewedAt predates the
	// stored row are ignored: a delayed duplicate must not clobber a
	// newer scheduling state.
	Upsert(ctx context.Context, item review.Item) error

	// Due returns items due at or before now, most overdue first.
	// limit <= 0 means no limit.
	Due(ctx context.Context, userID string, now time.Time, limit int) ([]review.Item, error)

	// Stats returns the per-user scheduling aggregate.
	Stats(ctx context.Context, userID string, now time.Time) (*ReviewStats, error)
}

// ProgressRepo persists in-progress lesson state and the completed set.
type ProgressRepo interface {
	// Get returns the in-progress record, or ErrNotFound.
	Get(ctx context.Context, userID, lessonID string) (*LessonProgress, error)

	// Upsert writes the in-progress record.
	Upsert(ctx context.Context, p LessonProgress) error

	// CompletedLessons returns the set of completed lesson ids.
	CompletedLessons(ctx context.Context, userID string) (map[string]bool, error)

	// MarkCompleted adds the lesson to the completed set (idempotent) and
	// removes the in-progress record.
	MarkCompleted(ctx context.Context, userID, lessonID string) error
}

// HistoryRepo is the append-only record of completed attempts.
type HistoryRepo interface {
	Append(ctx context.Context, rec HistoryRecord) error

	// List returns the most recent records first. limit <= 0 means no limit.
	List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
}

// ProfileRepo manages the consumable resource ("lives") balance.
type ProfileRepo interface {
	// Get returns the profile, creating a default one on first access.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Balance returns the current lives balance.
	Balance(ctx context.Context, userID string) (int, error)

	// Consume atomically deducts amount lives. Returns false without
	// deducting if the balance is insufficient.
	Consume(ctx context.Context, userID string, amount int) (bool, error)

	// Refill restores the balance to MaxLives.
	Refill(ctx context.Context, userID string) error
}
