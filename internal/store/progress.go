package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type progressRepo struct {
	db *sqlx.DB
}

type progressRow struct {
	UserID             string `db:"user_id"`
	LessonID           string `db:"lesson_id"`
	ExercisesCompleted int    `db:"exercises_completed"`
	TotalExercises     int    `db:"total_exercises"`
	ProgressPercent    int    `db:"progress_percent"`
	LastAccessed       string `db:"last_accessed"`
}

func (r *progressRepo) Get(ctx context.Context, userID, lessonID string) (*LessonProgress, error) {
	var row progressRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM lesson_progress WHERE user_id = ? AND lesson_id = ?`, userID, lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load lesson progress: %w", err)
	}

	accessed, err := time.Parse(time.RFC3339, row.LastAccessed)
	if err != nil {
		return nil, fmt.Errorf("parse last_accessed: %w", err)
	}
	return &LessonProgress{
		UserID:             row.UserID,
		LessonID:           row.LessonID,
		ExercisesCompleted: row.ExercisesCompleted,
		TotalExercises:     row.TotalExercises,
		ProgressPercent:    row.ProgressPercent,
		LastAccessed:       accessed,
	}, nil
}

func (r *progressRepo) Upsert(ctx context.Context, p LessonProgress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lesson_progress (
			user_id, lesson_id, exercises_completed, total_exercises,
			progress_percent, last_accessed
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			exercises_completed = excluded.exercises_completed,
			total_exercises     = excluded.total_exercises,
			progress_percent    = excluded.progress_percent,
			last_accessed       = excluded.last_accessed`,
		p.UserID, p.LessonID, p.ExercisesCompleted, p.TotalExercises,
		p.ProgressPercent, p.LastAccessed.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert lesson progress: %w", err)
	}
	return nil
}

func (r *progressRepo) CompletedLessons(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT lesson_id FROM completed_lessons WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("load completed lessons: %w", err)
	}

	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// MarkCompleted inserts into the completed set (a re-completion is a no-op
// there) and clears the in-progress row in one transaction.
func (r *progressRepo) MarkCompleted(ctx context.Context, userID, lessonID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark completed: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO completed_lessons (user_id, lesson_id, completed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`,
		userID, lessonID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert completed lesson: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM lesson_progress WHERE user_id = ? AND lesson_id = ?`, userID, lessonID)
	if err != nil {
		return fmt.Errorf("clear lesson progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark completed: %w", err)
	}
	return nil
}
