package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type historyRepo struct {
	db *sqlx.DB
}

type historyRow struct {
	ID            int64   `db:"id"`
	UserID        string  `db:"user_id"`
	LessonID      string  `db:"lesson_id"`
	SessionID     string  `db:"session_id"`
	CompletedAt   string  `db:"completed_at"`
	Accuracy      float64 `db:"accuracy"`
	TimeSpentMs   int64   `db:"time_spent_ms"`
	ExerciseCount int     `db:"exercise_count"`
	LivesUsed     int     `db:"lives_used"`
	XPEarned      int     `db:"xp_earned"`
}

func (r *historyRepo) Append(ctx context.Context, rec HistoryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lesson_history (
			user_id, lesson_id, session_id, completed_at, accuracy,
			time_spent_ms, exercise_count, lives_used, xp_earned
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.LessonID, rec.SessionID,
		rec.CompletedAt.UTC().Format(time.RFC3339), rec.Accuracy,
		rec.TimeSpentMs, rec.ExerciseCount, rec.LivesUsed, rec.XPEarned)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	query := `SELECT * FROM lesson_history WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	records := make([]HistoryRecord, 0, len(rows))
	for _, row := range rows {
		completedAt, err := time.Parse(time.RFC3339, row.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		records = append(records, HistoryRecord{
			UserID:        row.UserID,
			LessonID:      row.LessonID,
			SessionID:     row.SessionID,
			CompletedAt:   completedAt,
			Accuracy:      row.Accuracy,
			TimeSpentMs:   row.TimeSpentMs,
			ExerciseCount: row.ExerciseCount,
			LivesUsed:     row.LivesUsed,
			XPEarned:      row.XPEarned,
		})
	}
	return records, nil
}
