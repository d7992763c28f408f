package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order on every Open; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS review_items (
		user_id          TEXT    NOT NULL,
		item_id          TEXT    NOT NULL,
		item_type        TEXT    NOT NULL,
		language_code    TEXT    NOT NULL DEFAULT '',
		ease_factor      REAL    NOT NULL,
		interval         INTEGER NOT NULL,
		repetitions      INTEGER NOT NULL,
		next_review_date TEXT    NOT NULL,
		last_reviewed_at TEXT    NOT NULL,
		quality          INTEGER NOT NULL DEFAULT 0,
		average_quality  REAL    NOT NULL DEFAULT 0,
		total_reviews    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_items_due
		ON review_items (user_id, next_review_date)`,
	`CREATE TABLE IF NOT EXISTS lesson_progress (
		user_id             TEXT    NOT NULL,
		lesson_id           TEXT    NOT NULL,
		exercises_completed INTEGER NOT NULL DEFAULT 0,
		total_exercises     INTEGER NOT NULL DEFAULT 0,
		progress_percent    INTEGER NOT NULL DEFAULT 0,
		last_accessed       TEXT    NOT NULL,
		PRIMARY KEY (user_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS completed_lessons (
		user_id      TEXT NOT NULL,
		lesson_id    TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		PRIMARY KEY (user_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_history (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id        TEXT    NOT NULL,
		lesson_id      TEXT    NOT NULL,
		session_id     TEXT    NOT NULL,
		completed_at   TEXT    NOT NULL,
		accuracy       REAL    NOT NULL,
		time_spent_ms  INTEGER NOT NULL,
		exercise_count INTEGER NOT NULL,
		lives_used     INTEGER NOT NULL,
		xp_earned      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lesson_history_user
		ON lesson_history (user_id, completed_at)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id   TEXT PRIMARY KEY,
		lives     INTEGER NOT NULL,
		max_lives INTEGER NOT NULL
	)`,
}

func migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
