package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexivo/lexivo/internal/review"
)

type reviewItemRepo struct {
	db *sqlx.DB
}

// reviewItemRow mirrors the review_items table. Dates are stored as
// RFC3339 text so rows stay readable in the sqlite shell.
type reviewItemRow struct {
	UserID         string  `db:"user_id"`
	ItemID         string  `db:"item_id"`
	ItemType       string  `db:"item_type"`
	LanguageCode   string  `db:"language_code"`
	EaseFactor     float64 `db:"ease_factor"`
	Interval       int     `db:"interval"`
	Repetitions    int     `db:"repetitions"`
	NextReviewDate string  `db:"next_review_date"`
	LastReviewedAt string  `db:"last_reviewed_at"`
	Quality        int     `db:"quality"`
	AverageQuality float64 `db:"average_quality"`
	TotalReviews   int     `db:"total_reviews"`
}

func toRow(it review.Item) reviewItemRow {
	return reviewItemRow{
		UserID:         it.UserID,
		ItemID:         it.ItemID,
		ItemType:       string(it.ItemType),
		LanguageCode:   it.LanguageCode,
		EaseFactor:     it.EaseFactor,
		Interval:       it.Interval,
		Repetitions:    it.Repetitions,
		NextReviewDate: it.NextReviewDate.UTC().Format(time.RFC3339),
		LastReviewedAt: it.LastReviewedAt.UTC().Format(time.RFC3339),
		Quality:        it.Quality,
		AverageQuality: it.AverageQuality,
		TotalReviews:   it.TotalReviews,
	}
}

func (r reviewItemRow) toItem() (review.Item, error) {
	next, err := time.Parse(time.RFC3339, r.NextReviewDate)
	if err != nil {
		return review.Item{}, fmt.Errorf("parse next_review_date: %w", err)
	}
	last, err := time.Parse(time.RFC3339, r.LastReviewedAt)
	if err != nil {
		return review.Item{}, fmt.Errorf("parse last_reviewed_at: %w", err)
	}
	return review.Item{
		UserID:         r.UserID,
		ItemID:         r.ItemID,
		ItemType:       review.ItemType(r.ItemType),
		LanguageCode:   r.LanguageCode,
		EaseFactor:     r.EaseFactor,
		Interval:       r.Interval,
		Repetitions:    r.Repetitions,
		NextReviewDate: next,
		LastReviewedAt: last,
		Quality:        r.Quality,
		AverageQuality: r.AverageQuality,
		TotalReviews:   r.TotalReviews,
	}, nil
}

func (r *reviewItemRepo) Get(ctx context.Context, userID, itemID string) (*review.Item, error) {
	var row reviewItemRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM review_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load review item: %w", err)
	}
	item, err := row.toItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert writes the item unless the stored row is newer. The conditional
// update makes a delayed duplicate submission a no-op instead of a rollback
// of the learner's scheduling state.
func (r *reviewItemRepo) Upsert(ctx context.Context, item review.Item) error {
	row := toRow(item)
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO review_items (
			user_id, item_id, item_type, language_code, ease_factor,
			interval, repetitions, next_review_date, last_reviewed_at,
			quality, average_quality, total_reviews
		) VALUES (
			:user_id, :item_id, :item_type, :language_code, :ease_factor,
			:interval, :repetitions, :next_review_date, :last_reviewed_at,
			:quality, :average_quality, :total_reviews
		)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			item_type        = excluded.item_type,
			language_code    = excluded.language_code,
			ease_factor      = excluded.ease_factor,
			interval         = excluded.interval,
			repetitions      = excluded.repetitions,
			next_review_date = excluded.next_review_date,
			last_reviewed_at = excluded.last_reviewed_at,
			quality          = excluded.quality,
			average_quality  = excluded.average_quality,
			total_reviews    = excluded.total_reviews
		WHERE excluded.last_reviewed_at >= review_items.last_reviewed_at`, row)
	if err != nil {
		return fmt.Errorf("upsert review item: %w", err)
	}
	return nil
}

func (r *reviewItemRepo) Due(ctx context.Context, userID string, now time.Time, limit int) ([]review.Item, error) {
	query := `SELECT * FROM review_items
		WHERE user_id = ? AND next_review_date <= ?
		ORDER BY next_review_date ASC`
	args := []any{userID, now.UTC().Format(time.RFC3339)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []reviewItemRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load due items: %w", err)
	}

	items := make([]review.Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *reviewItemRepo) Stats(ctx context.Context, userID string, now time.Time) (*ReviewStats, error) {
	var stats struct {
		Total      int             `db:"total"`
		Due        int             `db:"due"`
		AvgEase    sql.NullFloat64 `db:"avg_ease"`
		AvgQuality sql.NullFloat64 `db:"avg_quality"`
	}
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN next_review_date <= ? THEN 1 ELSE 0 END), 0) AS due,
			AVG(ease_factor) AS avg_ease,
			AVG(average_quality) AS avg_quality
		FROM review_items WHERE user_id = ?`,
		now.UTC().Format(time.RFC3339), userID)
	if err != nil {
		return nil, fmt.Errorf("load review stats: %w", err)
	}
	return &ReviewStats{
		TotalItems:     stats.Total,
		DueNow:         stats.Due,
		AverageEase:    stats.AvgEase.Float64,
		AverageQuality: stats.AvgQuality.Float64,
	}, nil
}
