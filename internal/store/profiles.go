package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DefaultMaxLives is the starting lives balance for a new profile.
const DefaultMaxLives = 5

type profileRepo struct {
	db *sqlx.DB
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p,
		`SELECT user_id, lives, max_lives FROM profiles WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		p = Profile{UserID: userID, Lives: DefaultMaxLives, MaxLives: DefaultMaxLives}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO profiles (user_id, lives, max_lives) VALUES (?, ?, ?)
			 ON CONFLICT (user_id) DO NOTHING`,
			p.UserID, p.Lives, p.MaxLives)
		if err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) Balance(ctx context.Context, userID string) (int, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.Lives, nil
}

// Consume deducts atomically: the guarded UPDATE succeeds only when the
// balance covers the amount, so two racing consumers cannot overdraw.
func (r *profileRepo) Consume(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("consume amount %d must be positive", amount)
	}
	if _, err := r.Get(ctx, userID); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET lives = lives - ? WHERE user_id = ? AND lives >= ?`,
		amount, userID, amount)
	if err != nil {
		return false, fmt.Errorf("consume lives: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume lives: %w", err)
	}
	return rows > 0, nil
}

func (r *profileRepo) Refill(ctx context.Context, userID string) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET lives = max_lives WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("refill lives: %w", err)
	}
	return nil
}
