package review

import "time"

// ItemType classifies what kind of learnable unit an item tracks.
type ItemType string

const (
	TypeVocabulary ItemType = "vocabulary"
	TypeGrammar    ItemType = "grammar"
	TypePhrase     ItemType = "phrase"
)

// Difficulty is the author-declared difficulty of a learnable item.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// Item holds one learner's scheduling state for one learnable unit.
// (UserID, ItemID) is unique; the item is mutated only by Engine.Update.
type Item struct {
	UserID         string    `json:"user_id" db:"user_id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	ItemType       ItemType  `json:"item_type" db:"item_type"`
	LanguageCode   string    `json:"language_code" db:"language_code"`
	EaseFactor     float64   `json:"ease_factor" db:"ease_factor"`
	Interval       int       `json:"interval" db:"interval"`
	Repetitions    int       `json:"repetitions" db:"repetitions"`
	NextReviewDate time.Time `json:"next_review_date" db:"next_review_date"`
	LastReviewedAt time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	Quality        int       `json:"quality" db:"quality"`
	AverageQuality float64   `json:"average_quality" db:"average_quality"`
	TotalReviews   int       `json:"total_reviews" db:"total_reviews"`
}

// NewItem creates the scheduling state for an item's first exposure.
func NewItem(userID, itemID string, itemType ItemType, languageCode string, p Params, now time.Time) Item {
	return Item{
		UserID:         userID,
		ItemID:         itemID,
		ItemType:       itemType,
		LanguageCode:   languageCode,
		EaseFactor:     p.InitialEase,
		Interval:       p.InitialInterval,
		Repetitions:    0,
		NextReviewDate: now.AddDate(0, 0, p.InitialInterval),
		LastReviewedAt: now,
	}
}

// IsDue returns true if the item is at or past its review date.
func (it *Item) IsDue(now time.Time) bool {
	return !now.Before(it.NextReviewDate)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (it *Item) OverdueDays(now time.Time) float64 {
	if now.Before(it.NextReviewDate) {
		return 0
	}
	return now.Sub(it.NextReviewDate).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (it *Item) DaysUntilReview(now time.Time) int {
	if it.IsDue(now) {
		return 0
	}
	return int(it.NextReviewDate.Sub(now).Hours()/24.0) + 1
}
