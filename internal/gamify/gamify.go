// Package gamify computes the rewards handed back to the learner when a
// lesson completes. The session aggregator only passes these through; all
// reward policy lives here.
package gamify

import (
	"context"
	"fmt"
	"time"

	"github.com/lexivo/lexivo/internal/store"
)

// RewardRequest carries the session totals the reward computation needs.
type RewardRequest struct {
	UserID        string
	LessonID      string
	Accuracy      float64 // 0-100
	TimeSpentMs   int64
	ExerciseCount int
}

// Reward is the outcome of one completed lesson.
type Reward struct {
	XPEarned             int
	CoinsEarned          int
	GemsEarned           int
	AchievementsUnlocked []string
	LevelUp              bool
	NewLevel             int
}

// Collaborator is the interface the session aggregator calls once per
// completed session.
type Collaborator interface {
	Reward(ctx context.Context, req RewardRequest) (*Reward, error)
}

// XP and level tuning.
const (
	xpPerExercise   = 10
	accuracyBonusAt = 90.0
	accuracyBonusXP = 25
	xpPerLevel      = 100
	coinsPerLesson  = 5
)

// Achievement ids.
const (
	AchievementFirstLesson   = "first_lesson"
	AchievementPerfectLesson = "perfect_lesson"
	AchievementTenLessons    = "ten_lessons"
	AchievementQuickStudy    = "quick_study"
)

// Service is the default reward implementation, backed by the lesson
// history so streak- and milestone-style achievements can be detected.
type Service struct {
	history store.HistoryRepo
}

// NewService creates a reward service.
func NewService(history store.HistoryRepo) *Service {
	return &Service{history: history}
}

// Reward computes XP, coins, gems, achievements and level-up for one
// completed lesson.
func (s *Service) Reward(ctx context.Context, req RewardRequest) (*Reward, error) {
	past, err := s.history.List(ctx, req.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("load history for rewards: %w", err)
	}

	xp := req.ExerciseCount * xpPerExercise
	if req.Accuracy >= accuracyBonusAt {
		xp += accuracyBonusXP
	}

	r := &Reward{
		XPEarned:    xp,
		CoinsEarned: coinsPerLesson,
	}

	if req.Accuracy >= 100 {
		r.GemsEarned = 1
		r.AchievementsUnlocked = append(r.AchievementsUnlocked, AchievementPerfectLesson)
	}
	if len(past) == 0 {
		r.AchievementsUnlocked = append(r.AchievementsUnlocked, AchievementFirstLesson)
	}
	if len(past) == 9 {
		r.AchievementsUnlocked = append(r.AchievementsUnlocked, AchievementTenLessons)
	}
	if req.ExerciseCount > 0 && req.TimeSpentMs > 0 &&
		time.Duration(req.TimeSpentMs)*time.Millisecond < time.Duration(req.ExerciseCount)*10*time.Second {
		r.AchievementsUnlocked = append(r.AchievementsUnlocked, AchievementQuickStudy)
	}

	// Level-up when total XP crosses a level boundary.
	totalBefore := 0
	for _, rec := range past {
		totalBefore += rec.XPEarned
	}
	levelBefore := totalBefore / xpPerLevel
	r.NewLevel = (totalBefore + r.XPEarned) / xpPerLevel
	r.LevelUp = r.NewLevel > levelBefore

	return r, nil
}
