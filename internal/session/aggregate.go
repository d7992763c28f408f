package session

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/lexivo/lexivo/internal/gamify"
	"github.com/lexivo/lexivo/internal/review"
	"github.com/lexivo/lexivo/internal/store"
)

// Result is the end-of-session aggregate: performance totals, rewards, the
// number of review items pushed through the scheduler, and the lesson that
// follows in unlock order. Produced exactly once per completed session.
type Result struct {
	SessionID string
	UserID    string
	LessonID  string

	TotalAccuracy    float64 // mean exercise accuracy, 0-100
	TotalTimeSpentMs int64
	ExerciseCount    int
	LivesUsed        int

	XPEarned             int
	CoinsEarned          int
	GemsEarned           int
	AchievementsUnlocked []string
	LevelUp              bool
	NewLevel             int

	// ItemsScheduled counts items whose scheduling state was updated and
	// persisted; stale or failed writes are excluded.
	ItemsScheduled int

	// NextLessonID is the next lesson in unlock order, or "" at the end of
	// the catalog.
	NextLessonID string
}

// finalize marks the session completed and runs the aggregation pass:
// consolidated scheduling updates, completion marking, rewards, and the
// history record. Store failures along the way degrade individual pieces
// (logged) but never abort completion. Caller holds the session lock.
func (e *Engine) finalize(ctx context.Context, s *LessonSession) *Result {
	now := e.now()
	s.status = StatusCompleted
	s.EndTime = &now

	res := &Result{
		SessionID:        s.SessionID,
		UserID:           s.UserID,
		LessonID:         s.LessonID,
		TotalAccuracy:    meanAccuracy(s.Outcomes),
		TotalTimeSpentMs: s.TotalTimeSpentMs,
		ExerciseCount:    len(s.Outcomes),
		LivesUsed:        s.LivesUsed,
		NextLessonID:     e.content.NextLessonID(s.LessonID),
	}

	res.ItemsScheduled = e.scheduleItems(ctx, s, now)

	if err := e.progress.MarkCompleted(ctx, s.UserID, s.LessonID); err != nil {
		e.log.WithError(err).WithField("lesson", s.LessonID).Warn("mark lesson completed")
	}

	reward, err := e.rewards.Reward(ctx, gamify.RewardRequest{
		UserID:        s.UserID,
		LessonID:      s.LessonID,
		Accuracy:      res.TotalAccuracy,
		TimeSpentMs:   s.TotalTimeSpentMs,
		ExerciseCount: len(s.Outcomes),
	})
	if err != nil {
		e.log.WithError(err).WithField("session", s.SessionID).Error("compute rewards")
	} else {
		res.XPEarned = reward.XPEarned
		res.CoinsEarned = reward.CoinsEarned
		res.GemsEarned = reward.GemsEarned
		res.AchievementsUnlocked = reward.AchievementsUnlocked
		res.LevelUp = reward.LevelUp
		res.NewLevel = reward.NewLevel
	}

	rec := store.HistoryRecord{
		UserID:        s.UserID,
		LessonID:      s.LessonID,
		SessionID:     s.SessionID,
		CompletedAt:   now,
		Accuracy:      res.TotalAccuracy,
		TimeSpentMs:   s.TotalTimeSpentMs,
		ExerciseCount: len(s.Outcomes),
		LivesUsed:     s.LivesUsed,
		XPEarned:      res.XPEarned,
	}
	if err := e.history.Append(ctx, rec); err != nil {
		e.log.WithError(err).WithField("session", s.SessionID).Warn("append lesson history")
	}

	s.result = res
	return res
}

// scheduleItems turns each distinct item's session stats into one
// consolidated observation and pushes it through the scheduling engine.
// An item whose stored state is newer than this session's completion is
// skipped: a newer review already superseded us.
func (e *Engine) scheduleItems(ctx context.Context, s *LessonSession, now time.Time) int {
	ids := lo.Keys(s.itemStats)
	sort.Strings(ids)

	scheduled := 0
	for _, id := range ids {
		st := s.itemStats[id]
		obs := consolidate(st)

		item, err := e.items.Get(ctx, s.UserID, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fresh := review.NewItem(s.UserID, id, st.itemType, s.lesson.LanguageCode, e.sched.Params(), now)
			item = &fresh
		case err != nil:
			e.log.WithError(err).WithField("item", id).Warn("load review item")
			continue
		}

		if item.LastReviewedAt.After(now) {
			e.log.WithFields(logrus.Fields{
				"item":     id,
				"reviewed": item.LastReviewedAt,
			}).Debug("skip stale scheduling update")
			continue
		}

		next, err := e.sched.Update(*item, obs, now)
		if err != nil {
			e.log.WithError(err).WithField("item", id).Error("scheduling update")
			continue
		}
		if err := e.items.Upsert(ctx, next); err != nil {
			e.log.WithError(err).WithField("item", id).Warn("persist review item")
			continue
		}
		scheduled++
	}
	return scheduled
}

// consolidate reduces an item's session stats to one observation. A miss
// anywhere in the session counts as an extra attempt: two misses and a hit
// reads as three attempts at the same item.
func consolidate(st *itemStat) review.Observation {
	mean := st.accuracySum / float64(st.seen)
	return review.Observation{
		Quality:            review.DeriveQuality(mean, st.hintsUsed),
		ResponseTimeMs:     int(st.timeMsSum / int64(st.seen)),
		HintsUsed:          st.hintsUsed,
		Attempts:           (st.seen - st.correct) + 1,
		DeclaredDifficulty: st.difficulty,
	}
}

func meanAccuracy(outcomes []ExerciseOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range outcomes {
		sum += o.Accuracy
	}
	return sum / float64(len(outcomes))
}
