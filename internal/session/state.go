package session

import (
	"sync"
	"time"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/review"
)

// Status is the lesson session lifecycle state. The three terminal states
// are absorbing: no exercise completion is accepted once reached.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
	StatusAbandoned
	StatusResourceExhausted
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusAbandoned:
		return "abandoned"
	case StatusResourceExhausted:
		return "resource_exhausted"
	}
	return "unknown"
}

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned || s == StatusResourceExhausted
}

// ExerciseOutcome records one completed exercise. Appended in submission
// order; never modified afterwards.
type ExerciseOutcome struct {
	ExerciseID    string
	Type          catalog.ExerciseType
	IsCorrect     bool
	UserAnswer    string
	CorrectAnswer string
	TimeSpentMs   int64
	HintsUsed     int
	Accuracy      float64 // 0-100, partial credit below 100 on a miss
}

// itemStat accumulates per-item evidence within one session. It backs the
// lightweight mastery preview and, at session end, the consolidated
// observation handed to the scheduling engine.
type itemStat struct {
	itemType    review.ItemType
	difficulty  review.Difficulty
	seen        int
	correct     int
	accuracySum float64
	timeMsSum   int64
	hintsUsed   int
}

// MasteryPreview is the in-session view of one item's performance. It is
// discarded with the session; the end-of-session scheduling pass is the
// authoritative update and always supersedes it.
type MasteryPreview struct {
	ItemID   string
	Seen     int
	Correct  int
	Accuracy float64 // running mean, 0-100
}

// LessonSession is one attempt at a lesson, held in memory for the
// attempt's duration only. All mutation goes through the Engine, which
// serializes calls per session via mu.
type LessonSession struct {
	SessionID string
	UserID    string
	LessonID  string
	StartTime time.Time
	EndTime   *time.Time

	Outcomes         []ExerciseOutcome
	LivesUsed        int
	TotalTimeSpentMs int64

	lesson    *catalog.Lesson
	status    Status
	answered  map[string]bool
	itemStats map[string]*itemStat
	result    *Result

	mu sync.Mutex
}

func newLessonSession(sessionID, userID string, lesson *catalog.Lesson, now time.Time) *LessonSession {
	return &LessonSession{
		SessionID: sessionID,
		UserID:    userID,
		LessonID:  lesson.ID,
		StartTime: now,
		lesson:    lesson,
		status:    StatusInProgress,
		answered:  make(map[string]bool),
		itemStats: make(map[string]*itemStat),
	}
}

// Status returns the current lifecycle state.
func (s *LessonSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the aggregate result, or nil while the session is live.
func (s *LessonSession) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Previews returns the in-session mastery preview for every item touched
// so far. Intra-lesson repetition of an item shows up here immediately,
// without waiting for session end.
func (s *LessonSession) Previews() []MasteryPreview {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MasteryPreview, 0, len(s.itemStats))
	for id, st := range s.itemStats {
		out = append(out, MasteryPreview{
			ItemID:   id,
			Seen:     st.seen,
			Correct:  st.correct,
			Accuracy: st.accuracySum / float64(st.seen),
		})
	}
	return out
}

// recordItem folds one exercise outcome into an item's session stats.
// Caller holds mu.
func (s *LessonSession) recordItem(itemID string, itemType review.ItemType, difficulty review.Difficulty, correct bool, accuracy float64, timeMs int64, hints int) {
	st := s.itemStats[itemID]
	if st == nil {
		st = &itemStat{itemType: itemType, difficulty: difficulty}
		s.itemStats[itemID] = st
	}
	st.seen++
	if correct {
		st.correct++
	}
	st.accuracySum += accuracy
	st.timeMsSum += timeMs
	st.hintsUsed += hints
}
