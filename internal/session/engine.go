package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/gamify"
	"github.com/lexivo/lexivo/internal/review"
	"github.com/lexivo/lexivo/internal/store"
)

// Config collects the Engine's dependencies. Everything is injected;
// there are no package-level singletons, so one engine per test (or per
// backend process) is cheap and isolated.
type Config struct {
	Content   catalog.Provider
	Profiles  store.ProfileRepo
	Progress  store.ProgressRepo
	History   store.HistoryRepo
	Items     store.ReviewItemRepo
	Scheduler *review.Engine
	Rewards   gamify.Collaborator
	Logger    *logrus.Logger

	// MinLives is the balance required to start a lesson (default 1).
	MinLives int

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine drives lesson sessions: gate checks, exercise-by-exercise
// progress, lives accounting, and the end-of-session aggregation that
// feeds the review scheduler.
type Engine struct {
	content  catalog.Provider
	profiles store.ProfileRepo
	progress store.ProgressRepo
	history  store.HistoryRepo
	items    store.ReviewItemRepo
	sched    *review.Engine
	rewards  gamify.Collaborator
	gate     *Gate
	log      *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*LessonSession
}

// NewEngine validates the configuration and builds an engine.
func NewEngine(cfg Config) (*Engine, error) {
	switch {
	case cfg.Content == nil:
		return nil, fmt.Errorf("session engine: content provider required")
	case cfg.Profiles == nil:
		return nil, fmt.Errorf("session engine: profile repo required")
	case cfg.Progress == nil:
		return nil, fmt.Errorf("session engine: progress repo required")
	case cfg.History == nil:
		return nil, fmt.Errorf("session engine: history repo required")
	case cfg.Items == nil:
		return nil, fmt.Errorf("session engine: review item repo required")
	case cfg.Scheduler == nil:
		return nil, fmt.Errorf("session engine: scheduler required")
	case cfg.Rewards == nil:
		return nil, fmt.Errorf("session engine: rewards collaborator required")
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		content:  cfg.Content,
		profiles: cfg.Profiles,
		progress: cfg.Progress,
		history:  cfg.History,
		items:    cfg.Items,
		sched:    cfg.Scheduler,
		rewards:  cfg.Rewards,
		gate:     NewGate(cfg.Content, cfg.Profiles, cfg.Progress, cfg.MinLives),
		log:      log,
		now:      now,
		sessions: make(map[string]*LessonSession),
	}, nil
}

// Gate exposes the access gate for callers that want to pre-check a
// lesson without starting it.
func (e *Engine) Gate() *Gate {
	return e.gate
}

// Start runs the access gate and, if it allows, creates a new InProgress
// session and seeds the lesson's progress record. A gate rejection comes
// back as a Decision, not an error. A lesson with no exercises completes
// immediately.
func (e *Engine) Start(ctx context.Context, userID, lessonID string) (*LessonSession, Decision, error) {
	dec, err := e.gate.CanStart(ctx, userID, lessonID)
	if err != nil {
		return nil, Decision{}, err
	}
	if !dec.Allowed {
		return nil, dec, nil
	}

	lesson, err := e.content.Lesson(lessonID)
	if err != nil {
		return nil, Decision{}, fmt.Errorf("load lesson %s: %w", lessonID, err)
	}

	s := newLessonSession(uuid.NewString(), userID, lesson, e.now())

	e.seedProgress(ctx, s)

	e.mu.Lock()
	e.sessions[s.SessionID] = s
	e.mu.Unlock()

	if len(lesson.Exercises) == 0 {
		s.mu.Lock()
		e.finalize(ctx, s)
		s.mu.Unlock()
		e.drop(s.SessionID)
	}

	return s, dec, nil
}

// seedProgress creates the in-progress record on first access. Best
// effort: a store hiccup here must not block the session from starting.
func (e *Engine) seedProgress(ctx context.Context, s *LessonSession) {
	_, err := e.progress.Get(ctx, s.UserID, s.LessonID)
	if err == nil {
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		e.log.WithError(err).WithField("lesson", s.LessonID).Warn("read lesson progress")
		return
	}
	seed := store.LessonProgress{
		UserID:         s.UserID,
		LessonID:       s.LessonID,
		TotalExercises: len(s.lesson.Exercises),
		LastAccessed:   s.StartTime,
	}
	if err := e.progress.Upsert(ctx, seed); err != nil {
		e.log.WithError(err).WithField("lesson", s.LessonID).Warn("seed lesson progress")
	}
}

// ExerciseResult is returned from CompleteExercise. LessonCompleted is
// reported in the same call that records the final exercise; there is no
// separate completion check to race against.
type ExerciseResult struct {
	IsCorrect     bool
	Accuracy      float64
	CorrectAnswer string

	// OutOfLives means the answer was wrong and the lives pool was empty:
	// the exercise was NOT recorded and the session was left untouched.
	// The caller decides whether to end the session via Exhaust.
	OutOfLives bool

	// LivesRemaining is the balance after this exercise, or -1 when the
	// balance could not be read.
	LivesRemaining int

	LessonCompleted bool
	// Result is the session aggregate, set only when LessonCompleted.
	Result *Result
}

// CompleteExercise evaluates one answer and folds it into the session.
// Calls for the same session are serialized; each call observes the
// previous one's state. Wrong answers consume one life; if none is left
// the call returns OutOfLives without mutating the session.
func (e *Engine) CompleteExercise(ctx context.Context, sessionID, exerciseID, userAnswer string, timeSpentMs int64, hintsUsed int) (*ExerciseResult, error) {
	s, err := e.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		e.log.WithFields(logrus.Fields{
			"session": sessionID,
			"status":  s.status.String(),
		}).Error("exercise completion on terminal session")
		return nil, fmt.Errorf("%w: session %s is %s", ErrInvalidSessionState, sessionID, s.status)
	}

	ex := findExercise(s.lesson, exerciseID)
	if ex == nil {
		e.log.WithFields(logrus.Fields{
			"session":  sessionID,
			"exercise": exerciseID,
			"lesson":   s.LessonID,
		}).Error("exercise does not belong to session lesson")
		return nil, fmt.Errorf("%w: exercise %s not in lesson %s", ErrInvalidSessionState, exerciseID, s.LessonID)
	}
	if s.answered[exerciseID] {
		return nil, fmt.Errorf("%w: exercise %s already completed", ErrInvalidSessionState, exerciseID)
	}
	if hintsUsed < 0 || timeSpentMs < 0 {
		return nil, fmt.Errorf("%w: negative time or hints", ErrInvalidSessionState)
	}

	correct, accuracy := EvaluateAnswer(ex, userAnswer)

	res := &ExerciseResult{
		IsCorrect:      correct,
		Accuracy:       accuracy,
		CorrectAnswer:  ex.Answer,
		LivesRemaining: -1,
	}

	if !correct {
		ok, err := e.profiles.Consume(ctx, s.UserID, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: consume life: %v", ErrStoreUnavailable, err)
		}
		if !ok {
			// The refused deduction is itself a balance read: the pool is empty.
			res.OutOfLives = true
			res.LivesRemaining = 0
			return res, nil
		}
		s.LivesUsed++
	}

	s.Outcomes = append(s.Outcomes, ExerciseOutcome{
		ExerciseID:    ex.ID,
		Type:          ex.Type,
		IsCorrect:     correct,
		UserAnswer:    userAnswer,
		CorrectAnswer: ex.Answer,
		TimeSpentMs:   timeSpentMs,
		HintsUsed:     hintsUsed,
		Accuracy:      accuracy,
	})
	s.answered[ex.ID] = true
	s.TotalTimeSpentMs += timeSpentMs

	// Lightweight mastery preview for every item this exercise touches.
	// The catalog guarantees the difficulty enum at load time.
	for _, id := range ex.VocabularyIDs {
		s.recordItem(id, review.TypeVocabulary, ex.Difficulty, correct, accuracy, timeSpentMs, hintsUsed)
	}
	for _, id := range ex.GrammarIDs {
		s.recordItem(id, review.TypeGrammar, ex.Difficulty, correct, accuracy, timeSpentMs, hintsUsed)
	}

	e.saveProgress(ctx, s)

	if balance, err := e.profiles.Balance(ctx, s.UserID); err == nil {
		res.LivesRemaining = balance
	}

	if len(s.Outcomes) == len(s.lesson.Exercises) {
		res.LessonCompleted = true
		res.Result = e.finalize(ctx, s)
		e.drop(sessionID)
	}

	return res, nil
}

// AccrueTime adds background-ticked elapsed time to the session total.
// It shares the session lock with CompleteExercise, so the two never race
// on the counter.
func (e *Engine) AccrueTime(sessionID string, deltaMs int64) error {
	s, err := e.lookup(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return fmt.Errorf("%w: session %s is %s", ErrInvalidSessionState, sessionID, s.status)
	}
	if deltaMs > 0 {
		s.TotalTimeSpentMs += deltaMs
	}
	return nil
}

// Abandon ends an InProgress session without producing an aggregate or a
// history record. Partial progress survives in the progress store. Safe
// to call at any point; it serializes behind any in-flight exercise
// evaluation, so no partially-applied outcome can be observed.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	return e.terminate(ctx, sessionID, StatusAbandoned)
}

// Exhaust ends an InProgress session after the caller has decided to stop
// on an OutOfLives result.
func (e *Engine) Exhaust(ctx context.Context, sessionID string) error {
	return e.terminate(ctx, sessionID, StatusResourceExhausted)
}

func (e *Engine) terminate(ctx context.Context, sessionID string, status Status) error {
	s, err := e.lookup(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		e.log.WithFields(logrus.Fields{
			"session": sessionID,
			"status":  s.status.String(),
		}).Error("terminate on non-running session")
		return fmt.Errorf("%w: session %s is %s", ErrInvalidSessionState, sessionID, s.status)
	}

	now := e.now()
	s.status = status
	s.EndTime = &now
	e.saveProgress(ctx, s)
	e.drop(sessionID)
	return nil
}

// saveProgress writes the running progress record. Fire and forget: a
// failed write is logged, never allowed to corrupt the in-memory session.
// Caller holds the session lock.
func (e *Engine) saveProgress(ctx context.Context, s *LessonSession) {
	p := store.LessonProgress{
		UserID:             s.UserID,
		LessonID:           s.LessonID,
		ExercisesCompleted: len(s.Outcomes),
		TotalExercises:     len(s.lesson.Exercises),
		ProgressPercent:    store.Percent(len(s.Outcomes), len(s.lesson.Exercises)),
		LastAccessed:       e.now(),
	}
	if err := e.progress.Upsert(ctx, p); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"session": s.SessionID,
			"lesson":  s.LessonID,
		}).Warn("save lesson progress")
	}
}

func (e *Engine) lookup(sessionID string) (*LessonSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %s", ErrInvalidSessionState, sessionID)
	}
	return s, nil
}

func (e *Engine) drop(sessionID string) {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
}

func findExercise(lesson *catalog.Lesson, exerciseID string) *catalog.Exercise {
	for i := range lesson.Exercises {
		if lesson.Exercises[i].ID == exerciseID {
			return &lesson.Exercises[i]
		}
	}
	return nil
}
