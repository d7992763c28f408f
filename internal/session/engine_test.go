package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/review"
)

func startSession(t *testing.T, env *testEnv, lessonID string) *LessonSession {
	t.Helper()
	s, dec, err := env.engine.Start(context.Background(), "user-1", lessonID)
	if err != nil {
		t.Fatalf("Start(%s): %v", lessonID, err)
	}
	if !dec.Allowed {
		t.Fatalf("Start(%s) rejected: %s", lessonID, dec.Reason)
	}
	return s
}

func TestStartCreatesInProgressSession(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	if s.Status() != StatusInProgress {
		t.Errorf("status = %s, want in_progress", s.Status())
	}
	if s.SessionID == "" {
		t.Error("session id not assigned")
	}
	if !s.StartTime.Equal(testNow) {
		t.Errorf("start time = %v, want %v", s.StartTime, testNow)
	}

	p, err := env.progress.Get(context.Background(), "user-1", "greet-1")
	if err != nil {
		t.Fatalf("progress not seeded: %v", err)
	}
	if p.TotalExercises != 2 {
		t.Errorf("seeded TotalExercises = %d, want 2", p.TotalExercises)
	}
}

func TestStartRejectedByGate(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	env.profiles.lives = 0

	s, dec, err := env.engine.Start(context.Background(), "user-1", "greet-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s != nil {
		t.Error("rejected start returned a session")
	}
	if dec.Reason != ReasonInsufficientResource {
		t.Errorf("reason = %q, want %q", dec.Reason, ReasonInsufficientResource)
	}
}

func TestCompleteLessonEndToEnd(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	res, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 2500, 0)
	if err != nil {
		t.Fatalf("CompleteExercise ex-1: %v", err)
	}
	if !res.IsCorrect || res.Accuracy != 100 {
		t.Errorf("ex-1 = (%v, %v), want correct with accuracy 100", res.IsCorrect, res.Accuracy)
	}
	if res.LessonCompleted {
		t.Fatal("lesson reported complete after one of two exercises")
	}

	res, err = env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "Adios", 3000, 0)
	if err != nil {
		t.Fatalf("CompleteExercise ex-2: %v", err)
	}
	if !res.LessonCompleted {
		t.Fatal("lesson not reported complete after final exercise")
	}
	if res.Result == nil {
		t.Fatal("completed lesson missing aggregate result")
	}

	agg := res.Result
	if agg.TotalAccuracy != 100 {
		t.Errorf("TotalAccuracy = %v, want 100", agg.TotalAccuracy)
	}
	if agg.ExerciseCount != 2 {
		t.Errorf("ExerciseCount = %d, want 2", agg.ExerciseCount)
	}
	if agg.TotalTimeSpentMs != 5500 {
		t.Errorf("TotalTimeSpentMs = %d, want 5500", agg.TotalTimeSpentMs)
	}
	if agg.NextLessonID != "greet-2" {
		t.Errorf("NextLessonID = %q, want greet-2", agg.NextLessonID)
	}
	if agg.XPEarned <= 0 {
		t.Error("no XP awarded for a completed lesson")
	}

	if !env.progress.completed["greet-1"] {
		t.Error("lesson not marked completed")
	}
	if len(env.history.recs) != 1 {
		t.Fatalf("history records = %d, want 1", len(env.history.recs))
	}
	rec := env.history.recs[0]
	if rec.SessionID != s.SessionID || rec.XPEarned != agg.XPEarned {
		t.Errorf("history record %+v does not match result", rec)
	}

	// All three touched items got scheduled.
	if agg.ItemsScheduled != 3 {
		t.Errorf("ItemsScheduled = %d, want 3", agg.ItemsScheduled)
	}
	for _, id := range []string{"v-hola", "v-adios", "g-interjection"} {
		it, ok := env.items.items[id]
		if !ok {
			t.Errorf("item %s not persisted", id)
			continue
		}
		if it.Repetitions != 1 || it.Interval < 1 {
			t.Errorf("item %s = reps %d interval %d, want first-pass state", id, it.Repetitions, it.Interval)
		}
	}

	if s.Status() != StatusCompleted {
		t.Errorf("status = %s, want completed", s.Status())
	}
}

func TestWrongAnswerConsumesLife(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	res, err := env.engine.CompleteExercise(context.Background(), s.SessionID, "ex-1", "holo", 2000, 0)
	if err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if res.IsCorrect {
		t.Fatal("wrong answer marked correct")
	}
	if res.Accuracy != 75 {
		t.Errorf("partial accuracy = %v, want 75", res.Accuracy)
	}
	if env.profiles.lives != 4 {
		t.Errorf("lives = %d, want 4", env.profiles.lives)
	}
	if res.LivesRemaining != 4 {
		t.Errorf("LivesRemaining = %d, want 4", res.LivesRemaining)
	}
	if s.LivesUsed != 1 {
		t.Errorf("LivesUsed = %d, want 1", s.LivesUsed)
	}
	if len(s.Outcomes) != 1 {
		t.Errorf("outcome not recorded for wrong answer")
	}
}

func TestOutOfLivesLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	env.profiles.lives = 1
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "wrong", 1000, 0); err != nil {
		t.Fatalf("first wrong answer: %v", err)
	}

	// Pool is now empty: the next miss is rejected without being recorded.
	res, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "wrong", 1000, 0)
	if err != nil {
		t.Fatalf("second wrong answer: %v", err)
	}
	if !res.OutOfLives {
		t.Fatal("expected OutOfLives")
	}
	if res.LivesRemaining != 0 {
		t.Errorf("LivesRemaining = %d, want 0 on an out-of-lives rejection", res.LivesRemaining)
	}
	if len(s.Outcomes) != 1 {
		t.Errorf("rejected exercise was recorded, outcomes = %d", len(s.Outcomes))
	}
	if s.Status() != StatusInProgress {
		t.Errorf("status = %s, caller decides whether to exhaust", s.Status())
	}

	// Caller opts to end the session.
	if err := env.engine.Exhaust(ctx, s.SessionID); err != nil {
		t.Fatalf("Exhaust: %v", err)
	}
	if s.Status() != StatusResourceExhausted {
		t.Errorf("status = %s, want resource_exhausted", s.Status())
	}
	if len(env.history.recs) != 0 {
		t.Error("exhausted session produced a history record")
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	if err := env.engine.Abandon(ctx, s.SessionID); err != nil {
		t.Fatalf("Abandon: %v", err)
	}

	_, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0)
	if !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("completion after abandon: err = %v, want ErrInvalidSessionState", err)
	}
	if err := env.engine.Abandon(ctx, s.SessionID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("double abandon: err = %v, want ErrInvalidSessionState", err)
	}
}

func TestRejectsForeignAndDuplicateExercises(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-3", "buenos dias", 1000, 0); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("foreign exercise: err = %v, want ErrInvalidSessionState", err)
	}

	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("duplicate exercise: err = %v, want ErrInvalidSessionState", err)
	}
}

func TestAbandonPreservesProgressWithoutHistory(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if err := env.engine.Abandon(ctx, s.SessionID); err != nil {
		t.Fatalf("Abandon: %v", err)
	}

	p, err := env.progress.Get(ctx, "user-1", "greet-1")
	if err != nil {
		t.Fatalf("progress lost on abandon: %v", err)
	}
	if p.ExercisesCompleted != 1 || p.ProgressPercent != 50 {
		t.Errorf("progress = %d done / %d%%, want 1 / 50%%", p.ExercisesCompleted, p.ProgressPercent)
	}
	if env.progress.completed["greet-1"] {
		t.Error("abandoned lesson marked completed")
	}
	if len(env.history.recs) != 0 {
		t.Error("abandoned session produced a history record")
	}
	if len(env.items.items) != 0 {
		t.Error("abandoned session pushed scheduling updates")
	}
}

func TestEmptyLessonCompletesImmediately(t *testing.T) {
	lessons := []catalog.Lesson{
		{ID: "intro", ThemeID: "onboarding", Title: "Welcome", LanguageCode: "es"},
	}
	themes := []catalog.Theme{
		{ID: "onboarding", LevelID: "a1", Title: "Onboarding", LessonIDs: []string{"intro"}},
	}
	levels := []catalog.Level{
		{ID: "a1", Title: "Beginner", ThemeIDs: []string{"onboarding"}},
	}
	c, err := catalog.New(levels, themes, lessons)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	env := newTestEnv(t, c)
	s := startSession(t, env, "intro")

	if s.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", s.Status())
	}
	res := s.Result()
	if res == nil {
		t.Fatal("empty lesson has no result")
	}
	if res.TotalAccuracy != 0 || res.ExerciseCount != 0 {
		t.Errorf("result = accuracy %v count %d, want zeroes", res.TotalAccuracy, res.ExerciseCount)
	}
	if !env.progress.completed["intro"] {
		t.Error("empty lesson not marked completed")
	}
	if len(env.history.recs) != 1 {
		t.Errorf("history records = %d, want 1", len(env.history.recs))
	}
}

func TestRecompletionAppendsHistoryOnce(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	ctx := context.Background()

	complete := func() {
		s := startSession(t, env, "greet-1")
		if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
			t.Fatalf("CompleteExercise: %v", err)
		}
		res, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "adios", 1000, 0)
		if err != nil {
			t.Fatalf("CompleteExercise: %v", err)
		}
		if !res.LessonCompleted {
			t.Fatal("lesson not completed")
		}
	}

	complete()
	complete()

	if len(env.history.recs) != 2 {
		t.Errorf("history records = %d, want one per attempt", len(env.history.recs))
	}
	if env.progress.marks != 2 || len(env.progress.completed) != 1 {
		t.Errorf("completed set changed size on re-completion: %v", env.progress.completed)
	}
}

func TestAccrueTimeCountsTowardTotal(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	if err := env.engine.AccrueTime(s.SessionID, 4000); err != nil {
		t.Fatalf("AccrueTime: %v", err)
	}
	if err := env.engine.AccrueTime(s.SessionID, -100); err != nil {
		t.Fatalf("AccrueTime negative delta: %v", err)
	}

	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	res, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "adios", 1000, 0)
	if err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if res.Result.TotalTimeSpentMs != 6000 {
		t.Errorf("TotalTimeSpentMs = %d, want 6000", res.Result.TotalTimeSpentMs)
	}
}

func TestIntraSessionMasteryPreview(t *testing.T) {
	env := newTestEnv(t, testLessons(t))
	s := startSession(t, env, "greet-1")

	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}

	// v-hola appears in both exercises; the preview reflects the second
	// sighting immediately.
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "adios", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}

	var hola *MasteryPreview
	for _, p := range s.Previews() {
		if p.ItemID == "v-hola" {
			hola = &p
			break
		}
	}
	if hola == nil {
		t.Fatal("no preview for v-hola")
	}
	if hola.Seen != 2 || hola.Correct != 2 || hola.Accuracy != 100 {
		t.Errorf("preview = %+v, want seen 2, correct 2, accuracy 100", *hola)
	}
}

func TestFinalizeSkipsStaleItems(t *testing.T) {
	env := newTestEnv(t, testLessons(t))

	// v-hola was already reviewed after this session's clock; the session's
	// consolidated update must not clobber the newer state.
	newer := review.NewItem("user-1", "v-hola", review.TypeVocabulary, "es", review.DefaultParams(), testNow.Add(1*time.Hour))
	newer.Repetitions = 7
	env.items.items["v-hola"] = newer

	s := startSession(t, env, "greet-1")
	ctx := context.Background()
	if _, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-1", "hola", 1000, 0); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	res, err := env.engine.CompleteExercise(ctx, s.SessionID, "ex-2", "adios", 1000, 0)
	if err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}

	if got := env.items.items["v-hola"].Repetitions; got != 7 {
		t.Errorf("stale update applied: repetitions = %d, want 7", got)
	}
	if res.Result.ItemsScheduled != 2 {
		t.Errorf("ItemsScheduled = %d, want 2 (v-hola skipped)", res.Result.ItemsScheduled)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	env := newTestEnv(t, testLessons(t))

	_, err := env.engine.CompleteExercise(context.Background(), "nope", "ex-1", "hola", 1000, 0)
	if !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("err = %v, want ErrInvalidSessionState", err)
	}
	if err := env.engine.AccrueTime("nope", 100); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("AccrueTime err = %v, want ErrInvalidSessionState", err)
	}
}
