package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/gamify"
	"github.com/lexivo/lexivo/internal/review"
	"github.com/lexivo/lexivo/internal/store"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	lives      int
	maxLives   int
	consumed   int
	balanceErr error
	consumeErr error
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*store.Profile, error) {
	return &store.Profile{UserID: userID, Lives: f.lives, MaxLives: f.maxLives}, nil
}

func (f *fakeProfiles) Balance(_ context.Context, _ string) (int, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.lives, nil
}

func (f *fakeProfiles) Consume(_ context.Context, _ string, amount int) (bool, error) {
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	if f.lives < amount {
		return false, nil
	}
	f.lives -= amount
	f.consumed += amount
	return true, nil
}

func (f *fakeProfiles) Refill(_ context.Context, _ string) error {
	f.lives = f.maxLives
	return nil
}

type fakeProgress struct {
	records   map[string]store.LessonProgress
	completed map[string]bool
	marks     int
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{
		records:   make(map[string]store.LessonProgress),
		completed: make(map[string]bool),
	}
}

func (f *fakeProgress) Get(_ context.Context, _, lessonID string) (*store.LessonProgress, error) {
	p, ok := f.records[lessonID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProgress) Upsert(_ context.Context, p store.LessonProgress) error {
	f.records[p.LessonID] = p
	return nil
}

func (f *fakeProgress) CompletedLessons(_ context.Context, _ string) (map[string]bool, error) {
	out := make(map[string]bool, len(f.completed))
	for k, v := range f.completed {
		out[k] = v
	}
	return out, nil
}

func (f *fakeProgress) MarkCompleted(_ context.Context, _, lessonID string) error {
	f.completed[lessonID] = true
	delete(f.records, lessonID)
	f.marks++
	return nil
}

type fakeHistory struct {
	recs      []store.HistoryRecord
	appendErr error
}

func (f *fakeHistory) Append(_ context.Context, rec store.HistoryRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeHistory) List(_ context.Context, _ string, limit int) ([]store.HistoryRecord, error) {
	out := make([]store.HistoryRecord, 0, len(f.recs))
	for i := len(f.recs) - 1; i >= 0; i-- {
		out = append(out, f.recs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeItems struct {
	items     map[string]review.Item
	upsertErr error
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: make(map[string]review.Item)}
}

func (f *fakeItems) Get(_ context.Context, _, itemID string) (*review.Item, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &it, nil
}

func (f *fakeItems) Upsert(_ context.Context, item review.Item) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.items[item.ItemID] = item
	return nil
}

func (f *fakeItems) Due(_ context.Context, _ string, now time.Time, _ int) ([]review.Item, error) {
	var out []review.Item
	for _, it := range f.items {
		if it.IsDue(now) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Stats(_ context.Context, _ string, _ time.Time) (*store.ReviewStats, error) {
	return &store.ReviewStats{TotalItems: len(f.items)}, nil
}

// testLessons builds a one-level catalog: greet-1 (two exercises, with
// v-hola appearing in both) followed by greet-2 (one exercise).
func testLessons(t *testing.T) *catalog.Catalog {
	t.Helper()

	lessons := []catalog.Lesson{
		{
			ID:           "greet-1",
			ThemeID:      "greetings",
			Title:        "First Greetings",
			LanguageCode: "es",
			Exercises: []catalog.Exercise{
				{
					ID:            "ex-1",
					Type:          catalog.ExerciseTranslation,
					Prompt:        "Translate: hello",
					Answer:        "hola",
					VocabularyIDs: []string{"v-hola"},
					Difficulty:    review.DifficultyMedium,
				},
				{
					ID:            "ex-2",
					Type:          catalog.ExerciseFillBlank,
					Prompt:        "___, amigo. Adios!",
					Answer:        "adios",
					VocabularyIDs: []string{"v-adios", "v-hola"},
					GrammarIDs:    []string{"g-interjection"},
					Difficulty:    review.DifficultyMedium,
				},
			},
		},
		{
			ID:           "greet-2",
			ThemeID:      "greetings",
			Title:        "More Greetings",
			LanguageCode: "es",
			Exercises: []catalog.Exercise{
				{
					ID:            "ex-3",
					Type:          catalog.ExerciseTranslation,
					Prompt:        "Translate: good morning",
					Answer:        "buenos dias",
					VocabularyIDs: []string{"v-buenos-dias"},
					Difficulty:    review.DifficultyMedium,
				},
			},
		},
	}
	themes := []catalog.Theme{
		{ID: "greetings", LevelID: "a1", Title: "Greetings", LessonIDs: []string{"greet-1", "greet-2"}},
	}
	levels := []catalog.Level{
		{ID: "a1", Title: "Beginner", ThemeIDs: []string{"greetings"}},
	}

	c, err := catalog.New(levels, themes, lessons)
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return c
}

type testEnv struct {
	engine   *Engine
	profiles *fakeProfiles
	progress *fakeProgress
	history  *fakeHistory
	items    *fakeItems
}

func newTestEnv(t *testing.T, content catalog.Provider) *testEnv {
	t.Helper()

	profiles := &fakeProfiles{lives: 5, maxLives: 5}
	progress := newFakeProgress()
	history := &fakeHistory{}
	items := newFakeItems()

	sched, err := review.NewEngine(review.DefaultParams())
	if err != nil {
		t.Fatalf("new review engine: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	eng, err := NewEngine(Config{
		Content:   content,
		Profiles:  profiles,
		Progress:  progress,
		History:   history,
		Items:     items,
		Scheduler: sched,
		Rewards:   gamify.NewService(history),
		Logger:    log,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new session engine: %v", err)
	}

	return &testEnv{
		engine:   eng,
		profiles: profiles,
		progress: progress,
		history:  history,
		items:    items,
	}
}
