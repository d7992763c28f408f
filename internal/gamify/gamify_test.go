package gamify

import (
	"context"
	"testing"

	"github.com/lexivo/lexivo/internal/store"
)

// mockHistory implements store.HistoryRepo for reward tests.
type mockHistory struct {
	records []store.HistoryRecord
}

func (m *mockHistory) Append(_ context.Context, rec store.HistoryRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockHistory) List(_ context.Context, userID string, _ int) ([]store.HistoryRecord, error) {
	var out []store.HistoryRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestRewardBaseXP(t *testing.T) {
	svc := NewService(&mockHistory{})
	r, err := svc.Reward(context.Background(), RewardRequest{
		UserID: "u1", LessonID: "l1", Accuracy: 60, TimeSpentMs: 300000, ExerciseCount: 5,
	})
	if err != nil {
		t.Fatalf("Reward: %v", err)
	}
	if r.XPEarned != 50 {
		t.Errorf("XPEarned = %d, want 50", r.XPEarned)
	}
	if r.GemsEarned != 0 {
		t.Errorf("GemsEarned = %d, want 0", r.GemsEarned)
	}
}

func TestRewardAchievements(t *testing.T) {
	svc := NewService(&mockHistory{})
	r, err := svc.Reward(context.Background(), RewardRequest{
		UserID: "u1", LessonID: "l1", Accuracy: 100, TimeSpentMs: 20000, ExerciseCount: 4,
	})
	if err != nil {
		t.Fatalf("Reward: %v", err)
	}

	want := map[string]bool{
		AchievementPerfectLesson: true,
		AchievementFirstLesson:   true,
		AchievementQuickStudy:    true,
	}
	if len(r.AchievementsUnlocked) != len(want) {
		t.Fatalf("achievements = %v, want %d entries", r.AchievementsUnlocked, len(want))
	}
	for _, a := range r.AchievementsUnlocked {
		if !want[a] {
			t.Errorf("unexpected achievement %q", a)
		}
	}
	if r.GemsEarned != 1 {
		t.Errorf("GemsEarned = %d, want 1 for perfect lesson", r.GemsEarned)
	}
}

func TestRewardLevelUp(t *testing.T) {
	hist := &mockHistory{records: []store.HistoryRecord{
		{UserID: "u1", XPEarned: 80},
	}}
	svc := NewService(hist)

	// 80 + 30 = 110 crosses the 100 XP boundary.
	r, err := svc.Reward(context.Background(), RewardRequest{
		UserID: "u1", LessonID: "l2", Accuracy: 70, TimeSpentMs: 300000, ExerciseCount: 3,
	})
	if err != nil {
		t.Fatalf("Reward: %v", err)
	}
	if !r.LevelUp {
		t.Error("expected level up")
	}
	if r.NewLevel != 1 {
		t.Errorf("NewLevel = %d, want 1", r.NewLevel)
	}
}
