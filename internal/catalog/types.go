package catalog

import (
	"fmt"

	"github.com/lexivo/lexivo/internal/review"
)

// ExerciseType is the closed set of exercise kinds the session engine can
// evaluate. Unknown types are a construction-time error, not a fallback.
type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTranslation    ExerciseType = "translation"
	ExerciseFillBlank      ExerciseType = "fill_blank"
	ExerciseListening      ExerciseType = "listening"
	ExerciseMatching       ExerciseType = "matching"
)

// ParseExerciseType validates an exercise type string.
func ParseExerciseType(s string) (ExerciseType, error) {
	switch t := ExerciseType(s); t {
	case ExerciseMultipleChoice, ExerciseTranslation, ExerciseFillBlank,
		ExerciseListening, ExerciseMatching:
		return t, nil
	}
	return "", fmt.Errorf("unknown exercise type %q", s)
}

// Exercise is one prompt within a lesson.
type Exercise struct {
	ID     string       `json:"id"`
	Type   ExerciseType `json:"type"`
	Prompt string       `json:"prompt"`
	// Answer is the primary correct answer; AcceptedAnswers lists further
	// answers that also count as correct.
	Answer          string   `json:"answer"`
	AcceptedAnswers []string `json:"accepted_answers,omitempty"`
	Hint            string   `json:"hint,omitempty"`
	// VocabularyIDs and GrammarIDs are the learnable items this exercise
	// gives scheduling evidence for.
	VocabularyIDs []string          `json:"vocabulary_ids,omitempty"`
	GrammarIDs    []string          `json:"grammar_ids,omitempty"`
	Difficulty    review.Difficulty `json:"difficulty"`
}

// Lesson is an ordered set of exercises within a theme.
type Lesson struct {
	ID            string     `json:"id"`
	ThemeID       string     `json:"theme_id"`
	Title         string     `json:"title"`
	LanguageCode  string     `json:"language_code"`
	Exercises     []Exercise `json:"exercises"`
	VocabularyIDs []string   `json:"vocabulary_ids,omitempty"`
	GrammarIDs    []string   `json:"grammar_ids,omitempty"`
}

// Theme groups lessons; LessonIDs is the unlock order.
type Theme struct {
	ID        string   `json:"id"`
	LevelID   string   `json:"level_id"`
	Title     string   `json:"title"`
	LessonIDs []string `json:"lesson_ids"`
}

// Level groups themes; ThemeIDs is the unlock order.
type Level struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	ThemeIDs []string `json:"theme_ids"`
}
