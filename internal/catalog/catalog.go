package catalog

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/lexivo/lexivo/internal/review"
)

// Provider is the read-only content interface the session engine consumes.
type Provider interface {
	// Lesson returns the lesson with the given id.
	Lesson(id string) (*Lesson, error)

	// Unlocked reports whether a lesson is reachable given the set of
	// completed lesson ids.
	Unlocked(lessonID string, completed map[string]bool) (bool, error)

	// NextLessonID returns the lesson that follows the given one in the
	// theme/level ordering, or "" if it is the last.
	NextLessonID(lessonID string) string
}

// Catalog holds the full lesson structure with precomputed indices.
// It is immutable after construction and safe for concurrent reads.
type Catalog struct {
	levels  []Level
	themes  map[string]*Theme
	lessons map[string]*Lesson

	// flat is every lesson id in level -> theme -> lesson order.
	flat      []string
	flatIndex map[string]int

	// levelFirst marks the first lesson of each level; those are always
	// unlocked (levels are independently enterable tracks).
	levelFirst map[string]bool
}

// New constructs a catalog and validates every cross-reference: each theme
// must belong to a known level, each lesson to a known theme, and the
// ordered id lists must cover exactly the entities provided. Exercise
// types and difficulties are closed enums and are checked here too — an
// unknown value rejects the catalog at load time instead of silently
// degrading scheduling later.
func New(levels []Level, themes []Theme, lessons []Lesson) (*Catalog, error) {
	c := &Catalog{
		levels:     levels,
		themes:     make(map[string]*Theme, len(themes)),
		lessons:    make(map[string]*Lesson, len(lessons)),
		flatIndex:  make(map[string]int),
		levelFirst: make(map[string]bool),
	}

	for i := range themes {
		th := &themes[i]
		if _, dup := c.themes[th.ID]; dup {
			return nil, fmt.Errorf("duplicate theme id %q", th.ID)
		}
		c.themes[th.ID] = th
	}
	for i := range lessons {
		l := &lessons[i]
		if _, dup := c.lessons[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		if _, ok := c.themes[l.ThemeID]; !ok {
			return nil, fmt.Errorf("lesson %q references unknown theme %q", l.ID, l.ThemeID)
		}
		for j := range l.Exercises {
			ex := &l.Exercises[j]
			if _, err := ParseExerciseType(string(ex.Type)); err != nil {
				return nil, fmt.Errorf("lesson %q exercise %q: %w", l.ID, ex.ID, err)
			}
			switch ex.Difficulty {
			case review.DifficultyEasy, review.DifficultyMedium, review.DifficultyHard, review.DifficultyVeryHard:
			default:
				return nil, fmt.Errorf("lesson %q exercise %q: unknown difficulty %q", l.ID, ex.ID, ex.Difficulty)
			}
		}
		c.lessons[l.ID] = l
	}

	for _, lvl := range levels {
		levelStart := len(c.flat)
		for _, themeID := range lvl.ThemeIDs {
			th, ok := c.themes[themeID]
			if !ok {
				return nil, fmt.Errorf("level %q references unknown theme %q", lvl.ID, themeID)
			}
			if th.LevelID != lvl.ID {
				return nil, fmt.Errorf("theme %q listed under level %q but belongs to %q", themeID, lvl.ID, th.LevelID)
			}
			for _, lessonID := range th.LessonIDs {
				l, ok := c.lessons[lessonID]
				if !ok {
					return nil, fmt.Errorf("theme %q references unknown lesson %q", themeID, lessonID)
				}
				if l.ThemeID != themeID {
					return nil, fmt.Errorf("lesson %q listed under theme %q but belongs to %q", lessonID, themeID, l.ThemeID)
				}
				c.flatIndex[lessonID] = len(c.flat)
				c.flat = append(c.flat, lessonID)
			}
		}
		if levelStart < len(c.flat) {
			c.levelFirst[c.flat[levelStart]] = true
		}
	}

	// Every lesson must be reachable through the ordering.
	unreferenced := lo.Filter(lo.Keys(c.lessons), func(id string, _ int) bool {
		_, ok := c.flatIndex[id]
		return !ok
	})
	if len(unreferenced) > 0 {
		return nil, fmt.Errorf("%d lesson(s) not referenced by any theme ordering", len(unreferenced))
	}

	return c, nil
}

// Lesson returns the lesson with the given id.
func (c *Catalog) Lesson(id string) (*Lesson, error) {
	l, ok := c.lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson %q not found", id)
	}
	return l, nil
}

// Unlocked implements the prerequisite rule: a lesson is unlocked if it is
// the first lesson of its level, if the preceding lesson in its theme is
// completed, or, for the first lesson of a later theme, if the last lesson
// of the previous theme is completed. The flat ordering concatenates themes
// in level order, so the latter two cases collapse to "the immediately
// preceding lesson in the flat order is completed".
func (c *Catalog) Unlocked(lessonID string, completed map[string]bool) (bool, error) {
	idx, ok := c.flatIndex[lessonID]
	if !ok {
		return false, fmt.Errorf("lesson %q not found", lessonID)
	}
	if c.levelFirst[lessonID] {
		return true, nil
	}
	return completed[c.flat[idx-1]], nil
}

// NextLessonID returns the lesson following the given one, or "" at the end
// of the catalog or for an unknown id.
func (c *Catalog) NextLessonID(lessonID string) string {
	idx, ok := c.flatIndex[lessonID]
	if !ok || idx+1 >= len(c.flat) {
		return ""
	}
	return c.flat[idx+1]
}

// Lessons returns every lesson id in unlock order.
func (c *Catalog) Lessons() []string {
	out := make([]string, len(c.flat))
	copy(out, c.flat)
	return out
}
