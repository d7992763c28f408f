package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// File is the on-disk catalog layout: one JSON document holding the full
// level / theme / lesson structure.
type File struct {
	Levels  []Level  `json:"levels"`
	Themes  []Theme  `json:"themes"`
	Lessons []Lesson `json:"lessons"`
}

// LoadFile reads and validates a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	c, err := New(f.Levels, f.Themes, f.Lessons)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}
