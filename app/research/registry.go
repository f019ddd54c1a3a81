package research

import (
	"encoding/json"

	"github.com/yaseen-research/codex/app/pattern"
)

// SavedPattern is a named structural pattern kept in the library for
// reuse across sessions.
type SavedPattern struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Spec        pattern.Spec `json:"spec"`
	CreatedAt   string       `json:"created_at"`
}

// NormalizeSavedPattern fills defaults on a new library pattern.
func NormalizeSavedPattern(p SavedPattern) SavedPattern {
	if p.ID == "" {
		p.ID = newID("pattern")
	}
	if p.CreatedAt == "" {
		p.CreatedAt = timestamp()
	}
	return p
}

// TagRegistry maps hypothesis tag names to their definitions. The
// definition body is researcher-authored and stays free-form.
type TagRegistry map[string]json.RawMessage
