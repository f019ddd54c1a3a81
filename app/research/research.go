// Package research persists the researcher-authored layer over the
// corpus: free-form verse annotations and structure hypotheses (pronoun
// referents included) with their supporting or counter evidence. The
// corpus itself stays read-only; everything mutable lives here.
package research

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Evidence is one piece of support attached to a hypothesis.
type Evidence struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	Verse     string `json:"verse,omitempty"`
	CreatedAt string `json:"created_at"`
}

// TargetMeta locates the structure a hypothesis is about inside a verse.
type TargetMeta struct {
	TokenID   int    `json:"token_id,omitempty"`
	SegmentID int    `json:"segment_id,omitempty"`
	Form      string `json:"form,omitempty"`
}

// Hypothesis is a unified record for any structure target. Pronoun
// referent hypotheses use TargetType "pronoun" and carry the referent in
// the Hypothesis field.
type Hypothesis struct {
	ID         string     `json:"id"`
	TargetType string     `json:"target_type"`
	TargetID   string     `json:"target_id,omitempty"`
	TargetMeta TargetMeta `json:"target_meta"`
	Hypothesis string     `json:"hypothesis,omitempty"`
	Status     string     `json:"status"`
	Note       string     `json:"note,omitempty"`
	Evidence   []Evidence `json:"evidence,omitempty"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
}

// Annotation is a free-form researcher note attached to a verse.
type Annotation struct {
	ID        string   `json:"id"`
	Type      string   `json:"type,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// HypothesisUpdate carries partial updates; nil fields stay unchanged.
// EvidenceEntry, when set, is normalized and appended.
type HypothesisUpdate struct {
	Hypothesis    *string     `json:"hypothesis,omitempty"`
	Status        *string     `json:"status,omitempty"`
	Note          *string     `json:"note,omitempty"`
	TargetMeta    *TargetMeta `json:"target_meta,omitempty"`
	EvidenceEntry *Evidence   `json:"evidence_entry,omitempty"`
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// newID keeps ids sortable by creation time; the uuid suffix makes
// same-instant inserts distinct.
func newID(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}

// NormalizeEvidence fills defaults: generated id, "supporting" type and a
// creation timestamp.
func NormalizeEvidence(ev Evidence) Evidence {
	if ev.ID == "" {
		ev.ID = newID("ev")
	}
	if ev.Type == "" {
		ev.Type = "supporting"
	}
	if ev.CreatedAt == "" {
		ev.CreatedAt = timestamp()
	}
	return ev
}

// NormalizeHypothesis fills defaults on a new hypothesis record.
func NormalizeHypothesis(h Hypothesis) Hypothesis {
	if h.ID == "" {
		h.ID = newID("hyp")
	}
	if h.TargetType == "" {
		h.TargetType = "unknown"
	}
	if h.Status == "" {
		h.Status = "hypothesis"
	}
	now := timestamp()
	if h.CreatedAt == "" {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	for i := range h.Evidence {
		h.Evidence[i] = NormalizeEvidence(h.Evidence[i])
	}
	return h
}

// NormalizeAnnotation fills defaults on a new annotation.
func NormalizeAnnotation(a Annotation) Annotation {
	if a.ID == "" {
		a.ID = newID("a")
	}
	now := timestamp()
	if a.CreatedAt == "" {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return a
}

// Translation is one rendering of a verse in another language.
type Translation struct {
	ID         string `json:"id"`
	Language   string `json:"language,omitempty"`
	Translator string `json:"translator,omitempty"`
	Text       string `json:"text,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// NormalizeTranslation fills defaults on a new translation.
func NormalizeTranslation(tr Translation) Translation {
	if tr.ID == "" {
		tr.ID = newID("tr")
	}
	if tr.CreatedAt == "" {
		tr.CreatedAt = timestamp()
	}
	return tr
}

// Connection links a verse to related material: another verse of the
// corpus (Verse set to its "surah:ayah" reference) or an external
// resource (URL set).
type Connection struct {
	Verse string `json:"verse,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Connections groups a verse's links. Both lists are kept non-nil so an
// unannotated verse serializes as empty lists rather than null.
type Connections struct {
	Internal []Connection `json:"internal"`
	External []Connection `json:"external"`
}

func NormalizeConnections(c Connections) Connections {
	if c.Internal == nil {
		c.Internal = []Connection{}
	}
	if c.External == nil {
		c.External = []Connection{}
	}
	return c
}

// EvidenceSummary tallies the evidence attached to one hypothesis.
type EvidenceSummary struct {
	Supporting int `json:"supporting"`
	Counter    int `json:"counter"`
	Total      int `json:"total"`
}

func SummarizeEvidence(evidence []Evidence) EvidenceSummary {
	sum := EvidenceSummary{Total: len(evidence)}
	for _, ev := range evidence {
		switch ev.Type {
		case "counter":
			sum.Counter++
		case "supporting":
			sum.Supporting++
		}
	}
	return sum
}
