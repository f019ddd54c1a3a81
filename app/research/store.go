package research

import (
	"context"
	"encoding/json"

	"github.com/yaseen-research/codex/app/corpus"
)

// Store persists the research layer: annotations, hypotheses,
// translations and connections keyed by verse location, plus the global
// pattern library and hypothesis tag registry.
type Store interface {
	Init() error

	AddAnnotation(ctx context.Context, loc corpus.Location, a Annotation) (Annotation, error)
	Annotations(ctx context.Context, loc corpus.Location) ([]Annotation, error)

	AddHypothesis(ctx context.Context, loc corpus.Location, h Hypothesis) (Hypothesis, error)
	Hypotheses(ctx context.Context, loc corpus.Location) ([]Hypothesis, error)
	UpdateHypothesis(ctx context.Context, loc corpus.Location, id string, upd HypothesisUpdate) (Hypothesis, bool, error)
	DeleteHypothesis(ctx context.Context, loc corpus.Location, id string) (bool, error)

	AddTranslation(ctx context.Context, loc corpus.Location, tr Translation) (Translation, error)
	Translations(ctx context.Context, loc corpus.Location) ([]Translation, error)
	ReplaceTranslations(ctx context.Context, loc corpus.Location, trs []Translation) ([]Translation, error)
	DeleteTranslation(ctx context.Context, loc corpus.Location, id string) (bool, error)

	Connections(ctx context.Context, loc corpus.Location) (Connections, error)
	SetConnections(ctx context.Context, loc corpus.Location, conns Connections) (Connections, error)

	SavePattern(ctx context.Context, p SavedPattern) (SavedPattern, error)
	SavedPatterns(ctx context.Context) ([]SavedPattern, error)
	SavedPattern(ctx context.Context, id string) (SavedPattern, bool, error)
	DeleteSavedPattern(ctx context.Context, id string) (bool, error)

	SetTag(ctx context.Context, name string, def json.RawMessage) error
	Tag(ctx context.Context, name string) (json.RawMessage, bool, error)
	Tags(ctx context.Context) (TagRegistry, error)

	Stats(ctx context.Context) (StoreStats, error)
	Close() error
}

// StoreStats summarizes the persisted research layer.
type StoreStats struct {
	Annotations  int `json:"total_annotations"`
	Hypotheses   int `json:"total_hypotheses"`
	Translations int `json:"total_translations"`
	Tags         int `json:"total_hypothesis_tags"`
}
