package research

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/yaseen-research/codex/app/corpus"
)

// SQLiteStore keeps each record as a JSON body next to its verse
// reference, so the record shape can evolve without schema migrations.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = &SQLiteStore{}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens (or creates) the research database at path using
// the compiled-in driver and prepares the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open(SQLiteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening research db: %w", err)
	}
	s := NewSQLiteStore(db)
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS codex_annotations (
			id TEXT PRIMARY KEY,
			surah INTEGER NOT NULL,
			ayah INTEGER NOT NULL,
			body BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_annotations_verse ON codex_annotations(surah, ayah);
		CREATE TABLE IF NOT EXISTS codex_hypotheses (
			id TEXT PRIMARY KEY,
			surah INTEGER NOT NULL,
			ayah INTEGER NOT NULL,
			target_type TEXT,
			body BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_hypotheses_verse ON codex_hypotheses(surah, ayah);
		CREATE TABLE IF NOT EXISTS codex_translations (
			id TEXT NOT NULL,
			surah INTEGER NOT NULL,
			ayah INTEGER NOT NULL,
			body BLOB NOT NULL,
			PRIMARY KEY (surah, ayah, id)
		);
		CREATE TABLE IF NOT EXISTS codex_connections (
			surah INTEGER NOT NULL,
			ayah INTEGER NOT NULL,
			body BLOB NOT NULL,
			PRIMARY KEY (surah, ayah)
		);
		CREATE TABLE IF NOT EXISTS codex_patterns (
			id TEXT PRIMARY KEY,
			body BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS codex_tags (
			name TEXT PRIMARY KEY,
			body BLOB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create research tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddAnnotation(ctx context.Context, loc corpus.Location, a Annotation) (Annotation, error) {
	a = NormalizeAnnotation(a)
	body, err := json.Marshal(a)
	if err != nil {
		return Annotation{}, fmt.Errorf("encoding annotation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO codex_annotations (id, surah, ayah, body) VALUES (?, ?, ?, ?)`,
		a.ID, loc.Surah, loc.Ayah, body)
	if err != nil {
		return Annotation{}, fmt.Errorf("inserting annotation: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) Annotations(ctx context.Context, loc corpus.Location) ([]Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM codex_annotations WHERE surah = ? AND ayah = ? ORDER BY id`,
		loc.Surah, loc.Ayah)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var a Annotation
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("decoding annotation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddHypothesis(ctx context.Context, loc corpus.Location, h Hypothesis) (Hypothesis, error) {
	h = NormalizeHypothesis(h)
	body, err := json.Marshal(h)
	if err != nil {
		return Hypothesis{}, fmt.Errorf("encoding hypothesis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO codex_hypotheses (id, surah, ayah, target_type, body) VALUES (?, ?, ?, ?, ?)`,
		h.ID, loc.Surah, loc.Ayah, h.TargetType, body)
	if err != nil {
		return Hypothesis{}, fmt.Errorf("inserting hypothesis: %w", err)
	}
	return h, nil
}

func (s *SQLiteStore) Hypotheses(ctx context.Context, loc corpus.Location) ([]Hypothesis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM codex_hypotheses WHERE surah = ? AND ayah = ? ORDER BY id`,
		loc.Surah, loc.Ayah)
	if err != nil {
		return nil, fmt.Errorf("querying hypotheses: %w", err)
	}
	defer rows.Close()

	var out []Hypothesis
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var h Hypothesis
		if err := json.Unmarshal(body, &h); err != nil {
			return nil, fmt.Errorf("decoding hypothesis: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateHypothesis(ctx context.Context, loc corpus.Location, id string, upd HypothesisUpdate) (Hypothesis, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM codex_hypotheses WHERE id = ? AND surah = ? AND ayah = ?`,
		id, loc.Surah, loc.Ayah).Scan(&body)
	if err == sql.ErrNoRows {
		return Hypothesis{}, false, nil
	}
	if err != nil {
		return Hypothesis{}, false, fmt.Errorf("loading hypothesis: %w", err)
	}
	var h Hypothesis
	if err := json.Unmarshal(body, &h); err != nil {
		return Hypothesis{}, false, fmt.Errorf("decoding hypothesis: %w", err)
	}

	if upd.Hypothesis != nil {
		h.Hypothesis = *upd.Hypothesis
	}
	if upd.Status != nil {
		h.Status = *upd.Status
	}
	if upd.Note != nil {
		h.Note = *upd.Note
	}
	if upd.TargetMeta != nil {
		h.TargetMeta = *upd.TargetMeta
	}
	if upd.EvidenceEntry != nil {
		h.Evidence = append(h.Evidence, NormalizeEvidence(*upd.EvidenceEntry))
	}
	h.UpdatedAt = timestamp()

	body, err = json.Marshal(h)
	if err != nil {
		return Hypothesis{}, false, fmt.Errorf("encoding hypothesis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE codex_hypotheses SET target_type = ?, body = ? WHERE id = ?`,
		h.TargetType, body, id)
	if err != nil {
		return Hypothesis{}, false, fmt.Errorf("updating hypothesis: %w", err)
	}
	return h, true, nil
}

func (s *SQLiteStore) DeleteHypothesis(ctx context.Context, loc corpus.Location, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM codex_hypotheses WHERE id = ? AND surah = ? AND ayah = ?`,
		id, loc.Surah, loc.Ayah)
	if err != nil {
		return false, fmt.Errorf("deleting hypothesis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) AddTranslation(ctx context.Context, loc corpus.Location, tr Translation) (Translation, error) {
	tr = NormalizeTranslation(tr)
	body, err := json.Marshal(tr)
	if err != nil {
		return Translation{}, fmt.Errorf("encoding translation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO codex_translations (id, surah, ayah, body) VALUES (?, ?, ?, ?)`,
		tr.ID, loc.Surah, loc.Ayah, body)
	if err != nil {
		return Translation{}, fmt.Errorf("inserting translation: %w", err)
	}
	return tr, nil
}

func (s *SQLiteStore) Translations(ctx context.Context, loc corpus.Location) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM codex_translations WHERE surah = ? AND ayah = ? ORDER BY id`,
		loc.Surah, loc.Ayah)
	if err != nil {
		return nil, fmt.Errorf("querying translations: %w", err)
	}
	defer rows.Close()

	var out []Translation
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var tr Translation
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, fmt.Errorf("decoding translation: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// ReplaceTranslations swaps the whole translation list of a verse in one
// transaction.
func (s *SQLiteStore) ReplaceTranslations(ctx context.Context, loc corpus.Location, trs []Translation) ([]Translation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("replacing translations: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM codex_translations WHERE surah = ? AND ayah = ?`,
		loc.Surah, loc.Ayah); err != nil {
		return nil, fmt.Errorf("clearing translations: %w", err)
	}
	out := make([]Translation, 0, len(trs))
	for _, tr := range trs {
		tr = NormalizeTranslation(tr)
		body, err := json.Marshal(tr)
		if err != nil {
			return nil, fmt.Errorf("encoding translation: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO codex_translations (id, surah, ayah, body) VALUES (?, ?, ?, ?)`,
			tr.ID, loc.Surah, loc.Ayah, body); err != nil {
			return nil, fmt.Errorf("inserting translation: %w", err)
		}
		out = append(out, tr)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("replacing translations: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteTranslation(ctx context.Context, loc corpus.Location, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM codex_translations WHERE id = ? AND surah = ? AND ayah = ?`,
		id, loc.Surah, loc.Ayah)
	if err != nil {
		return false, fmt.Errorf("deleting translation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Connections(ctx context.Context, loc corpus.Location) (Connections, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM codex_connections WHERE surah = ? AND ayah = ?`,
		loc.Surah, loc.Ayah).Scan(&body)
	if err == sql.ErrNoRows {
		return NormalizeConnections(Connections{}), nil
	}
	if err != nil {
		return Connections{}, fmt.Errorf("querying connections: %w", err)
	}
	var conns Connections
	if err := json.Unmarshal(body, &conns); err != nil {
		return Connections{}, fmt.Errorf("decoding connections: %w", err)
	}
	return NormalizeConnections(conns), nil
}

func (s *SQLiteStore) SetConnections(ctx context.Context, loc corpus.Location, conns Connections) (Connections, error) {
	conns = NormalizeConnections(conns)
	body, err := json.Marshal(conns)
	if err != nil {
		return Connections{}, fmt.Errorf("encoding connections: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO codex_connections (surah, ayah, body) VALUES (?, ?, ?)`,
		loc.Surah, loc.Ayah, body)
	if err != nil {
		return Connections{}, fmt.Errorf("saving connections: %w", err)
	}
	return conns, nil
}

func (s *SQLiteStore) SavePattern(ctx context.Context, p SavedPattern) (SavedPattern, error) {
	p = NormalizeSavedPattern(p)
	body, err := json.Marshal(p)
	if err != nil {
		return SavedPattern{}, fmt.Errorf("encoding pattern: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO codex_patterns (id, body) VALUES (?, ?)`,
		p.ID, body)
	if err != nil {
		return SavedPattern{}, fmt.Errorf("saving pattern: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) SavedPatterns(ctx context.Context) ([]SavedPattern, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM codex_patterns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying patterns: %w", err)
	}
	defer rows.Close()

	var out []SavedPattern
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var p SavedPattern
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decoding pattern: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SavedPattern(ctx context.Context, id string) (SavedPattern, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM codex_patterns WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return SavedPattern{}, false, nil
	}
	if err != nil {
		return SavedPattern{}, false, fmt.Errorf("loading pattern: %w", err)
	}
	var p SavedPattern
	if err := json.Unmarshal(body, &p); err != nil {
		return SavedPattern{}, false, fmt.Errorf("decoding pattern: %w", err)
	}
	return p, true, nil
}

func (s *SQLiteStore) DeleteSavedPattern(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM codex_patterns WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) SetTag(ctx context.Context, name string, def json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO codex_tags (name, body) VALUES (?, ?)`,
		name, []byte(def))
	if err != nil {
		return fmt.Errorf("saving tag: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Tag(ctx context.Context, name string) (json.RawMessage, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM codex_tags WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading tag: %w", err)
	}
	return json.RawMessage(body), true, nil
}

func (s *SQLiteStore) Tags(ctx context.Context) (TagRegistry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, body FROM codex_tags`)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	reg := make(TagRegistry)
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, err
		}
		reg[name] = json.RawMessage(body)
	}
	return reg, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats
	counts := []struct {
		table string
		dst   *int
	}{
		{"codex_annotations", &stats.Annotations},
		{"codex_hypotheses", &stats.Hypotheses},
		{"codex_translations", &stats.Translations},
		{"codex_tags", &stats.Tags},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dst); err != nil {
			return StoreStats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return stats, nil
}
