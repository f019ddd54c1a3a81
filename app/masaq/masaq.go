// Package masaq loads the MASAQ morphology dataset, a CSV table of
// per-word grammatical analyses keyed by verse. It is a secondary
// annotation source next to the segment morphology carried by the corpus
// itself, and offers filtered search over its three coded columns.
package masaq

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaseen-research/codex/app/corpus"
)

// Word is one analysed word row of the dataset.
type Word struct {
	Surah          int    `json:"surah"`
	Ayah           int    `json:"ayah"`
	WordNo         int    `json:"word_no,omitempty"`
	Form           string `json:"form,omitempty"`
	Segmented      string `json:"segmented,omitempty"`
	Lemma          string `json:"lemma,omitempty"`
	MorphTag       string `json:"morph_tag,omitempty"`
	MorphType      string `json:"morph_type,omitempty"`
	CaseMood       string `json:"case_mood,omitempty"`
	CaseMoodMarker string `json:"case_mood_marker,omitempty"`
	SyntacticRole  string `json:"syntactic_role,omitempty"`
	Phrase         string `json:"phrase,omitempty"`
	PhrasalFn      string `json:"phrasal_function,omitempty"`
}

// Dataset indexes MASAQ rows by verse location.
type Dataset struct {
	byVerse map[corpus.Location][]Word
	order   []corpus.Location
}

// Filter selects words by exact value on the coded columns; empty fields
// are ignored and all supplied fields must hold.
type Filter struct {
	MorphTag      string `json:"morph_tag,omitempty"`
	SyntacticRole string `json:"syntactic_role,omitempty"`
	CaseMood      string `json:"case_mood,omitempty"`
}

// Matches reports whether a word satisfies every supplied filter field.
func (f Filter) Matches(w Word) bool {
	if f.MorphTag != "" && w.MorphTag != f.MorphTag {
		return false
	}
	if f.SyntacticRole != "" && w.SyntacticRole != f.SyntacticRole {
		return false
	}
	if f.CaseMood != "" && w.CaseMood != f.CaseMood {
		return false
	}
	return true
}

// Label renders the human-readable description of a filter.
func (f Filter) Label() string {
	var parts []string
	if f.MorphTag != "" {
		parts = append(parts, "Type: "+f.MorphTag)
	}
	if f.SyntacticRole != "" {
		parts = append(parts, "Role: "+f.SyntacticRole)
	}
	if f.CaseMood != "" {
		parts = append(parts, "Case: "+f.CaseMood)
	}
	if len(parts) == 0 {
		return "Morphology match"
	}
	return strings.Join(parts, ", ")
}

// Read parses the dataset from CSV. The first record is the header; rows
// with unparseable verse references are skipped.
func Read(r io.Reader) (*Dataset, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1

	header, err := rdr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading masaq header: %w", err)
	}
	// Files exported on Windows carry a BOM on the first column name.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ds := &Dataset{byVerse: make(map[corpus.Location][]Word)}
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading masaq row: %w", err)
		}

		surah, err1 := strconv.Atoi(field(rec, "Sura_No"))
		ayah, err2 := strconv.Atoi(field(rec, "Verse_No"))
		if err1 != nil || err2 != nil {
			continue
		}
		wordNo, _ := strconv.Atoi(field(rec, "Word_No"))

		w := Word{
			Surah:          surah,
			Ayah:           ayah,
			WordNo:         wordNo,
			Form:           field(rec, "Word"),
			Segmented:      field(rec, "Segmented_Word"),
			Lemma:          field(rec, "Without_Diacritics"),
			MorphTag:       field(rec, "Morph_tag"),
			MorphType:      field(rec, "Morph_type"),
			CaseMood:       field(rec, "Case_Mood"),
			CaseMoodMarker: field(rec, "Case_Mood_Marker"),
			SyntacticRole:  field(rec, "Syntactic_Role"),
			Phrase:         field(rec, "Phrase"),
			PhrasalFn:      field(rec, "Phrasal_Function"),
		}
		loc := corpus.Location{Surah: surah, Ayah: ayah}
		if _, seen := ds.byVerse[loc]; !seen {
			ds.order = append(ds.order, loc)
		}
		ds.byVerse[loc] = append(ds.byVerse[loc], w)
	}
	return ds, nil
}

// LoadFile reads the dataset from a CSV file. A missing file is not an
// error: verse-level morphology still works without the dataset.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("masaq dataset not found, advanced morphology disabled", "path", path)
			return &Dataset{byVerse: make(map[corpus.Location][]Word)}, nil
		}
		return nil, fmt.Errorf("opening masaq dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, err
	}
	slog.Info("masaq dataset loaded", "path", path, "verses", len(ds.byVerse))
	return ds, nil
}

// Verses returns the number of verses with dataset rows.
func (ds *Dataset) Verses() int {
	return len(ds.byVerse)
}

// Verse returns the analysed words of one verse, or nil.
func (ds *Dataset) Verse(surah, ayah int) []Word {
	return ds.byVerse[corpus.Location{Surah: surah, Ayah: ayah}]
}

// Locations returns every verse location with rows, in file order.
func (ds *Dataset) Locations() []corpus.Location {
	return ds.order
}

// Facets enumerates the distinct values of the filterable columns.
type Facets struct {
	MorphTags      []string `json:"morph_tags"`
	SyntacticRoles []string `json:"syntactic_roles"`
	CaseMoods      []string `json:"case_moods"`
}

func (ds *Dataset) Facets() Facets {
	tags := make(map[string]struct{})
	roles := make(map[string]struct{})
	cases := make(map[string]struct{})
	for _, words := range ds.byVerse {
		for _, w := range words {
			if w.MorphTag != "" {
				tags[w.MorphTag] = struct{}{}
			}
			if w.SyntacticRole != "" {
				roles[w.SyntacticRole] = struct{}{}
			}
			if w.CaseMood != "" {
				cases[w.CaseMood] = struct{}{}
			}
		}
	}
	return Facets{
		MorphTags:      sortedKeys(tags),
		SyntacticRoles: sortedKeys(roles),
		CaseMoods:      sortedKeys(cases),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
