// Package index derives the root, morphological-pattern and syntactic
// n-gram indexes from a loaded corpus. Indexes are pure functions of the
// corpus content: Build runs one full pass and returns a fresh value, and
// any out-of-band mutation of verse data requires calling Build again and
// swapping the result in. There is no incremental update.
package index

import (
	"sort"
	"strings"

	"github.com/yaseen-research/codex/app/corpus"
)

// Entry is one enumerable index entry, consumed by pattern pickers.
// Count is the number of distinct verse locations, not raw occurrences.
type Entry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type patternMeta struct {
	label string
	locs  map[corpus.Location]struct{}
}

type Indexes struct {
	roots      map[string]map[corpus.Location]struct{}
	rootList   []string
	morph      map[string]*patternMeta
	morphList  []Entry
	syntax     map[string]*patternMeta
	syntaxList []Entry
}

// Build runs a single pass over every verse, token and segment of the
// corpus and populates all three indexes.
func Build(c *corpus.Corpus) *Indexes {
	ix := &Indexes{
		roots:  make(map[string]map[corpus.Location]struct{}),
		morph:  make(map[string]*patternMeta),
		syntax: make(map[string]*patternMeta),
	}

	for i := 0; i < c.Len(); i++ {
		v := c.At(i)
		loc := v.Location()

		for _, tok := range v.Tokens {
			for _, seg := range tok.Segments {
				if root := strings.TrimSpace(seg.Root); root != "" {
					set := ix.roots[root]
					if set == nil {
						set = make(map[corpus.Location]struct{})
						ix.roots[root] = set
					}
					set[loc] = struct{}{}
				}

				if key := MorphKey(seg); key != "" {
					meta := ix.morph[key]
					if meta == nil {
						meta = &patternMeta{
							label: MorphLabel(seg),
							locs:  make(map[corpus.Location]struct{}),
						}
						ix.morph[key] = meta
					}
					meta.locs[loc] = struct{}{}
				}
			}
		}

		seq := POSSequence(v.Tokens)
		for length := 2; length <= 3 && length <= len(seq); length++ {
			for start := 0; start+length <= len(seq); start++ {
				window := seq[start : start+length]
				key := strings.Join(window, "|")
				meta := ix.syntax[key]
				if meta == nil {
					meta = &patternMeta{
						label: strings.ToUpper(strings.Join(window, " → ")),
						locs:  make(map[corpus.Location]struct{}),
					}
					ix.syntax[key] = meta
				}
				meta.locs[loc] = struct{}{}
			}
		}
	}

	ix.rootList = make([]string, 0, len(ix.roots))
	for root := range ix.roots {
		ix.rootList = append(ix.rootList, root)
	}
	sort.Strings(ix.rootList)

	ix.morphList = entryList(ix.morph)
	ix.syntaxList = entryList(ix.syntax)
	return ix
}

func entryList(m map[string]*patternMeta) []Entry {
	entries := make([]Entry, 0, len(m))
	for key, meta := range m {
		entries = append(entries, Entry{ID: key, Label: meta.label, Count: len(meta.locs)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Label != entries[j].Label {
			return entries[i].Label < entries[j].Label
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// MorphKey computes the composite pattern key of a segment, built from the
// lowercased (type, pos, lemma, features) tuple. It is empty when all four
// fields are empty, in which case the segment contributes nothing.
func MorphKey(seg corpus.Segment) string {
	typ := strings.ToLower(seg.Type)
	pos := strings.ToLower(seg.POS)
	lemma := strings.ToLower(seg.Lemma)
	features := strings.ToLower(seg.Features)
	if typ == "" && pos == "" && lemma == "" && features == "" {
		return ""
	}
	return strings.Join([]string{typ, pos, lemma, features}, "|")
}

// MorphLabel renders the display label for a segment's pattern: the
// non-empty fields joined by a bullet, with the segment type uppercased.
func MorphLabel(seg corpus.Segment) string {
	var parts []string
	if seg.Type != "" {
		parts = append(parts, strings.ToUpper(seg.Type))
	}
	if seg.POS != "" {
		parts = append(parts, seg.POS)
	}
	if seg.Lemma != "" {
		parts = append(parts, seg.Lemma)
	}
	if seg.Features != "" {
		parts = append(parts, seg.Features)
	}
	if len(parts) == 0 {
		return "Morph Pattern"
	}
	return strings.Join(parts, " • ")
}

// POSSequence derives the per-token POS sequence of a verse: the first
// segment's POS when the token has segments, else the token's own POS,
// lowercased. Tokens with no POS at all are skipped.
func POSSequence(tokens []corpus.Token) []string {
	var seq []string
	for _, tok := range tokens {
		pos := ""
		if len(tok.Segments) > 0 {
			pos = tok.Segments[0].POS
		} else if tok.POS != "" {
			pos = tok.POS
		}
		if pos != "" {
			seq = append(seq, strings.ToLower(pos))
		}
	}
	return seq
}

// Roots returns every distinct root, sorted.
func (ix *Indexes) Roots() []string {
	return ix.rootList
}

// MorphPatterns returns the morph-pattern entries sorted by label.
func (ix *Indexes) MorphPatterns() []Entry {
	return ix.morphList
}

// SyntaxPatterns returns the syntax n-gram entries sorted by label.
func (ix *Indexes) SyntaxPatterns() []Entry {
	return ix.syntaxList
}

// RootLocations returns the sorted locations for a root. An unknown
// root yields nil.
func (ix *Indexes) RootLocations(root string) []corpus.Location {
	return sortedLocations(ix.roots[root])
}

// MorphPattern looks up a morph-pattern entry by its composite key.
func (ix *Indexes) MorphPattern(id string) (label string, locs []corpus.Location, ok bool) {
	meta, ok := ix.morph[id]
	if !ok {
		return "", nil, false
	}
	return meta.label, sortedLocations(meta.locs), true
}

// SyntaxPattern looks up a syntax n-gram entry by its composite key.
func (ix *Indexes) SyntaxPattern(id string) (label string, locs []corpus.Location, ok bool) {
	meta, ok := ix.syntax[id]
	if !ok {
		return "", nil, false
	}
	return meta.label, sortedLocations(meta.locs), true
}

func sortedLocations(set map[corpus.Location]struct{}) []corpus.Location {
	if len(set) == 0 {
		return nil
	}
	locs := make([]corpus.Location, 0, len(set))
	for loc := range set {
		locs = append(locs, loc)
	}
	corpus.SortLocations(locs)
	return locs
}
