package corpus

import (
	"fmt"
	"sort"
)

// Segment is one morphological unit within a token (prefix, stem or
// suffix). All annotation fields are optional; an empty string means the
// attribute is unknown, never that it was guessed.
type Segment struct {
	ID       int    `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	POS      string `json:"pos,omitempty"`
	Root     string `json:"root,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
	Features string `json:"features,omitempty"`
	Form     string `json:"form,omitempty"`
}

// Token is one whitespace-delimited word of a verse. A token with no
// segments has unknown morphology.
type Token struct {
	ID       int       `json:"id,omitempty"`
	Form     string    `json:"form,omitempty"`
	POS      string    `json:"pos,omitempty"`
	Features string    `json:"features,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

type SurahRef struct {
	Number int    `json:"number"`
	Name   string `json:"name,omitempty"`
}

// Verse is one numbered unit of the corpus, identified by (surah, ayah).
// Text is the raw display text and may contain combining diacritics.
// Token order is reading order.
type Verse struct {
	Surah  SurahRef `json:"surah"`
	Ayah   int      `json:"ayah"`
	Text   string   `json:"text"`
	Tokens []Token  `json:"tokens,omitempty"`
}

// Location identifies a verse by its (surah, ayah) pair.
type Location struct {
	Surah int `json:"surah"`
	Ayah  int `json:"ayah"`
}

func (l Location) Less(o Location) bool {
	if l.Surah != o.Surah {
		return l.Surah < o.Surah
	}
	return l.Ayah < o.Ayah
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Surah, l.Ayah)
}

func (v *Verse) Location() Location {
	return Location{Surah: v.Surah.Number, Ayah: v.Ayah}
}

// SortLocations orders locations ascending by (surah, ayah).
func SortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
}

type SurahSummary struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	AyahCount int    `json:"ayah_count"`
}

// Corpus is an immutable view over a loaded list of verses: stable order,
// O(1) lookup by (surah, ayah) and lookup by linear position. Nothing in
// this package mutates it after New returns; a caller that changes verse
// content out of band must construct a new Corpus and rebuild all derived
// indexes.
type Corpus struct {
	verses  []Verse
	byRef   map[Location]int
	bySurah map[int][]int
	surahs  []int
}

// New builds a Corpus from loader-supplied verses. Verse identity must be
// unique; a duplicate (surah, ayah) pair or a non-positive surah/ayah
// number is rejected.
func New(verses []Verse) (*Corpus, error) {
	c := &Corpus{
		verses:  verses,
		byRef:   make(map[Location]int, len(verses)),
		bySurah: make(map[int][]int),
	}
	for i := range verses {
		v := &verses[i]
		loc := v.Location()
		if loc.Surah <= 0 || loc.Ayah <= 0 {
			return nil, fmt.Errorf("verse %d has invalid reference %s", i, loc)
		}
		if prev, dup := c.byRef[loc]; dup {
			return nil, fmt.Errorf("duplicate verse %s (positions %d and %d)", loc, prev, i)
		}
		c.byRef[loc] = i
		c.bySurah[loc.Surah] = append(c.bySurah[loc.Surah], i)
	}
	for n := range c.bySurah {
		c.surahs = append(c.surahs, n)
	}
	sort.Ints(c.surahs)
	return c, nil
}

func (c *Corpus) Len() int {
	return len(c.verses)
}

// At returns the verse at linear position i, or nil when out of range.
func (c *Corpus) At(i int) *Verse {
	if i < 0 || i >= len(c.verses) {
		return nil
	}
	return &c.verses[i]
}

// Verse returns the verse identified by (surah, ayah), or nil.
func (c *Corpus) Verse(surah, ayah int) *Verse {
	i, ok := c.byRef[Location{Surah: surah, Ayah: ayah}]
	if !ok {
		return nil
	}
	return &c.verses[i]
}

// Surah returns all verses of a surah in corpus order.
func (c *Corpus) Surah(number int) []*Verse {
	idxs := c.bySurah[number]
	out := make([]*Verse, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, &c.verses[i])
	}
	return out
}

// SurahSummaries returns metadata for every surah present in the corpus,
// ordered by surah number.
func (c *Corpus) SurahSummaries() []SurahSummary {
	out := make([]SurahSummary, 0, len(c.surahs))
	for _, n := range c.surahs {
		idxs := c.bySurah[n]
		name := ""
		if len(idxs) > 0 {
			name = c.verses[idxs[0]].Surah.Name
		}
		out = append(out, SurahSummary{Number: n, Name: name, AyahCount: len(idxs)})
	}
	return out
}
