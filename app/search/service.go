// Package search implements the query operations over a loaded corpus and
// its derived indexes. A Service is an immutable snapshot: the owner
// builds a new one after any corpus mutation and swaps it in atomically.
// Every operation treats "not found" and malformed input as an empty
// success result, never as an error, and reports a TotalCount covering
// all matches even when the returned list is truncated by the limit.
package search

import (
	"regexp"
	"strings"

	"github.com/yaseen-research/codex/app/corpus"
	"github.com/yaseen-research/codex/app/index"
	"github.com/yaseen-research/codex/app/masaq"
	"github.com/yaseen-research/codex/app/morphology"
	"github.com/yaseen-research/codex/app/pattern"
)

// Result is one search hit. Match is the human-readable label; the other
// annotation fields are operation specific.
type Result struct {
	Verse        *corpus.Verse `json:"verse"`
	Match        string        `json:"match,omitempty"`
	MatchTerm    string        `json:"match_term,omitempty"`
	MatchPattern string        `json:"match_pattern,omitempty"`
	MatchCount   int           `json:"match_count,omitempty"`
	Matches      []VerbMatch   `json:"matches,omitempty"`
	MasaqMatches []masaq.Word  `json:"masaq_matches,omitempty"`
}

// Results pairs the (possibly truncated) hit list with the full match
// count across the corpus.
type Results struct {
	Items      []Result `json:"results"`
	TotalCount int      `json:"total_count"`
}

// VerbMatch is one decoded verb occurrence inside a verse.
type VerbMatch struct {
	TokenForm string              `json:"token_form,omitempty"`
	Root      string              `json:"root,omitempty"`
	Lemma     string              `json:"lemma,omitempty"`
	Parsed    morphology.Features `json:"parsed"`
}

// VerbFilter narrows SearchVerbForms; empty fields are ignored and every
// supplied field must equal the decoded value exactly. Form is the bare
// roman numeral ("IV"), matched against the decoded "Form IV".
type VerbFilter struct {
	Form   string `json:"form,omitempty"`
	Person string `json:"person,omitempty"`
	Number string `json:"number,omitempty"`
	Gender string `json:"gender,omitempty"`
	Voice  string `json:"voice,omitempty"`
	Tense  string `json:"tense,omitempty"`
}

// Service answers queries against one corpus/index snapshot.
type Service struct {
	corpus  *corpus.Corpus
	indexes *index.Indexes
	masaq   *masaq.Dataset
}

// New builds a query service over a corpus and its indexes. The masaq
// dataset may be nil; advanced morphology search then returns no results.
func New(c *corpus.Corpus, ix *index.Indexes, ds *masaq.Dataset) *Service {
	return &Service{corpus: c, indexes: ix, masaq: ds}
}

func (s *Service) Corpus() *corpus.Corpus {
	return s.corpus
}

func (s *Service) Indexes() *index.Indexes {
	return s.indexes
}

func (s *Service) Masaq() *masaq.Dataset {
	return s.masaq
}

// SearchText finds verses whose raw text contains the query,
// case-insensitively. The scan stops as soon as limit results are found,
// so TotalCount equals the number returned.
func (s *Service) SearchText(query string, limit int) Results {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Results{}
	}
	var items []Result
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		if strings.Contains(strings.ToLower(v.Text), q) {
			items = append(items, Result{Verse: v, Match: "Text match"})
			if len(items) >= limit {
				break
			}
		}
	}
	return Results{Items: items, TotalCount: len(items)}
}

// SearchByRoot scans every verse's segments for an exact root match,
// stopping at limit.
func (s *Service) SearchByRoot(root string, limit int) Results {
	root = strings.TrimSpace(root)
	if root == "" {
		return Results{}
	}
	var items []Result
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		form, found := rootForm(v, root)
		if !found {
			continue
		}
		items = append(items, Result{Verse: v, Match: "Root: " + root, MatchTerm: form})
		if len(items) >= limit {
			break
		}
	}
	return Results{Items: items, TotalCount: len(items)}
}

// rootForm returns the surface form of the first token holding a segment
// with exactly this root.
func rootForm(v *corpus.Verse, root string) (string, bool) {
	for _, tok := range v.Tokens {
		for _, seg := range tok.Segments {
			if seg.Root == root {
				return tok.Form, true
			}
		}
	}
	return "", false
}

// SearchRootIndexed answers a root query from the root index: locations
// sorted ascending, truncated to limit, TotalCount the full entry size.
// Each result attaches a representative surface form when one is found.
func (s *Service) SearchRootIndexed(root string, limit int) Results {
	root = strings.TrimSpace(root)
	if root == "" {
		return Results{}
	}
	locs := s.indexes.RootLocations(root)
	if len(locs) == 0 {
		return Results{}
	}

	var items []Result
	for _, loc := range locs {
		if len(items) >= limit {
			break
		}
		v := s.corpus.Verse(loc.Surah, loc.Ayah)
		if v == nil {
			continue
		}
		form, _ := rootForm(v, root)
		items = append(items, Result{Verse: v, Match: "Root: " + root, MatchTerm: form})
	}
	return Results{Items: items, TotalCount: len(locs)}
}

// SearchMorphPattern looks up a morph-pattern index entry by id. Unknown
// ids yield an empty result.
func (s *Service) SearchMorphPattern(patternID string, limit int) Results {
	label, locs, ok := s.indexes.MorphPattern(patternID)
	if !ok {
		return Results{}
	}
	return s.locationResults(label, locs, limit)
}

// SearchSyntaxPattern looks up a syntax n-gram index entry by id.
func (s *Service) SearchSyntaxPattern(patternID string, limit int) Results {
	label, locs, ok := s.indexes.SyntaxPattern(patternID)
	if !ok {
		return Results{}
	}
	return s.locationResults(label, locs, limit)
}

func (s *Service) locationResults(label string, locs []corpus.Location, limit int) Results {
	var items []Result
	for _, loc := range locs {
		if len(items) >= limit {
			break
		}
		v := s.corpus.Verse(loc.Surah, loc.Ayah)
		if v == nil {
			continue
		}
		items = append(items, Result{Verse: v, Match: label})
	}
	return Results{Items: items, TotalCount: len(locs)}
}

// SearchMorphologyFreeText finds verses where any segment field (type,
// pos, root, lemma, features) contains the query case-insensitively. Each
// verse counts once: scanning a verse stops at its first matching
// segment, but the corpus scan continues past the limit so TotalCount
// covers every matching verse.
func (s *Service) SearchMorphologyFreeText(query string, limit int) Results {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Results{}
	}

	var items []Result
	total := 0
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		tok, seg, found := matchSegment(v, q)
		if !found {
			continue
		}
		total++
		if len(items) < limit {
			label := strings.TrimSpace(strings.ToUpper(seg.Type) + " • " + seg.POS + " • " + seg.Lemma)
			items = append(items, Result{Verse: v, Match: label, MatchTerm: tok.Form})
		}
	}
	return Results{Items: items, TotalCount: total}
}

func matchSegment(v *corpus.Verse, q string) (corpus.Token, corpus.Segment, bool) {
	for _, tok := range v.Tokens {
		for _, seg := range tok.Segments {
			for _, field := range []string{seg.Type, seg.POS, seg.Root, seg.Lemma, seg.Features} {
				if field != "" && strings.Contains(strings.ToLower(field), q) {
					return tok, seg, true
				}
			}
		}
	}
	return corpus.Token{}, corpus.Segment{}, false
}

var syntaxQuerySplit = regexp.MustCompile(`[\s,>+-]+`)

// TokenizeSyntaxQuery splits a free-form POS pattern on whitespace,
// commas and the arrow/plus/minus separators users paste from pattern
// pickers, lowercasing the codes.
func TokenizeSyntaxQuery(query string) []string {
	var tokens []string
	for _, part := range syntaxQuerySplit.Split(query, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens = append(tokens, strings.ToLower(part))
		}
	}
	return tokens
}

// SearchSyntaxFreeText matches a POS-code sequence of any length against
// each verse's per-token POS sequence with a sliding window. A verse
// contributes at most one result and one count, at its first matching
// window. Tokens without segments occupy an empty slot in the sequence so
// window positions line up with token positions.
func (s *Service) SearchSyntaxFreeText(query string, limit int) Results {
	want := TokenizeSyntaxQuery(query)
	if len(want) == 0 {
		return Results{}
	}

	var items []Result
	total := 0
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		if len(v.Tokens) < len(want) {
			continue
		}
		seq := make([]string, len(v.Tokens))
		for j, tok := range v.Tokens {
			if len(tok.Segments) > 0 {
				seq[j] = strings.ToLower(tok.Segments[0].POS)
			}
		}

		for start := 0; start+len(want) <= len(seq); start++ {
			if !windowEquals(seq[start:start+len(want)], want) {
				continue
			}
			total++
			if len(items) < limit {
				var forms []string
				for _, tok := range v.Tokens[start : start+len(want)] {
					if tok.Form != "" {
						forms = append(forms, tok.Form)
					}
				}
				items = append(items, Result{
					Verse:     v,
					Match:     "POS pattern: " + strings.ToUpper(strings.Join(want, " ")),
					MatchTerm: strings.Join(forms, " "),
				})
			}
			break
		}
	}
	return Results{Items: items, TotalCount: total}
}

func windowEquals(window, want []string) bool {
	for i := range want {
		if window[i] != want[i] {
			return false
		}
	}
	return true
}

// SearchStructuralPattern compiles a diacritic-aware pattern spec and
// runs it against every verse's raw text. TotalCount sums the matches in
// all verses, including those past the limit.
func (s *Service) SearchStructuralPattern(spec pattern.Spec, limit int) Results {
	m := pattern.Compile(spec)
	if m == nil {
		return Results{}
	}

	var items []Result
	total := 0
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		n := m.Count(v.Text)
		if n == 0 {
			continue
		}
		total += n
		if len(items) < limit {
			items = append(items, Result{
				Verse:        v,
				Match:        "Pattern match",
				MatchPattern: m.Source(),
				MatchCount:   n,
			})
		}
	}
	return Results{Items: items, TotalCount: total}
}

// maxVerbExamples bounds the decoded examples attached per verse; the
// match count still reflects every matching segment.
const maxVerbExamples = 3

// SearchVerbForms scans every verb-tagged segment, decodes its features
// and keeps it only when all supplied filters match the decoded values.
// Results aggregate per verse with up to three example matches each.
func (s *Service) SearchVerbForms(filter VerbFilter, limit int) Results {
	var items []Result
	total := 0
	for i := 0; i < s.corpus.Len(); i++ {
		v := s.corpus.At(i)
		var verseMatches []VerbMatch
		for _, tok := range v.Tokens {
			for _, seg := range tok.Segments {
				if seg.POS != "V" {
					continue
				}
				parsed := morphology.Decode(seg)
				if !filter.matches(parsed) {
					continue
				}
				total++
				verseMatches = append(verseMatches, VerbMatch{
					TokenForm: tok.Form,
					Root:      parsed.Root,
					Lemma:     parsed.Lemma,
					Parsed:    parsed,
				})
			}
		}
		if len(verseMatches) == 0 || len(items) >= limit {
			continue
		}
		examples := verseMatches
		if len(examples) > maxVerbExamples {
			examples = examples[:maxVerbExamples]
		}
		items = append(items, Result{
			Verse:      v,
			Match:      filter.label(),
			Matches:    examples,
			MatchCount: len(verseMatches),
		})
	}
	return Results{Items: items, TotalCount: total}
}

func (f VerbFilter) matches(parsed morphology.Features) bool {
	if f.Form != "" && parsed.VerbForm != "Form "+f.Form {
		return false
	}
	if f.Person != "" && parsed.Person != f.Person {
		return false
	}
	if f.Number != "" && parsed.Number != f.Number {
		return false
	}
	if f.Gender != "" && parsed.Gender != f.Gender {
		return false
	}
	if f.Voice != "" && parsed.Voice != f.Voice {
		return false
	}
	if f.Tense != "" && parsed.Tense != f.Tense {
		return false
	}
	return true
}

func (f VerbFilter) label() string {
	var parts []string
	if f.Form != "" {
		parts = append(parts, "Form "+f.Form)
	}
	if f.Person != "" {
		parts = append(parts, f.Person+" person")
	}
	if f.Number != "" {
		parts = append(parts, f.Number)
	}
	if f.Gender != "" {
		parts = append(parts, f.Gender)
	}
	if f.Voice != "" {
		parts = append(parts, f.Voice)
	}
	if f.Tense != "" {
		parts = append(parts, f.Tense)
	}
	if len(parts) == 0 {
		return "Verb"
	}
	return strings.Join(parts, ", ")
}

// SearchMorphologyAdvanced filters the MASAQ dataset by its coded
// columns. Up to five matching words are attached per verse; TotalCount
// counts every matching word.
func (s *Service) SearchMorphologyAdvanced(filter masaq.Filter, limit int) Results {
	if s.masaq == nil {
		return Results{}
	}

	const maxExamples = 5
	var items []Result
	total := 0
	for _, loc := range s.masaq.Locations() {
		words := s.masaq.Verse(loc.Surah, loc.Ayah)
		var verseMatches []masaq.Word
		for _, w := range words {
			if filter.Matches(w) {
				verseMatches = append(verseMatches, w)
				total++
			}
		}
		if len(verseMatches) == 0 || len(items) >= limit {
			continue
		}
		v := s.corpus.Verse(loc.Surah, loc.Ayah)
		if v == nil {
			continue
		}
		examples := verseMatches
		if len(examples) > maxExamples {
			examples = examples[:maxExamples]
		}
		items = append(items, Result{
			Verse:        v,
			Match:        filter.Label(),
			MasaqMatches: examples,
			MatchCount:   len(verseMatches),
		})
	}
	return Results{Items: items, TotalCount: total}
}
