package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaseen-research/codex/app/corpus"
	"github.com/yaseen-research/codex/app/index"
	"github.com/yaseen-research/codex/app/masaq"
	"github.com/yaseen-research/codex/app/pattern"
)

const masaqCSV = `Sura_No,Verse_No,Word_No,Word,Segmented_Word,Without_Diacritics,Morph_tag,Morph_type,Case_Mood,Case_Mood_Marker,Syntactic_Role,Phrase,Phrasal_Function
1,1,1,بِسْمِ,بِ+سْمِ,بسم,N,Noun,Genitive,kasra,Object of preposition,PP,Adverbial
1,1,2,ٱللَّهِ,ٱللَّهِ,الله,PN,Proper noun,Genitive,kasra,Mudaf ilayh,PP,Adverbial
112,1,1,قُلْ,قُلْ,قل,V,Verb,Jussive,sukun,Verb,VP,Main
`

func testService(t *testing.T) *Service {
	t.Helper()
	c, err := corpus.New([]corpus.Verse{
		{
			Surah: corpus.SurahRef{Number: 1, Name: "الفاتحة"},
			Ayah:  1,
			Text:  "بِسْمِ ٱللَّهِ",
			Tokens: []corpus.Token{
				{ID: 1, Form: "بِسْمِ", Segments: []corpus.Segment{
					{Type: "prefix", POS: "P", Form: "بِ"},
					{Type: "stem", POS: "N", Root: "سمو", Lemma: "اسم"},
				}},
				{ID: 2, Form: "ٱللَّهِ", Segments: []corpus.Segment{
					{Type: "stem", POS: "PN", Root: "اله", Lemma: "الله"},
				}},
			},
		},
		{
			Surah: corpus.SurahRef{Number: 1, Name: "الفاتحة"},
			Ayah:  3,
			Text:  "ٱلرَّحْمَـٰنِ ٱلرَّحِيمِ",
			Tokens: []corpus.Token{
				{ID: 3, Form: "ٱلرَّحْمَـٰنِ", Segments: []corpus.Segment{
					{Type: "stem", POS: "N", Root: "رحم", Lemma: "رحمن", Features: "MS|GEN"},
				}},
				{ID: 4, Form: "ٱلرَّحِيمِ", Segments: []corpus.Segment{
					{Type: "stem", POS: "ADJ", Lemma: "رحيم", Features: "MS|GEN"},
				}},
			},
		},
		{
			Surah: corpus.SurahRef{Number: 2, Name: "البقرة"},
			Ayah:  25,
			Text:  "ءَامَنُوا۟ وَعَمِلُوا۟",
			Tokens: []corpus.Token{
				{ID: 5, Form: "ءَامَنُوا۟", Segments: []corpus.Segment{
					{Type: "stem", POS: "V", Root: "امن", Lemma: "ءامن", Features: "(IV)|3MP|ACT|PERF"},
				}},
				{ID: 6, Form: "وَعَمِلُوا۟", Segments: []corpus.Segment{
					{Type: "prefix", POS: "CONJ", Form: "وَ"},
					{Type: "stem", POS: "V", Root: "عمل", Lemma: "عمل", Features: "3MP|ACT|PERF"},
				}},
			},
		},
		{
			Surah: corpus.SurahRef{Number: 112, Name: "الإخلاص"},
			Ayah:  1,
			Text:  "قُلْ هُوَ ٱللَّهُ أَحَدٌ",
			Tokens: []corpus.Token{
				{ID: 7, Form: "قُلْ", Segments: []corpus.Segment{
					{Type: "stem", POS: "V", Root: "قول", Lemma: "قال", Features: "(I)|IMPV|2MS"},
				}},
				{ID: 8, Form: "هُوَ", Segments: []corpus.Segment{
					{Type: "stem", POS: "PRON", Features: "3MS"},
				}},
				{ID: 9, Form: "ٱللَّهُ", Segments: []corpus.Segment{
					{Type: "stem", POS: "PN", Root: "اله", Lemma: "الله"},
				}},
				{ID: 10, Form: "أَحَدٌ", Segments: []corpus.Segment{
					{Type: "stem", POS: "N", Root: "احد", Features: "NOM"},
				}},
			},
		},
	})
	require.NoError(t, err)

	ds, err := masaq.Read(strings.NewReader(masaqCSV))
	require.NoError(t, err)

	return New(c, index.Build(c), ds)
}

func TestSearchText(t *testing.T) {
	s := testService(t)

	res := s.SearchText("ٱللَّه", 10)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, "Text match", res.Items[0].Match)
	assert.Equal(t, 1, res.Items[0].Verse.Surah.Number)
	assert.Equal(t, 112, res.Items[1].Verse.Surah.Number)

	// The scan stops at the limit, so the count reflects what was returned.
	res = s.SearchText("ٱللَّه", 1)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)

	assert.Empty(t, s.SearchText("", 10).Items)
	assert.Empty(t, s.SearchText("   ", 10).Items)
	assert.Equal(t, 0, s.SearchText("كتاب", 10).TotalCount)
}

func TestSearchByRoot(t *testing.T) {
	s := testService(t)

	res := s.SearchByRoot("اله", 10)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, "Root: اله", res.Items[0].Match)
	assert.Equal(t, res.Items[0].Verse.Tokens[1].Form, res.Items[0].MatchTerm)

	res = s.SearchByRoot("اله", 1)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)

	assert.Empty(t, s.SearchByRoot(" ", 10).Items)
}

func TestSearchRootIndexed(t *testing.T) {
	s := testService(t)

	res := s.SearchRootIndexed("رحم", 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	hit := res.Items[0]
	assert.Equal(t, corpus.Location{Surah: 1, Ayah: 3}, hit.Verse.Location())
	assert.Equal(t, "Root: رحم", hit.Match)
	assert.Equal(t, hit.Verse.Tokens[0].Form, hit.MatchTerm)

	// Truncation keeps the full entry size in the count.
	res = s.SearchRootIndexed("اله", 1)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalCount)

	assert.Empty(t, s.SearchRootIndexed("كتب", 10).Items)
	assert.Empty(t, s.SearchRootIndexed("", 10).Items)
}

func TestSearchMorphPattern(t *testing.T) {
	s := testService(t)

	res := s.SearchMorphPattern("stem|pn|الله|", 10)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, "STEM • PN • الله", res.Items[0].Match)

	res = s.SearchMorphPattern("stem|pn|الله|", 1)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalCount)

	assert.Empty(t, s.SearchMorphPattern("stem|v|كتب|", 10).Items)
}

func TestSearchSyntaxPattern(t *testing.T) {
	s := testService(t)

	res := s.SearchSyntaxPattern("p|pn", 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "P → PN", res.Items[0].Match)
	assert.Equal(t, corpus.Location{Surah: 1, Ayah: 1}, res.Items[0].Verse.Location())

	assert.Empty(t, s.SearchSyntaxPattern("n|n|n", 10).Items)
}

func TestSearchMorphologyFreeText(t *testing.T) {
	s := testService(t)

	res := s.SearchMorphologyFreeText("رحم", 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "STEM • N • رحمن", res.Items[0].Match)
	assert.Equal(t, res.Items[0].Verse.Tokens[0].Form, res.Items[0].MatchTerm)

	// Every verse carries a stem segment; each counts once.
	res = s.SearchMorphologyFreeText("stem", 2)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 4, res.TotalCount)

	assert.Empty(t, s.SearchMorphologyFreeText("  ", 10).Items)
}

func TestTokenizeSyntaxQuery(t *testing.T) {
	testCases := []struct {
		query string
		want  []string
	}{
		{"p pn", []string{"p", "pn"}},
		{"P > PN", []string{"p", "pn"}},
		{"p,pn,n", []string{"p", "pn", "n"}},
		{"V + N - ADJ", []string{"v", "n", "adj"}},
		{"   ", nil},
		{"", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, TokenizeSyntaxQuery(tc.query))
		})
	}
}

func TestSearchSyntaxFreeText(t *testing.T) {
	s := testService(t)

	res := s.SearchSyntaxFreeText("p pn", 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	hit := res.Items[0]
	assert.Equal(t, corpus.Location{Surah: 1, Ayah: 1}, hit.Verse.Location())
	assert.Equal(t, "POS pattern: P PN", hit.Match)
	assert.Equal(t, hit.Verse.Tokens[0].Form+" "+hit.Verse.Tokens[1].Form, hit.MatchTerm)

	// Each matching verse contributes exactly one result and count.
	res = s.SearchSyntaxFreeText("v", 10)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalCount)

	res = s.SearchSyntaxFreeText("v", 1)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalCount)

	assert.Empty(t, s.SearchSyntaxFreeText("n n n n n n", 10).Items)
	assert.Empty(t, s.SearchSyntaxFreeText("", 10).Items)
}

func TestSearchStructuralPattern(t *testing.T) {
	s := testService(t)

	spec := pattern.Spec{
		Slots: []pattern.Slot{
			{Letter: "ر", AnyDiacritics: true},
			{Letter: "ح", AnyDiacritics: true},
			{Letter: "م", AnyDiacritics: true},
		},
		AllowPrefix: true,
		AllowSuffix: true,
	}
	res := s.SearchStructuralPattern(spec, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	hit := res.Items[0]
	assert.Equal(t, corpus.Location{Surah: 1, Ayah: 3}, hit.Verse.Location())
	assert.Equal(t, 1, hit.MatchCount)
	assert.NotEmpty(t, hit.MatchPattern)

	assert.Empty(t, s.SearchStructuralPattern(pattern.Spec{}, 10).Items)
}

func TestSearchVerbForms(t *testing.T) {
	s := testService(t)

	res := s.SearchVerbForms(VerbFilter{Form: "IV"}, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	hit := res.Items[0]
	assert.Equal(t, corpus.Location{Surah: 2, Ayah: 25}, hit.Verse.Location())
	assert.Equal(t, "Form IV", hit.Match)
	require.Len(t, hit.Matches, 1)
	assert.Equal(t, "Form IV", hit.Matches[0].Parsed.VerbForm)
	assert.Equal(t, "امن", hit.Matches[0].Root)

	// Two perfect verbs in one verse aggregate into one result.
	res = s.SearchVerbForms(VerbFilter{Tense: "perfect"}, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2, res.Items[0].MatchCount)
	assert.Len(t, res.Items[0].Matches, 2)

	res = s.SearchVerbForms(VerbFilter{Person: "2nd"}, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "imperative", res.Items[0].Matches[0].Parsed.Tense)

	// No filter matches every verb segment.
	res = s.SearchVerbForms(VerbFilter{}, 10)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "Verb", res.Items[0].Match)

	assert.Empty(t, s.SearchVerbForms(VerbFilter{Form: "X"}, 10).Items)
}

func TestSearchMorphologyAdvanced(t *testing.T) {
	s := testService(t)

	res := s.SearchMorphologyAdvanced(masaq.Filter{MorphTag: "PN"}, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalCount)
	hit := res.Items[0]
	assert.Equal(t, corpus.Location{Surah: 1, Ayah: 1}, hit.Verse.Location())
	assert.Equal(t, "Type: PN", hit.Match)
	require.Len(t, hit.MasaqMatches, 1)
	assert.Equal(t, "Mudaf ilayh", hit.MasaqMatches[0].SyntacticRole)

	res = s.SearchMorphologyAdvanced(masaq.Filter{CaseMood: "Genitive"}, 10)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2, res.Items[0].MatchCount)

	assert.Empty(t, s.SearchMorphologyAdvanced(masaq.Filter{MorphTag: "ADJ"}, 10).Items)

	// Without the dataset the operation degrades to empty results.
	bare := New(s.Corpus(), s.Indexes(), nil)
	assert.Empty(t, bare.SearchMorphologyAdvanced(masaq.Filter{}, 10).Items)
}
