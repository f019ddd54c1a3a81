package masaq

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaseen-research/codex/app/corpus"
)

func TestRead(t *testing.T) {
	input := "\ufeff" + `Sura_No,Verse_No,Word_No,Word,Segmented_Word,Without_Diacritics,Morph_tag,Morph_type,Case_Mood,Case_Mood_Marker,Syntactic_Role,Phrase,Phrasal_Function
1,1,1,بِسْمِ,بِ+سْمِ,بسم,N,Noun,Genitive,kasra,Object of preposition,PP,Adverbial
1,1,2,ٱللَّهِ,ٱللَّهِ,الله,PN,Proper noun,Genitive,kasra,Mudaf ilayh,PP,Adverbial
x,y,1,skipped,,,,,,,,,
2,255,5,ٱلْقَيُّومُ,ٱلْقَيُّومُ,القيوم,ADJ,Adjective,Nominative,damma,Predicate,NP,Main
`
	ds, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Verses())
	assert.Equal(t, []corpus.Location{{Surah: 1, Ayah: 1}, {Surah: 2, Ayah: 255}}, ds.Locations())

	words := ds.Verse(1, 1)
	require.Len(t, words, 2)
	assert.Equal(t, 1, words[0].WordNo)
	assert.Equal(t, "بِ+سْمِ", words[0].Segmented)
	assert.Equal(t, "الله", words[1].Lemma)
	assert.Equal(t, "Mudaf ilayh", words[1].SyntacticRole)

	assert.Nil(t, ds.Verse(3, 1))
}

func TestRead_BadHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDataset_Facets(t *testing.T) {
	input := `Sura_No,Verse_No,Word_No,Word,Morph_tag,Case_Mood,Syntactic_Role
1,1,1,a,N,Genitive,Subject
1,1,2,b,PN,Genitive,Predicate
1,2,1,c,N,,Subject
`
	ds, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	f := ds.Facets()
	assert.Equal(t, []string{"N", "PN"}, f.MorphTags)
	assert.Equal(t, []string{"Predicate", "Subject"}, f.SyntacticRoles)
	assert.Equal(t, []string{"Genitive"}, f.CaseMoods)
}

func TestFilter(t *testing.T) {
	w := Word{MorphTag: "N", SyntacticRole: "Subject", CaseMood: "Nominative"}

	testCases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty matches all", Filter{}, true},
		{"single field", Filter{MorphTag: "N"}, true},
		{"all fields", Filter{MorphTag: "N", SyntacticRole: "Subject", CaseMood: "Nominative"}, true},
		{"one mismatch fails", Filter{MorphTag: "N", CaseMood: "Genitive"}, false},
		{"role mismatch", Filter{SyntacticRole: "Predicate"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(w))
		})
	}

	assert.Equal(t, "Morphology match", Filter{}.Label())
	assert.Equal(t, "Type: N, Case: Genitive", Filter{MorphTag: "N", CaseMood: "Genitive"}.Label())
}

func TestLoadFile_Missing(t *testing.T) {
	ds, err := LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Verses())
	assert.Empty(t, ds.Locations())
}
