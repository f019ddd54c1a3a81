package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVerses() []Verse {
	return []Verse{
		{
			Surah: SurahRef{Number: 1, Name: "الفاتحة"},
			Ayah:  1,
			Text:  "بِسْمِ ٱللَّهِ",
			Tokens: []Token{
				{ID: 1, Form: "بِسْمِ"},
				{ID: 2, Form: "ٱللَّهِ"},
			},
		},
		{Surah: SurahRef{Number: 1, Name: "الفاتحة"}, Ayah: 2, Text: "ٱلْحَمْدُ لِلَّهِ"},
		{Surah: SurahRef{Number: 2, Name: "البقرة"}, Ayah: 1, Text: "الم"},
	}
}

func TestCorpus_Lookups(t *testing.T) {
	c, err := New(sampleVerses())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())

	v := c.Verse(1, 2)
	require.NotNil(t, v)
	assert.Equal(t, "ٱلْحَمْدُ لِلَّهِ", v.Text)
	assert.Equal(t, Location{Surah: 1, Ayah: 2}, v.Location())

	assert.Nil(t, c.Verse(3, 1))
	assert.Nil(t, c.At(-1))
	assert.Nil(t, c.At(3))
	assert.Equal(t, "الم", c.At(2).Text)

	fatiha := c.Surah(1)
	require.Len(t, fatiha, 2)
	assert.Equal(t, 1, fatiha[0].Ayah)
	assert.Empty(t, c.Surah(114))
}

func TestCorpus_RejectsInvalidVerses(t *testing.T) {
	testCases := []struct {
		name   string
		verses []Verse
	}{
		{"duplicate reference", []Verse{
			{Surah: SurahRef{Number: 1}, Ayah: 1},
			{Surah: SurahRef{Number: 1}, Ayah: 1},
		}},
		{"zero surah", []Verse{{Surah: SurahRef{Number: 0}, Ayah: 1}}},
		{"zero ayah", []Verse{{Surah: SurahRef{Number: 1}, Ayah: 0}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.verses)
			assert.Error(t, err)
		})
	}
}

func TestCorpus_SurahSummaries(t *testing.T) {
	c, err := New(sampleVerses())
	require.NoError(t, err)

	summaries := c.SurahSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, SurahSummary{Number: 1, Name: "الفاتحة", AyahCount: 2}, summaries[0])
	assert.Equal(t, SurahSummary{Number: 2, Name: "البقرة", AyahCount: 1}, summaries[1])
}

func TestLocation_Ordering(t *testing.T) {
	locs := []Location{{2, 1}, {1, 7}, {1, 2}, {2, 1}}
	SortLocations(locs)
	assert.Equal(t, []Location{{1, 2}, {1, 7}, {2, 1}, {2, 1}}, locs)
	assert.Equal(t, "1:7", Location{1, 7}.String())
}

func TestReadJSONL(t *testing.T) {
	input := `{"surah":{"number":1,"name":"الفاتحة"},"ayah":1,"text":"بِسْمِ","tokens":[{"id":1,"form":"بِسْمِ","segments":[{"type":"prefix","pos":"P"},{"type":"stem","pos":"N","root":"سمو"}]}]}

{"surah":{"number":1},"ayah":2,"text":"ٱلْحَمْدُ"}
`
	verses, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "سمو", verses[0].Tokens[0].Segments[1].Root)
	assert.Equal(t, 2, verses[1].Ayah)

	_, err = ReadJSONL(strings.NewReader(`{"surah":`))
	assert.Error(t, err)
}
