package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basmala = "بِسْمِ ٱللَّهِ ٱلرَّحْمَـٰنِ ٱلرَّحِيمِ"

func anySlots(letters ...string) []Slot {
	slots := make([]Slot, 0, len(letters))
	for _, l := range letters {
		slots = append(slots, Slot{Letter: l, AnyDiacritics: true})
	}
	return slots
}

func TestCompile_EmptyAndInvalid(t *testing.T) {
	assert.Nil(t, Compile(Spec{}))
	assert.Nil(t, Compile(Spec{Slots: nil, AllowPrefix: true}))
}

func TestCompile_Memoized(t *testing.T) {
	spec := Spec{Slots: anySlots("ق", "و", "ل"), AllowPrefix: true}
	first := Compile(spec)
	require.NotNil(t, first)
	assert.Same(t, first, Compile(spec))

	// A different boundary flag is a different matcher.
	assert.NotSame(t, first, Compile(Spec{Slots: spec.Slots}))
}

func TestMatcher_RahmanWithinWord(t *testing.T) {
	// ر-ح-م inside ٱلرَّحْمَـٰنِ: the word carries shadda, sukun, a tatweel
	// and a superscript alef between the pattern letters.
	m := Compile(Spec{Slots: anySlots("ر", "ح", "م"), AllowPrefix: true, AllowSuffix: true})
	require.NotNil(t, m)

	// Once in ٱلرَّحْمَـٰنِ; ٱلرَّحِيمِ has ي between ح and م and does not match.
	assert.Equal(t, 1, m.Count(basmala))

	spans := m.FindAll(basmala)
	require.Len(t, spans, 1)
	assert.Equal(t, strings.Index(basmala, "ر"), spans[0][0])
	assert.Contains(t, basmala[spans[0][0]:spans[0][1]], "م")
}

func TestMatcher_ExtraDiacriticsTolerated(t *testing.T) {
	// No diacritics specified on the slots, none required, all tolerated.
	m := Compile(Spec{
		Slots:       []Slot{{Letter: "ر"}, {Letter: "ح"}, {Letter: "م"}},
		AllowPrefix: true,
		AllowSuffix: true,
	})
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Count(basmala))
}

func TestMatcher_ExplicitDiacritics(t *testing.T) {
	kasra := Compile(Spec{
		Slots:       []Slot{{Letter: "ب", Diacritics: []string{"ِ"}}},
		AllowSuffix: true,
	})
	require.NotNil(t, kasra)
	assert.Equal(t, 1, kasra.Count(basmala))

	// A fatha on the same letter does not occur in the text.
	fatha := Compile(Spec{
		Slots:       []Slot{{Letter: "ب", Diacritics: []string{"َ"}}},
		AllowSuffix: true,
	})
	require.NotNil(t, fatha)
	assert.Equal(t, 0, fatha.Count(basmala))
}

func TestMatcher_WordBoundaries(t *testing.T) {
	testCases := []struct {
		name        string
		slots       []Slot
		allowPrefix bool
		allowSuffix bool
		want        int
	}{
		{"prefix of a longer word rejected", anySlots("ب"), false, false, 0},
		{"prefix allowed when suffix open", anySlots("ب"), false, true, 1},
		{"mid-word start rejected", anySlots("ر", "ح"), false, true, 0},
		{"mid-word start allowed", anySlots("ر", "ح"), true, true, 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := Compile(Spec{Slots: tc.slots, AllowPrefix: tc.allowPrefix, AllowSuffix: tc.allowSuffix})
			require.NotNil(t, m)
			assert.Equal(t, tc.want, m.Count(basmala))
		})
	}
}

func TestMatcher_AnyLetter(t *testing.T) {
	// Any letter followed by a fixed م, anywhere in a word.
	m := Compile(Spec{
		Slots:       []Slot{{AnyLetter: true, AnyDiacritics: true}, {Letter: "م", AnyDiacritics: true}},
		AllowPrefix: true,
		AllowSuffix: true,
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.Count(basmala), 2)
}

func TestMatcher_RejectedSpanDoesNotShadowOverlap(t *testing.T) {
	// In ممم the first مم span fails the word-end check; the overlapping
	// span ending at the word boundary must still be found.
	m := Compile(Spec{Slots: anySlots("م", "م"), AllowPrefix: true})
	require.NotNil(t, m)

	spans := m.FindAll("ممم")
	require.Len(t, spans, 1)
	assert.Equal(t, []int{2, 6}, spans[0])
	assert.Equal(t, 1, m.Count("ممم"))
}

func TestMatcher_WholeWord(t *testing.T) {
	m := Compile(Spec{Slots: anySlots("ق", "ل")})
	require.NotNil(t, m)

	assert.Equal(t, 1, m.Count("قُل هُوَ ٱللَّهُ"))
	assert.Equal(t, 0, m.Count("يَقُولُ"))
	assert.Nil(t, m.FindAll(""))
}
