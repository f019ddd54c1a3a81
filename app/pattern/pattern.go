// Package pattern compiles diacritic-aware structural word patterns into
// matchers runnable against raw verse text. A pattern is an ordered list
// of letter slots; each slot fixes a base letter (or any Arabic letter)
// and zero or more combining diacritics (or any diacritics). Unspecified
// extra combining marks are always tolerated, because source texts vary
// in diacritic density.
package pattern

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
)

// Slot is one letter position of a structural pattern.
type Slot struct {
	Letter        string   `json:"letter,omitempty"`
	Diacritics    []string `json:"diacritics,omitempty"`
	AnyLetter     bool     `json:"any_letter,omitempty"`
	AnyDiacritics bool     `json:"any_diacritics,omitempty"`
}

// Spec is a full structural pattern: the ordered slots plus the boundary
// flags. When AllowPrefix is false the match must start at a word
// boundary; likewise AllowSuffix for the end.
type Spec struct {
	Slots       []Slot `json:"segments"`
	AllowPrefix bool   `json:"allow_prefix"`
	AllowSuffix bool   `json:"allow_suffix"`
}

const (
	// Arabic letters including the extended hamza/alef wasla forms.
	letterClass = `[\x{0621}-\x{064A}\x{0671}-\x{0673}\x{0675}]`
	// Combining marks: fathatan..sukun, superscript alef, maddah..hamza below.
	diacriticClass = `[\x{064B}-\x{0652}\x{0670}\x{0653}-\x{0655}]`
	// Optional elongation (tatweel) tolerated after every slot.
	tatweel = `\x{0640}*`
)

// Matcher is a compiled structural pattern. The regexp engine has no
// lookaround, so word boundaries are checked against the match offsets
// after the body match rather than asserted inside the expression.
type Matcher struct {
	re          *regexp.Regexp
	source      string
	allowPrefix bool
	allowSuffix bool
}

var compiledCache = cache.New(10*time.Minute, 15*time.Minute)

// Compile translates a Spec into a Matcher. An empty slot list or an
// unusable expression yields nil, never a partial matcher; callers treat
// a nil Matcher as "no results".
func Compile(spec Spec) *Matcher {
	if len(spec.Slots) == 0 {
		return nil
	}
	source := render(spec.Slots)

	key := source
	if spec.AllowPrefix {
		key += "|p"
	}
	if spec.AllowSuffix {
		key += "|s"
	}
	if m, found := compiledCache.Get(key); found {
		return m.(*Matcher)
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil
	}
	m := &Matcher{
		re:          re,
		source:      source,
		allowPrefix: spec.AllowPrefix,
		allowSuffix: spec.AllowSuffix,
	}
	compiledCache.Set(key, m, cache.DefaultExpiration)
	return m
}

func render(slots []Slot) string {
	var b strings.Builder
	for _, slot := range slots {
		if slot.AnyLetter || slot.Letter == "" {
			b.WriteString(letterClass)
		} else {
			b.WriteString(regexp.QuoteMeta(slot.Letter))
		}
		if !slot.AnyDiacritics {
			for _, d := range slot.Diacritics {
				if d != "" {
					b.WriteString(regexp.QuoteMeta(d))
				}
			}
		}
		b.WriteString(diacriticClass)
		b.WriteString("*")
		b.WriteString(tatweel)
	}
	return b.String()
}

// Source returns the rendered expression, exposed for result display.
func (m *Matcher) Source() string {
	return m.source
}

// FindAll returns the [start, end) byte offsets of every match in text
// that also satisfies the boundary flags. After a boundary rejection the
// scan resumes one rune past the rejected start, so a rejected span
// cannot shadow an overlapping valid match further in.
func (m *Matcher) FindAll(text string) [][]int {
	var matches [][]int
	offset := 0
	for offset < len(text) {
		span := m.re.FindStringIndex(text[offset:])
		if span == nil {
			break
		}
		start, end := offset+span[0], offset+span[1]
		if (m.allowPrefix || atWordStart(text, start)) &&
			(m.allowSuffix || atWordEnd(text, end)) {
			matches = append(matches, []int{start, end})
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return matches
}

// Count returns the number of boundary-satisfying matches in text.
func (m *Matcher) Count(text string) int {
	return len(m.FindAll(text))
}

func atWordStart(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return unicode.IsSpace(r)
}

func atWordEnd(text string, end int) bool {
	if end == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return unicode.IsSpace(r)
}
