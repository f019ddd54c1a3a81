// Package morphology decodes the opaque encoded feature strings carried
// by corpus segments into structured grammatical attributes. Decoding is
// best effort: every attribute defaults to absent, and a rule table per
// attribute group is evaluated top to bottom so the priority order between
// overlapping markers stays visible and testable.
package morphology

import (
	"regexp"
	"strings"

	"github.com/yaseen-research/codex/app/corpus"
)

// Features is the structured decode of one segment. Empty string means
// the attribute could not be determined.
type Features struct {
	POS      string `json:"pos,omitempty"`
	POSFull  string `json:"pos_full,omitempty"`
	Root     string `json:"root,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
	Type     string `json:"type,omitempty"`
	VerbForm string `json:"verb_form,omitempty"`
	Person   string `json:"person,omitempty"`
	Number   string `json:"number,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Voice    string `json:"voice,omitempty"`
	Mood     string `json:"mood,omitempty"`
	Case     string `json:"case,omitempty"`
	Tense    string `json:"tense,omitempty"`
	Aspect   string `json:"aspect,omitempty"`
	Raw      string `json:"features_raw,omitempty"`
}

// marker is one condition of a decode rule: a substring (or suffix) match
// against the raw feature string, optionally against its uppercased form.
type marker struct {
	substr string
	upper  bool
	suffix bool
}

func (m marker) matches(raw, upper string) bool {
	s := raw
	if m.upper {
		s = upper
	}
	if m.suffix {
		return strings.HasSuffix(s, m.substr)
	}
	return strings.Contains(s, m.substr)
}

// rule assigns value when any of its markers matches. Rules within a group
// are tried in order and the first hit wins; later rules are not consulted
// even when their markers would also match.
type rule struct {
	value string
	any   []marker
}

func apply(rules []rule, raw, upper string) string {
	for _, r := range rules {
		for _, m := range r.any {
			if m.matches(raw, upper) {
				return r.value
			}
		}
	}
	return ""
}

var personRules = []rule{
	{"1st", []marker{{substr: "1P"}, {substr: "1S"}, {substr: "1D"}}},
	{"2nd", []marker{{substr: "2P"}, {substr: "2MS"}, {substr: "2FS"}, {substr: "2MD"}, {substr: "2FD"}, {substr: "2MP"}, {substr: "2FP"}}},
	{"3rd", []marker{{substr: "3P"}, {substr: "3MS"}, {substr: "3FS"}, {substr: "3MD"}, {substr: "3FD"}, {substr: "3MP"}, {substr: "3FP"}}},
}

var numberRules = []rule{
	{"singular", []marker{{substr: "S|"}, {substr: "S", suffix: true}, {substr: "MS"}, {substr: "FS"}}},
	{"dual", []marker{{substr: "D|"}, {substr: "D", suffix: true}, {substr: "MD"}, {substr: "FD"}}},
	{"plural", []marker{{substr: "P|"}, {substr: "P", suffix: true}, {substr: "MP"}, {substr: "FP"}}},
}

var genderRules = []rule{
	{"masculine", []marker{{substr: "|M|"}, {substr: "|M"}, {substr: "MS"}, {substr: "MD"}, {substr: "MP"}}},
	{"feminine", []marker{{substr: "|F|"}, {substr: "|F"}, {substr: "FS"}, {substr: "FD"}, {substr: "FP"}}},
}

var voiceRules = []rule{
	{"active", []marker{{substr: "ACT", upper: true}, {substr: "ACTIVE", upper: true}}},
	{"passive", []marker{{substr: "PASS", upper: true}, {substr: "PASSIVE", upper: true}}},
}

var moodRules = []rule{
	{"indicative", []marker{{substr: "MOOD:IND"}}},
	{"subjunctive", []marker{{substr: "MOOD:SJ"}, {substr: "SUBJ", upper: true}}},
	{"jussive", []marker{{substr: "MOOD:JUS"}, {substr: "JUS", upper: true}}},
}

// A feature string containing several case markers always resolves to the
// first one here; no disambiguation is attempted.
var caseRules = []rule{
	{"nominative", []marker{{substr: "NOM", upper: true}}},
	{"accusative", []marker{{substr: "ACC", upper: true}}},
	{"genitive", []marker{{substr: "GEN", upper: true}}},
}

// tenseRules also carry the paired aspect; imperative has no aspect.
var tenseRules = []struct {
	tense  string
	aspect string
	any    []marker
}{
	{"perfect", "perfective", []marker{{substr: "PERF", upper: true}}},
	{"imperfect", "imperfective", []marker{{substr: "IMPF", upper: true}}},
	{"imperative", "", []marker{{substr: "IMPV", upper: true}}},
}

// Verb form I-X, written as a parenthesised roman numeral such as "(IV)".
var verbFormRe = regexp.MustCompile(`\((I{1,3}V?|VI{0,3}|I?X)\)`)

// Decode parses a segment's feature string into structured attributes.
// The segment itself is never modified.
func Decode(seg corpus.Segment) Features {
	f := Features{
		POS:     seg.POS,
		POSFull: POSName(seg.POS),
		Root:    seg.Root,
		Lemma:   seg.Lemma,
		Type:    seg.Type,
		Raw:     seg.Features,
	}
	raw := seg.Features
	if raw == "" {
		return f
	}
	upper := strings.ToUpper(raw)

	if m := verbFormRe.FindStringSubmatch(raw); m != nil {
		f.VerbForm = "Form " + m[1]
	}

	f.Person = apply(personRules, raw, upper)
	f.Number = apply(numberRules, raw, upper)
	f.Gender = apply(genderRules, raw, upper)
	f.Voice = apply(voiceRules, raw, upper)
	f.Mood = apply(moodRules, raw, upper)
	f.Case = apply(caseRules, raw, upper)

	for _, r := range tenseRules {
		matched := false
		for _, m := range r.any {
			if m.matches(raw, upper) {
				matched = true
				break
			}
		}
		if matched {
			f.Tense = r.tense
			f.Aspect = r.aspect
			break
		}
	}

	return f
}
