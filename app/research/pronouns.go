package research

import (
	"fmt"
	"strings"

	"github.com/yaseen-research/codex/app/corpus"
)

// Pronoun is one pronoun-bearing token or segment detected in a verse.
type Pronoun struct {
	PronounID   string `json:"pronoun_id"`
	TokenID     int    `json:"token_id"`
	SegmentID   int    `json:"segment_id,omitempty"`
	Form        string `json:"form,omitempty"`
	POS         string `json:"pos,omitempty"`
	Features    string `json:"features,omitempty"`
	TokenForm   string `json:"token_form,omitempty"`
	SegmentType string `json:"segment_type,omitempty"`
}

// PronounID builds the stable identifier for a pronoun-bearing segment or
// whole token.
func PronounID(tokenID, segmentID int) string {
	if segmentID != 0 {
		return fmt.Sprintf("%d:%d", tokenID, segmentID)
	}
	return fmt.Sprintf("%d", tokenID)
}

// DetectPronouns returns the pronoun candidates of a verse: whole tokens
// tagged PRON plus segment-level pronoun morphemes (suffixes and
// clitics), in reading order.
func DetectPronouns(v *corpus.Verse) []Pronoun {
	if v == nil {
		return nil
	}
	var pronouns []Pronoun
	for _, tok := range v.Tokens {
		if strings.EqualFold(tok.POS, "pron") {
			pronouns = append(pronouns, Pronoun{
				PronounID: PronounID(tok.ID, 0),
				TokenID:   tok.ID,
				Form:      tok.Form,
				POS:       tok.POS,
				Features:  tok.Features,
				TokenForm: tok.Form,
			})
		}
		for _, seg := range tok.Segments {
			isPronoun := strings.EqualFold(seg.POS, "pron") ||
				strings.Contains(strings.ToLower(seg.Features), "pron")
			if !isPronoun {
				continue
			}
			form := seg.Form
			if form == "" {
				form = tok.Form
			}
			pronouns = append(pronouns, Pronoun{
				PronounID:   PronounID(tok.ID, seg.ID),
				TokenID:     tok.ID,
				SegmentID:   seg.ID,
				Form:        form,
				POS:         seg.POS,
				Features:    seg.Features,
				TokenForm:   tok.Form,
				SegmentType: seg.Type,
			})
		}
	}
	return pronouns
}

// PronounReference is a pronoun hypothesis enriched with its evidence
// tally for report rendering.
type PronounReference struct {
	Hypothesis
	PronounForm     string          `json:"pronoun_form,omitempty"`
	EvidenceSummary EvidenceSummary `json:"evidence_summary"`
}

// PronounReport is the full picture of a verse's pronouns: detected
// candidates, stored referent hypotheses and aggregate stats.
type PronounReport struct {
	Verse      corpus.Location    `json:"verse"`
	Text       string             `json:"text"`
	Pronouns   []Pronoun          `json:"pronouns"`
	References []PronounReference `json:"references"`
	Stats      PronounStats       `json:"stats"`
}

type PronounStats struct {
	TotalPronouns      int `json:"total_pronouns"`
	AnnotatedPronouns  int `json:"annotated_pronouns"`
	SupportingEvidence int `json:"supporting_evidence"`
	CounterEvidence    int `json:"counter_evidence"`
}

// BuildPronounReport joins the detected pronouns of a verse with the
// stored hypotheses targeting them.
func BuildPronounReport(v *corpus.Verse, hypotheses []Hypothesis) PronounReport {
	pronouns := DetectPronouns(v)
	byID := make(map[string]Pronoun, len(pronouns))
	for _, p := range pronouns {
		byID[p.PronounID] = p
	}

	report := PronounReport{
		Verse:    v.Location(),
		Text:     v.Text,
		Pronouns: pronouns,
	}
	for _, h := range hypotheses {
		if h.TargetType != "pronoun" {
			continue
		}
		ref := PronounReference{
			Hypothesis:      h,
			PronounForm:     h.TargetMeta.Form,
			EvidenceSummary: SummarizeEvidence(h.Evidence),
		}
		if ref.PronounForm == "" {
			if p, ok := byID[h.TargetID]; ok {
				ref.PronounForm = p.Form
			}
		}
		report.References = append(report.References, ref)
		report.Stats.SupportingEvidence += ref.EvidenceSummary.Supporting
		report.Stats.CounterEvidence += ref.EvidenceSummary.Counter
	}
	report.Stats.TotalPronouns = len(pronouns)
	report.Stats.AnnotatedPronouns = len(report.References)
	return report
}
