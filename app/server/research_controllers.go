package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yaseen-research/codex/app/common"
	"github.com/yaseen-research/codex/app/corpus"
	"github.com/yaseen-research/codex/app/research"
)

func (ct *CodexController) verseByRef(c echo.Context) (*corpus.Verse, corpus.Location, error) {
	loc, err := parseVerseRef(c.Param("ref"))
	if err != nil {
		return nil, loc, err
	}
	v := ct.Engine().Corpus().Verse(loc.Surah, loc.Ayah)
	if v == nil {
		return nil, loc, common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}
	return v, loc, nil
}

func (ct *CodexController) GetAnnotations(c echo.Context) error {
	surah, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	ayah, err := intParam(c, "ayah")
	if err != nil {
		return err
	}
	loc := corpus.Location{Surah: surah, Ayah: ayah}
	if ct.Engine().Corpus().Verse(loc.Surah, loc.Ayah) == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}
	annotations, err := ct.store.Annotations(c.Request().Context(), loc)
	if err != nil {
		return err
	}
	if annotations == nil {
		annotations = []research.Annotation{}
	}
	return c.JSON(http.StatusOK, annotations)
}

func (ct *CodexController) AddAnnotation(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	surah, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	ayah, err := intParam(c, "ayah")
	if err != nil {
		return err
	}
	loc := corpus.Location{Surah: surah, Ayah: ayah}
	if ct.Engine().Corpus().Verse(loc.Surah, loc.Ayah) == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}
	var a research.Annotation
	if err := c.Bind(&a); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid annotation")
	}
	saved, err := ct.store.AddAnnotation(c.Request().Context(), loc, a)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "annotation": saved})
}

func (ct *CodexController) GetHypotheses(c echo.Context) error {
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	hyps, err := ct.store.Hypotheses(c.Request().Context(), loc)
	if err != nil {
		return err
	}
	if hyps == nil {
		hyps = []research.Hypothesis{}
	}
	return c.JSON(http.StatusOK, hyps)
}

func (ct *CodexController) AddHypothesis(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var h research.Hypothesis
	if err := c.Bind(&h); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid hypothesis")
	}
	saved, err := ct.store.AddHypothesis(c.Request().Context(), loc, h)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "hypothesis": saved})
}

func (ct *CodexController) UpdateHypothesis(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var upd research.HypothesisUpdate
	if err := c.Bind(&upd); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid update")
	}
	updated, found, err := ct.store.UpdateHypothesis(c.Request().Context(), loc, c.Param("id"), upd)
	if err != nil {
		return err
	}
	if !found {
		return common.NewUserVisibleError(http.StatusNotFound, "hypothesis not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "hypothesis": updated})
}

func (ct *CodexController) DeleteHypothesis(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	deleted, err := ct.store.DeleteHypothesis(c.Request().Context(), loc, c.Param("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return common.NewUserVisibleError(http.StatusNotFound, "hypothesis not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (ct *CodexController) GetPronouns(c echo.Context) error {
	v, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	hyps, err := ct.store.Hypotheses(c.Request().Context(), loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, research.BuildPronounReport(v, hyps))
}

// pronounRefRequest mirrors the referent form: a referent hypothesis for
// one detected pronoun plus optional inline evidence.
type pronounRefRequest struct {
	PronounID     string `json:"pronoun_id"`
	TokenID       int    `json:"token_id"`
	SegmentID     int    `json:"segment_id"`
	PronounForm   string `json:"pronoun_form"`
	Referent      string `json:"referent"`
	Status        string `json:"status"`
	Note          string `json:"note"`
	EvidenceNote  string `json:"evidence_note"`
	EvidenceType  string `json:"evidence_type"`
	EvidenceVerse string `json:"evidence_verse"`
}

func (ct *CodexController) AddPronounReference(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	v, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var req pronounRefRequest
	if err := c.Bind(&req); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid pronoun reference")
	}

	meta := research.TargetMeta{TokenID: req.TokenID, SegmentID: req.SegmentID, Form: req.PronounForm}
	for _, p := range research.DetectPronouns(v) {
		if p.PronounID == req.PronounID {
			if meta.TokenID == 0 {
				meta.TokenID = p.TokenID
			}
			if meta.SegmentID == 0 {
				meta.SegmentID = p.SegmentID
			}
			if meta.Form == "" {
				meta.Form = p.Form
			}
			break
		}
	}

	h := research.Hypothesis{
		TargetType: "pronoun",
		TargetID:   req.PronounID,
		TargetMeta: meta,
		Hypothesis: req.Referent,
		Status:     req.Status,
		Note:       req.Note,
	}
	if req.EvidenceNote != "" {
		h.Evidence = []research.Evidence{{
			Type:  req.EvidenceType,
			Note:  req.EvidenceNote,
			Verse: req.EvidenceVerse,
		}}
	}
	saved, err := ct.store.AddHypothesis(c.Request().Context(), loc, h)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "reference": saved})
}
