package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/yaseen-research/codex/app/common"
	"github.com/yaseen-research/codex/app/config"
	"github.com/yaseen-research/codex/app/corpus"
	"github.com/yaseen-research/codex/app/index"
	"github.com/yaseen-research/codex/app/masaq"
	"github.com/yaseen-research/codex/app/morphology"
	"github.com/yaseen-research/codex/app/notes"
	"github.com/yaseen-research/codex/app/pattern"
	"github.com/yaseen-research/codex/app/research"
	"github.com/yaseen-research/codex/app/search"
)

// CodexController owns the query-engine snapshot and the collaborator
// services. The snapshot is swapped atomically on reindex so readers
// never observe a half-built index.
type CodexController struct {
	conf      *config.CodexConfig
	engine    atomic.Pointer[search.Service]
	store     research.Store
	notes     *notes.Service
	respCache *cache.Cache
}

func NewCodexController(svc *search.Service, store research.Store, ns *notes.Service, conf *config.CodexConfig) *CodexController {
	ct := &CodexController{
		conf:      conf,
		store:     store,
		notes:     ns,
		respCache: cache.New(5*time.Minute, 10*time.Minute),
	}
	ct.engine.Store(svc)
	return ct
}

// Engine returns the current corpus/index snapshot.
func (ct *CodexController) Engine() *search.Service {
	return ct.engine.Load()
}

// Reindex reloads the corpus from disk, rebuilds every derived index and
// swaps the snapshot in. Called after out-of-band corpus mutation.
func (ct *CodexController) Reindex(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	corp, err := corpus.LoadFile(ct.conf.Path(ct.conf.CorpusFile))
	if err != nil {
		return common.NewUserVisibleError(http.StatusInternalServerError, "corpus reload failed")
	}
	old := ct.Engine()
	ct.engine.Store(search.New(corp, index.Build(corp), old.Masaq()))
	ct.respCache.Flush()
	return c.JSON(http.StatusOK, map[string]any{"success": true, "verses": corp.Len()})
}

func (ct *CodexController) requireWritable() error {
	if ct.conf.ReadOnly {
		return common.NewUserVisibleError(http.StatusForbidden, "instance is read-only")
	}
	return nil
}

func (ct *CodexController) limit(c echo.Context, fallback int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > ct.conf.MaxLimit {
		return ct.conf.MaxLimit
	}
	return n
}

func parseVerseRef(ref string) (corpus.Location, error) {
	s, a, found := strings.Cut(ref, ":")
	if found {
		surah, err1 := strconv.Atoi(s)
		ayah, err2 := strconv.Atoi(a)
		if err1 == nil && err2 == nil {
			return corpus.Location{Surah: surah, Ayah: ayah}, nil
		}
	}
	return corpus.Location{}, common.NewUserVisibleError(http.StatusBadRequest, "invalid verse reference")
}

func intParam(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, common.NewUserVisibleError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return n, nil
}

// searchResponse is the envelope shared by all search endpoints: the
// result list plus the full match count, which may exceed len(results).
type searchResponse struct {
	Results []search.Result `json:"results"`
	Query   any             `json:"query"`
	Type    string          `json:"type"`
	Count   int             `json:"count"`
}

func (ct *CodexController) searchJSON(c echo.Context, kind string, query any, res search.Results) error {
	if res.Items == nil {
		res.Items = []search.Result{}
	}
	return c.JSON(http.StatusOK, searchResponse{
		Results: res.Items,
		Query:   query,
		Type:    kind,
		Count:   res.TotalCount,
	})
}

// cachedSearch memoizes the linear-scan queries, keyed by the request
// URI. The cache is flushed on reindex.
func (ct *CodexController) cachedSearch(c echo.Context, run func() search.Results) search.Results {
	key := c.Request().URL.RequestURI()
	if hit, found := ct.respCache.Get(key); found {
		return hit.(search.Results)
	}
	res := run()
	ct.respCache.Set(key, res, cache.DefaultExpiration)
	return res
}

func (ct *CodexController) GetVerses(c echo.Context) error {
	corp := ct.Engine().Corpus()
	start, _ := strconv.Atoi(c.QueryParam("start"))
	if start < 0 {
		start = 0
	}
	limit := ct.limit(c, 50)

	var verses []*corpus.Verse
	for i := start; i < corp.Len() && len(verses) < limit; i++ {
		verses = append(verses, corp.At(i))
	}
	if verses == nil {
		verses = []*corpus.Verse{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"verses": verses,
		"total":  corp.Len(),
		"start":  start,
		"limit":  limit,
	})
}

func (ct *CodexController) GetVerse(c echo.Context) error {
	surah, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	ayah, err := intParam(c, "ayah")
	if err != nil {
		return err
	}
	v := ct.Engine().Corpus().Verse(surah, ayah)
	if v == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (ct *CodexController) GetVerseByIndex(c echo.Context) error {
	i, err := intParam(c, "index")
	if err != nil {
		return err
	}
	v := ct.Engine().Corpus().At(i)
	if v == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (ct *CodexController) GetSurahs(c echo.Context) error {
	return c.JSON(http.StatusOK, ct.Engine().Corpus().SurahSummaries())
}

func (ct *CodexController) GetSurah(c echo.Context) error {
	number, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	verses := ct.Engine().Corpus().Surah(number)
	if len(verses) == 0 {
		return common.NewUserVisibleError(http.StatusNotFound, "surah not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"surah":  verses[0].Surah,
		"verses": verses,
	})
}

func (ct *CodexController) GetRoots(c echo.Context) error {
	return c.JSON(http.StatusOK, ct.Engine().Indexes().Roots())
}

func (ct *CodexController) GetMorphPatterns(c echo.Context) error {
	return c.JSON(http.StatusOK, ct.Engine().Indexes().MorphPatterns())
}

func (ct *CodexController) GetSyntaxPatterns(c echo.Context) error {
	return c.JSON(http.StatusOK, ct.Engine().Indexes().SyntaxPatterns())
}

func (ct *CodexController) Search(c echo.Context) error {
	query := c.QueryParam("q")
	kind := c.QueryParam("type")
	limit := ct.limit(c, ct.conf.DefaultLimit)

	res := ct.cachedSearch(c, func() search.Results {
		if kind == "root" {
			return ct.Engine().SearchByRoot(query, limit)
		}
		return ct.Engine().SearchText(query, limit)
	})
	if kind != "root" {
		kind = "text"
	}
	return ct.searchJSON(c, kind, query, res)
}

func (ct *CodexController) SearchRoots(c echo.Context) error {
	root := c.QueryParam("root")
	limit := ct.limit(c, 200)
	res := ct.Engine().SearchRootIndexed(root, limit)
	return ct.searchJSON(c, "root", root, res)
}

func (ct *CodexController) SearchMorphology(c echo.Context) error {
	limit := ct.limit(c, ct.conf.DefaultLimit)
	if patternID := c.QueryParam("pattern_id"); patternID != "" {
		res := ct.Engine().SearchMorphPattern(patternID, limit)
		return ct.searchJSON(c, "morphology", patternID, res)
	}
	query := c.QueryParam("q")
	res := ct.cachedSearch(c, func() search.Results {
		return ct.Engine().SearchMorphologyFreeText(query, limit)
	})
	return ct.searchJSON(c, "morphology", query, res)
}

func (ct *CodexController) SearchSyntax(c echo.Context) error {
	limit := ct.limit(c, ct.conf.DefaultLimit)
	if patternID := c.QueryParam("pattern_id"); patternID != "" {
		res := ct.Engine().SearchSyntaxPattern(patternID, limit)
		return ct.searchJSON(c, "syntax", patternID, res)
	}
	query := c.QueryParam("q")
	res := ct.cachedSearch(c, func() search.Results {
		return ct.Engine().SearchSyntaxFreeText(query, limit)
	})
	return ct.searchJSON(c, "syntax", query, res)
}

type patternWordRequest struct {
	pattern.Spec
	Limit int `json:"limit"`
}

func (ct *CodexController) SearchPatternWord(c echo.Context) error {
	var req patternWordRequest
	if err := c.Bind(&req); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid pattern spec")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > ct.conf.MaxLimit {
		limit = ct.conf.MaxLimit
	}
	res := ct.Engine().SearchStructuralPattern(req.Spec, limit)
	return ct.searchJSON(c, "pattern_word", req.Spec, res)
}

func (ct *CodexController) SearchVerbForms(c echo.Context) error {
	filter := search.VerbFilter{
		Form:   c.QueryParam("form"),
		Person: c.QueryParam("person"),
		Number: c.QueryParam("number"),
		Gender: c.QueryParam("gender"),
		Voice:  c.QueryParam("voice"),
		Tense:  c.QueryParam("tense"),
	}
	limit := ct.limit(c, 50)
	res := ct.cachedSearch(c, func() search.Results {
		return ct.Engine().SearchVerbForms(filter, limit)
	})
	return ct.searchJSON(c, "verb_forms", filter, res)
}

func (ct *CodexController) SearchMorphologyAdvanced(c echo.Context) error {
	filter := masaq.Filter{
		MorphTag:      c.QueryParam("morph_tag"),
		SyntacticRole: c.QueryParam("syntactic_role"),
		CaseMood:      c.QueryParam("case_mood"),
	}
	limit := ct.limit(c, 50)
	res := ct.cachedSearch(c, func() search.Results {
		return ct.Engine().SearchMorphologyAdvanced(filter, limit)
	})
	return ct.searchJSON(c, "masaq_morphology", filter, res)
}

func (ct *CodexController) GetMasaqMorphology(c echo.Context) error {
	surah, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	ayah, err := intParam(c, "ayah")
	if err != nil {
		return err
	}
	ds := ct.Engine().Masaq()
	if ds == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "morphology dataset not loaded")
	}
	words := ds.Verse(surah, ayah)
	if words == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "no morphology data for this verse")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"surah":      surah,
		"ayah":       ayah,
		"morphology": words,
	})
}

func (ct *CodexController) GetMorphologyFacets(c echo.Context) error {
	ds := ct.Engine().Masaq()
	if ds == nil {
		return c.JSON(http.StatusOK, masaq.Facets{})
	}
	return c.JSON(http.StatusOK, ds.Facets())
}

func (ct *CodexController) GetParsedMorphology(c echo.Context) error {
	surah, err := intParam(c, "surah")
	if err != nil {
		return err
	}
	ayah, err := intParam(c, "ayah")
	if err != nil {
		return err
	}
	v := ct.Engine().Corpus().Verse(surah, ayah)
	if v == nil {
		return common.NewUserVisibleError(http.StatusNotFound, "verse not found")
	}

	type parsedSegment struct {
		Original corpus.Segment      `json:"original"`
		Parsed   morphology.Features `json:"parsed"`
	}
	type parsedToken struct {
		ID       int             `json:"id,omitempty"`
		Form     string          `json:"form,omitempty"`
		Segments []parsedSegment `json:"segments"`
	}

	tokens := make([]parsedToken, 0, len(v.Tokens))
	for _, tok := range v.Tokens {
		pt := parsedToken{ID: tok.ID, Form: tok.Form, Segments: []parsedSegment{}}
		for _, seg := range tok.Segments {
			pt.Segments = append(pt.Segments, parsedSegment{
				Original: seg,
				Parsed:   morphology.Decode(seg),
			})
		}
		tokens = append(tokens, pt)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"surah":  surah,
		"ayah":   ayah,
		"text":   v.Text,
		"tokens": tokens,
	})
}

func (ct *CodexController) GetStats(c echo.Context) error {
	corp := ct.Engine().Corpus()
	withTokens := 0
	for i := 0; i < corp.Len(); i++ {
		if len(corp.At(i).Tokens) > 0 {
			withTokens++
		}
	}
	stats := map[string]any{
		"total_verses":       corp.Len(),
		"verses_with_tokens": withTokens,
	}
	if ds := ct.Engine().Masaq(); ds != nil {
		stats["masaq_verses"] = ds.Verses()
	}
	if storeStats, err := ct.store.Stats(c.Request().Context()); err == nil {
		stats["total_annotations"] = storeStats.Annotations
		stats["total_hypotheses"] = storeStats.Hypotheses
		stats["total_translations"] = storeStats.Translations
		stats["total_hypothesis_tags"] = storeStats.Tags
	}
	return c.JSON(http.StatusOK, stats)
}

func (ct *CodexController) GetNotes(c echo.Context) error {
	list, err := ct.notes.List()
	if err != nil {
		return err
	}
	if list == nil {
		list = []notes.Note{}
	}
	return c.JSON(http.StatusOK, map[string]any{"notes": list})
}

func (ct *CodexController) GetNoteContent(c echo.Context) error {
	rel := c.QueryParam("path")
	if rel == "" {
		return common.NewUserVisibleError(http.StatusBadRequest, "path required")
	}
	content, err := ct.notes.Content(rel)
	if err != nil {
		return common.NewUserVisibleError(http.StatusNotFound, "note not found")
	}
	return c.JSON(http.StatusOK, content)
}

func (ct *CodexController) SearchLibrary(c echo.Context) error {
	query := c.QueryParam("q")
	limit := ct.limit(c, 30)
	hits, err := ct.notes.SearchLibrary(query, limit)
	if err != nil {
		return err
	}
	if hits == nil {
		hits = []notes.LibraryHit{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"results": hits,
		"query":   query,
		"type":    "library",
		"count":   len(hits),
	})
}
