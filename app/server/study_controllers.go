package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yaseen-research/codex/app/common"
	"github.com/yaseen-research/codex/app/research"
)

func (ct *CodexController) GetTranslations(c echo.Context) error {
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	trs, err := ct.store.Translations(c.Request().Context(), loc)
	if err != nil {
		return err
	}
	if trs == nil {
		trs = []research.Translation{}
	}
	return c.JSON(http.StatusOK, trs)
}

func (ct *CodexController) AddTranslation(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var tr research.Translation
	if err := c.Bind(&tr); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid translation")
	}
	saved, err := ct.store.AddTranslation(c.Request().Context(), loc, tr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "translation": saved})
}

func (ct *CodexController) ReplaceTranslations(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var trs []research.Translation
	if err := c.Bind(&trs); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid translation list")
	}
	saved, err := ct.store.ReplaceTranslations(c.Request().Context(), loc, trs)
	if err != nil {
		return err
	}
	if saved == nil {
		saved = []research.Translation{}
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "translations": saved})
}

// DeleteTranslation reports success whether or not the id was present, so
// repeated deletes from a stale client view stay harmless.
func (ct *CodexController) DeleteTranslation(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	if _, err := ct.store.DeleteTranslation(c.Request().Context(), loc, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (ct *CodexController) GetConnections(c echo.Context) error {
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	conns, err := ct.store.Connections(c.Request().Context(), loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conns)
}

func (ct *CodexController) SetConnections(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	_, loc, err := ct.verseByRef(c)
	if err != nil {
		return err
	}
	var conns research.Connections
	if err := c.Bind(&conns); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid connections")
	}
	saved, err := ct.store.SetConnections(c.Request().Context(), loc, conns)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "connections": saved})
}

// GetSavedPatterns returns the pattern library keyed by id.
func (ct *CodexController) GetSavedPatterns(c echo.Context) error {
	patterns, err := ct.store.SavedPatterns(c.Request().Context())
	if err != nil {
		return err
	}
	byID := make(map[string]research.SavedPattern, len(patterns))
	for _, p := range patterns {
		byID[p.ID] = p
	}
	return c.JSON(http.StatusOK, byID)
}

func (ct *CodexController) SavePattern(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	var p research.SavedPattern
	if err := c.Bind(&p); err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid pattern")
	}
	saved, err := ct.store.SavePattern(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "id": saved.ID})
}

func (ct *CodexController) GetSavedPattern(c echo.Context) error {
	p, found, err := ct.store.SavedPattern(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return common.NewUserVisibleError(http.StatusNotFound, "pattern not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (ct *CodexController) DeleteSavedPattern(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	deleted, err := ct.store.DeleteSavedPattern(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return common.NewUserVisibleError(http.StatusNotFound, "pattern not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (ct *CodexController) GetTags(c echo.Context) error {
	tags, err := ct.store.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (ct *CodexController) GetTag(c echo.Context) error {
	def, found, err := ct.store.Tag(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	if !found {
		return common.NewUserVisibleError(http.StatusNotFound, "tag not found")
	}
	return c.JSONBlob(http.StatusOK, def)
}

// PutTag stores the request body verbatim as the tag definition. Tag
// definitions are free-form client documents, so they are only checked
// for being valid JSON.
func (ct *CodexController) PutTag(c echo.Context) error {
	if err := ct.requireWritable(); err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid tag definition")
	}
	if !json.Valid(body) {
		return common.NewUserVisibleError(http.StatusBadRequest, "invalid tag definition")
	}
	if err := ct.store.SetTag(c.Request().Context(), c.Param("name"), json.RawMessage(body)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "name": c.Param("name")})
}
