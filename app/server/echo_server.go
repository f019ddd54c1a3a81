package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/yaseen-research/codex/app/common"
	"github.com/yaseen-research/codex/app/config"
)

func StartServer(controller *CodexController, conf *config.CodexConfig, serverConf config.ServerRuntimeConfig) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprintf("%v", he.Message)
			}
		}
		if uve, ok := err.(*common.UserVisibleError); ok {
			code = uve.HttpCode
			msg = uve.Message
		}

		if !c.Response().Committed {
			if jsonErr := c.JSON(code, map[string]string{"error": msg}); jsonErr != nil {
				c.Logger().Error(jsonErr)
			}
		}
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	var identifierExtractor middleware.Extractor
	if serverConf.BehindLoadBalancer {
		identifierExtractor = func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		}
	} else {
		identifierExtractor = func(ctx echo.Context) (string, error) {
			return ctx.Request().RemoteAddr, nil
		}
	}

	if serverConf.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: middleware.DefaultSkipper,
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(serverConf.RateLimit),
					Burst:     3 * serverConf.RateLimit,
					ExpiresIn: 3 * time.Minute,
				},
			),
			IdentifierExtractor: identifierExtractor,
			ErrorHandler: func(c echo.Context, err error) error {
				return c.String(http.StatusForbidden, "Forbidden")
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.String(http.StatusTooManyRequests, "Too Many Requests")
			},
		}))
	}

	if serverConf.GzipLevel != 0 {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: serverConf.GzipLevel, MinLength: 512}))
	}

	if conf.TimeoutSeconds != 0 {
		e.Use(middleware.ContextTimeout(time.Duration(conf.TimeoutSeconds) * time.Second))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogRemoteIP: true,
		LogLatency:  conf.LogLatency,
		HandleError: true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				logger.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Int64("latency_ms", v.Latency.Milliseconds()),
					slog.String("remote_ip", v.RemoteIP),
				)
			} else {
				logger.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
					slog.String("remote_ip", v.RemoteIP),
					slog.Int64("latency_ms", v.Latency.Milliseconds()),
				)
			}
			return nil
		},
	}))

	api := e.Group("/api")

	api.GET("/verses", controller.GetVerses)
	api.GET("/verse/:surah/:ayah", controller.GetVerse)
	api.GET("/verse/index/:index", controller.GetVerseByIndex)
	api.GET("/surahs", controller.GetSurahs)
	api.GET("/surah/:surah", controller.GetSurah)

	api.GET("/roots", controller.GetRoots)
	api.GET("/morph_patterns", controller.GetMorphPatterns)
	api.GET("/syntax_patterns", controller.GetSyntaxPatterns)

	api.GET("/search", controller.Search)
	api.GET("/search/roots", controller.SearchRoots)
	api.GET("/search/morphology", controller.SearchMorphology)
	api.GET("/search/syntax", controller.SearchSyntax)
	api.POST("/search/pattern_word", controller.SearchPatternWord)
	api.GET("/search/verb_forms", controller.SearchVerbForms)
	api.GET("/search/morphology_advanced", controller.SearchMorphologyAdvanced)

	api.GET("/morphology/features", controller.GetMorphologyFacets)
	api.GET("/morphology/parsed/:surah/:ayah", controller.GetParsedMorphology)
	api.GET("/morphology/:surah/:ayah", controller.GetMasaqMorphology)

	api.GET("/stats", controller.GetStats)
	api.GET("/notes", controller.GetNotes)
	api.GET("/notes/content", controller.GetNoteContent)
	api.GET("/library_search", controller.SearchLibrary)

	api.GET("/annotations/:surah/:ayah", controller.GetAnnotations)
	api.POST("/annotations/:surah/:ayah", controller.AddAnnotation)
	api.GET("/hypotheses/:ref", controller.GetHypotheses)
	api.POST("/hypotheses/:ref", controller.AddHypothesis)
	api.PUT("/hypotheses/:ref/:id", controller.UpdateHypothesis)
	api.DELETE("/hypotheses/:ref/:id", controller.DeleteHypothesis)
	api.GET("/pronouns/:ref", controller.GetPronouns)
	api.POST("/pronouns/:ref", controller.AddPronounReference)
	api.PUT("/pronouns/:ref/:id", controller.UpdateHypothesis)
	api.DELETE("/pronouns/:ref/:id", controller.DeleteHypothesis)

	api.GET("/translations/:ref", controller.GetTranslations)
	api.POST("/translations/:ref", controller.AddTranslation)
	api.PUT("/translations/:ref", controller.ReplaceTranslations)
	api.DELETE("/translations/:ref/:id", controller.DeleteTranslation)
	api.GET("/connections/:ref", controller.GetConnections)
	api.POST("/connections/:ref", controller.SetConnections)
	api.GET("/patterns", controller.GetSavedPatterns)
	api.POST("/patterns", controller.SavePattern)
	api.GET("/patterns/:id", controller.GetSavedPattern)
	api.DELETE("/patterns/:id", controller.DeleteSavedPattern)
	api.GET("/tags", controller.GetTags)
	api.GET("/tags/:name", controller.GetTag)
	api.PUT("/tags/:name", controller.PutTag)

	api.POST("/reindex", controller.Reindex)

	addr := fmt.Sprintf("%s:%d", serverConf.Address, serverConf.Port)
	e.Logger.Fatal(e.Start(addr))
}
