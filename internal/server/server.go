package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/raagalabs/carnaticguru/config"
	core "github.com/raagalabs/carnaticguru/internal/agent/core"
	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/lesson"
	"github.com/raagalabs/carnaticguru/internal/router"
	"github.com/raagalabs/carnaticguru/internal/store"
)

// Run wires all dependencies and serves the API until the listener fails.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	dsn, err := cfg.Databases.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}

	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	if err := cfg.Lesson.Validate(); err != nil {
		return err
	}
	doc, err := lesson.Load(cfg.Lesson.Path)
	if err != nil {
		return fmt.Errorf("load lesson document: %w", err)
	}
	var searcher lesson.Searcher = lesson.NewRetriever(doc, cfg.Lesson)
	if cfg.Databases.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Databases.Redis.Addr(),
			Password: cfg.Databases.Redis.Password,
			DB:       cfg.Databases.Redis.DB,
		})
		searcher = lesson.NewCachedRetriever(searcher, rdb, cfg.Lesson.CacheTTL)
	}

	tele := telemetry.New(cfg.Telemetry)
	provider, err := core.NewLLMProvider(cfg.LLM)
	if err != nil {
		return err
	}
	agents := core.NewAgents(cfg, provider, tele, searcher)
	orch := core.NewOrchestrator(cfg, router.New(cfg.Router), agents, st, tele)

	directory := newUserDirectory(st)
	api := e.Group("/api")
	(&UsersHandler{Directory: directory}).Register(api)
	(&QueryHandler{
		Directory: directory,
		Processor: orch,
		Logger:    log.New(log.Writer(), "[QUERY] ", log.LstdFlags),
	}).Register(api)
	(&SessionsHandler{
		Directory: directory,
		Store:     st,
		AppName:   cfg.General.AppName,
	}).Register(api)
	(&OpsHandler{Telemetry: tele}).Register(api)

	return e.Start(cfg.Server.Address)
}
