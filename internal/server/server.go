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

	appconfig "github.com/whiskertrack/whiskertrack/config"
	"github.com/whiskertrack/whiskertrack/internal/narrative"
	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/internal/symptoms"
	"github.com/whiskertrack/whiskertrack/models"
	"github.com/whiskertrack/whiskertrack/provider"
)

func Run(cfg *appconfig.Config, addr string) error {
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
	_ = Migrate("file://migrations", dsn, "up", 0)

	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	if err := cfg.Databases.Redis.Validate(); err != nil {
		return err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Databases.Redis.Addr(),
		Password: cfg.Databases.Redis.Password,
		DB:       cfg.Databases.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed (%s): %w", cfg.Databases.Redis.Addr(), err)
	}

	llm, err := provider.NewProvider(provider.OpenAI, cfg.Providers.OpenAI)
	if err != nil {
		return err
	}

	secret := cfg.General.JWTSecret
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (general.jwt_secret)")
	}
	auth := &AuthHandler{Store: st, Secret: []byte(secret)}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	me := api.Group("/me")
	me.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, auth.Secret) })
	me.GET("", func(c echo.Context) error {
		return c.JSON(200, MeResponse{UserID: c.Get("user_id").(string)})
	})

	pipeline := &Pipeline{
		Translator:  symptoms.NewTable(),
		AssumedYear: cfg.Archive.AssumedYear,
		Logger:      log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags),
	}

	ph := &PetsHandler{Store: st}
	ph.Register(api.Group("/pets"), auth.Secret)

	eh := &EventsHandler{Store: st}
	eh.Register(api.Group("/pets"), auth.Secret)

	ah := &ArchivesHandler{Store: st, LLM: llm, Pipeline: pipeline}
	ah.Register(api.Group("/pets"), api.Group("/archives"), auth.Secret)

	dh := &DraftsHandler{Store: st, Rdb: rdb, TTL: cfg.Archive.DraftTTL}
	dh.Register(api.Group("/pets"), auth.Secret)

	ash := &AssistantHandler{Store: st, LLM: llm}
	ash.Register(api.Group("/pets"), auth.Secret)

	sched := &Scheduler{
		Store:       st,
		Rdb:         rdb,
		LLM:         llm,
		RefreshCron: cfg.Archive.RefreshCron,
		Stop:        make(chan struct{}),
	}
	sched.Start()

	if addr == "" {
		addr = cfg.General.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10011"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// Pipeline bundles the narrative transform's collaborators so handlers and
// the scheduler run it identically.
type Pipeline struct {
	Translator  narrative.Translator
	AssumedYear int // 0 means current UTC year
	Logger      *log.Logger
}

// Run executes detect -> sections -> match for one archive render pass.
func (p *Pipeline) Run(text string, events []models.AbnormalEvent, fallback narrative.Language) narrative.Narrative {
	opts := []narrative.SectionOption{narrative.WithFallbackLanguage(fallback)}
	if p.AssumedYear > 0 {
		opts = append(opts, narrative.WithAssumedYear(p.AssumedYear))
	}
	n := narrative.BuildSections(text, opts...)
	m := narrative.Matcher{Translator: p.Translator, Logger: p.Logger}
	out := m.Match(n, events)
	pipelineRuns.WithLabelValues(string(out.Language)).Inc()
	if out.Fallback != "" || out.Sections == nil {
		pipelineFallbacks.Inc()
	}
	return out
}
