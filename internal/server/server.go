package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/config"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/rag"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/telemetry"
	openai_provider "github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/provider/openai"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/repository/redis_repository"
)

// Run wires the pipeline and serves the HTTP API until the listener fails.
func Run(cfg *config.Config, addr string) error {
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
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	if err := cfg.LLM.Validate(); err != nil {
		return err
	}
	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return err
	}

	pipeline, err := BuildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	qa := &QAHandler{Pipeline: pipeline, Timeout: cfg.General.DefaultTimeout}
	qa.Register(e.Group("/api"))

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":10010"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// BuildPipeline constructs the full question-answering pipeline from config:
// Postgres vector index, OpenAI provider, optional Redis embedding cache,
// and Prometheus telemetry.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*rag.Pipeline, error) {
	store, err := index.NewPGStore(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	llm := openai_provider.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.Timeout,
	)

	var tele *telemetry.Telemetry
	if cfg.Telemetry.Enabled {
		tele = telemetry.New(prometheus.DefaultRegisterer)
	}

	var cache rag.EmbeddingCache
	if cfg.Storage.Redis.Enabled() {
		client, err := redis_repository.Conn(ctx,
			cfg.Storage.Redis.Host, cfg.Storage.Redis.Port,
			cfg.Storage.Redis.Password, cfg.Storage.Redis.DB,
			cfg.Storage.Redis.Timeout)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		cache = redis_repository.NewEmbeddingCache(client, cfg.LLM.EmbeddingModel)
	}

	planner := rag.NewPlanner(cfg.Retrieval.Dataset, cfg.Retrieval.MinSeason, cfg.Retrieval.MaxSeason)
	retriever := rag.NewRetriever(store, llm, cache, tele, nil)

	var reranker *rag.Reranker
	if cfg.Retrieval.RerankEnabled {
		reranker = rag.NewReranker(llm, cfg.LLM.RerankModel, cfg.Retrieval.RerankMaxChars, tele, nil)
	}

	return rag.NewPipeline(planner, retriever, reranker, llm, cfg.LLM.GenerationModel, cfg.Retrieval, tele, nil), nil
}
