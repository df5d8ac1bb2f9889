// Command castellerq runs the question-answering service: it loads
// configuration, wires the provider registry, database pool, vocabulary
// cache, router, generators, retriever and answerer, and serves a small
// HTTP surface (§6).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/internal/answer"
	"github.com/janreigtorra/castellerq/internal/database"
	"github.com/janreigtorra/castellerq/internal/langdetect"
	"github.com/janreigtorra/castellerq/internal/orchestrator"
	"github.com/janreigtorra/castellerq/internal/rag"
	"github.com/janreigtorra/castellerq/internal/router"
	"github.com/janreigtorra/castellerq/internal/sqlcustom"
	"github.com/janreigtorra/castellerq/internal/sqlexec"
	"github.com/janreigtorra/castellerq/internal/telemetry"
	"github.com/janreigtorra/castellerq/internal/vocab"
	"github.com/janreigtorra/castellerq/llm/embedding"
	"github.com/janreigtorra/castellerq/llm/rerank"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger := mustBuildLogger(cfg.Log)
	defer logger.Sync()

	tp := telemetry.Init(telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRate:  cfg.Telemetry.SampleRate,
	}, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("shutdown tracer provider", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Fatal("build metrics", zap.Error(err))
	}

	pool, err := database.Connect(cfg.Database.URL, database.PoolConfig{
		MinConns:            cfg.Pool.Min,
		MaxConns:            cfg.Pool.Max,
		AcquireTimeout:      cfg.Pool.AcquireTimeout,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     10 * time.Minute,
		HealthCheckInterval: 30 * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	registry, err := config.BuildRegistry(cfg, logger)
	if err != nil {
		logger.Fatal("build provider registry", zap.Error(err))
	}

	vocabCache := vocab.New(pool.DB())
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := vocabCache.Reload(startupCtx); err != nil {
		cancel()
		logger.Fatal("load canonical vocabulary", zap.Error(err))
	}
	cancel()

	detector := langdetect.New()

	r, err := router.New(cfg, registry, vocabCache, detector, logger)
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	custom, err := sqlcustom.New(cfg, registry)
	if err != nil {
		logger.Fatal("build custom sql generator", zap.Error(err))
	}
	executor := sqlexec.New(pool, logger)

	embedder := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey: cfg.Provider.OpenAIAPIKey,
		Model:  cfg.LLM.EmbeddingModel,
	})
	var reranker rerank.Provider
	if cfg.RAG.RerankEnabled && cfg.Provider.CohereAPIKey != "" {
		reranker = rerank.NewCohereProvider(rerank.CohereConfig{APIKey: cfg.Provider.CohereAPIKey})
	}
	retriever := rag.New(pool, embedder, reranker, cfg.RAG, logger)

	answerer, err := answer.New(cfg, registry)
	if err != nil {
		logger.Fatal("build answerer", zap.Error(err))
	}

	orch := orchestrator.New(r, custom, executor, retriever, answerer, orchestrator.Config{
		ResultLimitUI:  cfg.RAG.ResultLimitUI,
		ResultLimitLLM: cfg.RAG.ResultLimitLLM,
	}, logger, metrics)

	srv := newServer(cfg.Server, orch, pool, logger)
	runWithGracefulShutdown(srv, cfg.Server.ShutdownTimeout, logger)
}

func mustBuildLogger(cfg config.LogConfig) *zap.Logger {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapCfg.Level = level
	}
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func newServer(cfg config.ServerConfig, orch *orchestrator.Orchestrator, pool *database.PoolManager, logger *zap.Logger) *http.Server {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)

	mux.Get("/healthz", healthHandler(pool))
	mux.Post("/v1/question", questionHandler(orch, logger))
	mux.Post("/v1/route", routeHandler(orch, logger))

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func runWithGracefulShutdown(srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) {
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
