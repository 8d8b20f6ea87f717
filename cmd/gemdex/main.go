package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/config"
	"github.com/jewelux/gemdex/internal/db"
	dbRedis "github.com/jewelux/gemdex/internal/db/redis"
	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/index"
	"github.com/jewelux/gemdex/internal/lexical"
	logpkg "github.com/jewelux/gemdex/internal/logger"
	"github.com/jewelux/gemdex/internal/metrics"
	assetsrepo "github.com/jewelux/gemdex/internal/repository/assets"
	catalogrepo "github.com/jewelux/gemdex/internal/repository/catalog"
	"github.com/jewelux/gemdex/internal/repository/embcache"
	chiTransport "github.com/jewelux/gemdex/internal/transport/chi"
	openaiTransport "github.com/jewelux/gemdex/internal/transport/openai"
	"github.com/jewelux/gemdex/internal/transport/rerank"
	healthuc "github.com/jewelux/gemdex/internal/usecase/health"
	searchuc "github.com/jewelux/gemdex/internal/usecase/search"
	tagsuc "github.com/jewelux/gemdex/internal/usecase/tags"
	"github.com/jewelux/gemdex/internal/version"
)

func main() {
	// .env first, then YAML config by ENV
	_ = godotenv.Load()
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gemdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog", cfg.Catalog.Path),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Catalog and lexical model: loaded once, read-only for the process
	// lifetime.
	catalog, err := catalogrepo.Load(cfg.Catalog.Path, logger)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	lexModel := lexical.Build(catalog.Descriptions())
	logger.Info("Catalog loaded",
		zap.Int("items", catalog.Size()),
		zap.Int("skipped", catalog.Skipped()),
	)

	photoIdx, err := index.Load(cfg.Index.PhotoPath, cfg.Index.Dimensions)
	if err != nil {
		logger.Fatal("Failed to load photo index", zap.Error(err))
	}
	if err := checkIndexAlignment("photo", photoIdx.Size(), catalog.Size()); err != nil {
		logger.Fatal("Photo index does not match catalog", zap.Error(err))
	}

	var sketchIdx searchuc.VectorIndex
	if cfg.Index.SketchPath != "" {
		idx, err := index.Load(cfg.Index.SketchPath, cfg.Index.Dimensions)
		if err != nil {
			logger.Fatal("Failed to load sketch index", zap.Error(err))
		}
		if err := checkIndexAlignment("sketch", idx.Size(), catalog.Size()); err != nil {
			logger.Fatal("Sketch index does not match catalog", zap.Error(err))
		}
		sketchIdx = idx
		logger.Info("Sketch index loaded", zap.Int("rows", idx.Size()))
	} else {
		logger.Info("Sketch index not configured, sketch search disabled")
	}

	ctx := context.Background()

	// Optional embedding cache backend
	var store db.Store
	if cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache")
	}

	embedder := buildEmbedder(cfg, store, logger)

	svc := searchuc.New(catalog, photoIdx, sketchIdx, lexModel, embedder).
		WithWeights(searchuc.Weights{
			Visual:  cfg.Fusion.VisualWeight,
			Lexical: cfg.Fusion.LexicalWeight,
		}).
		WithCandidateK(cfg.Index.CandidateK).
		WithRerankPool(cfg.Fusion.RerankPool)

	if cfg.Catalog.AssetsDir != "" {
		svc.WithAssets(assetsrepo.New(cfg.Catalog.AssetsDir))
	}

	if cfg.Refiner.Enabled {
		svc.WithExtractor(openaiTransport.NewRefiner(&openaiTransport.RefinerConfig{
			APIKey:  cfg.Refiner.APIKey,
			BaseURL: cfg.Refiner.BaseURL,
			Model:   cfg.Refiner.Model,
			Logger:  logger,
		}))
		logger.Info("Handwriting refiner enabled", zap.String("model", cfg.Refiner.Model))
	}

	// Reranker is feature-detected once at startup. A dead scoring service
	// means fusion output is the final ranking for the process lifetime.
	var reranker *rerank.Client
	if cfg.Reranker.Enabled {
		client := rerank.New(cfg.Reranker.BaseURL, cfg.Reranker.Model,
			time.Duration(cfg.Reranker.TimeoutSec)*time.Second)

		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := client.HealthCheck(probeCtx)
		cancel()
		if err != nil {
			logger.Warn("Reranker unavailable, continuing without reranking",
				zap.Error(fmt.Errorf("%w: %w", domain.ErrRerankerUnavailable, err)))
		} else {
			reranker = client
			svc.WithReranker(client)
			logger.Info("Reranker enabled", zap.String("model", cfg.Reranker.Model))
		}
	}

	tagsSvc := tagsuc.New(catalog)

	var rerankChecker healthuc.RerankChecker
	if reranker != nil {
		rerankChecker = reranker
	}
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(catalog, newEmbeddingHealthChecker(embedder), rerankChecker, cachePinger)

	server := chiTransport.NewServer(svc, tagsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// checkIndexAlignment verifies that a vector index shares the catalog's row
// identifier space. Row counts must match exactly: a divergent index would
// resolve every in-range id to the wrong item.
func checkIndexAlignment(name string, indexRows, catalogRows int) error {
	if indexRows != catalogRows {
		return fmt.Errorf("%w: %s index has %d rows, catalog has %d",
			domain.ErrIndexCorpusMismatch, name, indexRows, catalogRows)
	}
	return nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI provider -> cache.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:      cfg.Embedding.APIKey,
		BaseURL:     cfg.Embedding.BaseURL,
		TextModel:   cfg.Embedding.TextModel,
		ImageModel:  cfg.Embedding.ImageModel,
		SketchModel: cfg.Embedding.SketchModel,
		Dimensions:  cfg.Embedding.Dimensions,
		Logger:      logger,
	})
	logger.Info("Embedder created",
		zap.String("text_model", cfg.Embedding.TextModel),
		zap.String("image_model", cfg.Embedding.ImageModel),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	if store == nil {
		return base
	}
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger).
		WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
