package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"law-rag-platform/internal/ai"
	"law-rag-platform/internal/config"
	"law-rag-platform/internal/logger"
	"law-rag-platform/internal/telemetry"
	"law-rag-platform/middleware"
	"law-rag-platform/routes"
	"law-rag-platform/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer("law-rag-platform")
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// External stores
	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	qdrantClient, err := config.NewQdrantClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Qdrant:", err)
	}
	defer qdrantClient.Close()

	// Model capabilities
	ctx := context.Background()

	denseEncoder, err := ai.NewDenseEncoder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize dense encoder:", err)
	}
	defer denseEncoder.Close()

	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize generator:", err)
	}
	defer generator.Close()

	sidecarTimeout := time.Duration(cfg.SidecarTimeout) * time.Second
	sparseEncoder := services.NewSparseEncoderClient(cfg.SparseEncoderURL, sidecarTimeout)
	reranker := services.NewRerankerClient(cfg.RerankerURL, cfg.RerankerModel, sidecarTimeout)

	// Core services
	store := services.NewQdrantStore(qdrantClient)
	sessions := services.NewSessionService(redisClient, cfg.SessionTTL)
	answerCache := services.NewAnswerCache(redisClient, cfg.AnswerCacheTTL)

	ingestion := services.NewIngestionPipeline(
		services.NewPDFService(cfg.MaxFileSize),
		services.NewSegmenter(cfg.MinPreambleLen),
		services.NewChunkBuilder(cfg.MaxChunkTokens, cfg.CharsPerToken),
		denseEncoder,
		sparseEncoder,
		store,
	)

	queryPipeline := services.NewQueryPipeline(
		denseEncoder, sparseEncoder, store, reranker, generator, answerCache,
		services.QueryPipelineConfig{
			PrefetchLimit:  cfg.HybridPrefetchLimit,
			RerankTopK:     cfg.RerankTopK,
			EmbeddingModel: cfg.EmbeddingsModel,
			RerankerModel:  cfg.RerankerModel,
			LLMModel:       cfg.LLMModel,
		},
	)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", routes.HandleHealth(redisClient, store, sparseEncoder, reranker))

	api := router.Group("/api/v1")
	{
		api.POST("/query", routes.HandleQuery(queryPipeline, sessions, metrics))
		api.POST("/ingest", routes.HandleIngestLaw(cfg, ingestion, metrics))
		api.POST("/ingest/async", routes.HandleAsyncIngestLaw(cfg, queueClient))

		api.GET("/laws", routes.HandleListLaws(store))
		api.GET("/laws/:country", routes.HandleGetLaw(store))
		api.DELETE("/laws/:country", routes.HandleDeleteLaw(store))
		api.POST("/laws/:country/reset", routes.HandleResetLaw(store, denseEncoder.Dimension()))

		api.POST("/sessions", routes.HandleCreateSession(sessions))
		api.GET("/sessions/:id", routes.HandleGetSession(sessions))
		api.DELETE("/sessions/:id", routes.HandleDeleteSession(sessions))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
