package main

import (
	"context"
	"log"
	"time"

	"law-rag-platform/internal/ai"
	"law-rag-platform/internal/config"
	"law-rag-platform/internal/logger"
	"law-rag-platform/internal/queue"
	"law-rag-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	// External capabilities
	qdrantClient, err := config.NewQdrantClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Qdrant:", err)
	}
	defer qdrantClient.Close()

	denseEncoder, err := ai.NewDenseEncoder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize dense encoder:", err)
	}
	defer denseEncoder.Close()

	sidecarTimeout := time.Duration(cfg.SidecarTimeout) * time.Second
	sparseEncoder := services.NewSparseEncoderClient(cfg.SparseEncoderURL, sidecarTimeout)

	ingestion := services.NewIngestionPipeline(
		services.NewPDFService(cfg.MaxFileSize),
		services.NewSegmenter(cfg.MinPreambleLen),
		services.NewChunkBuilder(cfg.MaxChunkTokens, cfg.CharsPerToken),
		denseEncoder,
		sparseEncoder,
		services.NewQdrantStore(qdrantClient),
	)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Ingestion is I/O bound on model calls; a few workers are plenty and
	// keep embedding rate limits manageable.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"ingestion": 3,
				"default":   1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(ingestion)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestLaw, processor.ProcessIngestLaw)

	logger.Info("worker starting", "redis", redisOpt.Addr, "concurrency", 4)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
