package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/mertcetin/docbase/internal/config"
	"github.com/mertcetin/docbase/internal/database"
	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/embedding"
	"github.com/mertcetin/docbase/internal/llm"
	"github.com/mertcetin/docbase/internal/queue"
	"github.com/mertcetin/docbase/internal/queue/workers"
	"github.com/mertcetin/docbase/internal/rag"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gw := llm.NewGateway(cfg.LLM)
	store := vectorstore.NewPgStore(db, cfg.Embedding.Dimensions)
	embedSvc := embedding.NewService(gw,
		cfg.Embedding.Provider,
		cfg.Embedding.Model,
		cfg.Embedding.Dimensions,
		cfg.Ingest.EmbedWorkers,
	)
	ingestor := rag.NewIngestor(document.NewPDFExtractor(), embedSvc, store)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()
	ingestWorker := workers.NewIngestWorker(ingestor)
	registry.Register(queue.TypeDocumentIngest, asynq.HandlerFunc(ingestWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
