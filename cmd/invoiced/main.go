package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoice-renamer/internal/async"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/core"
	"github.com/joseph-ayodele/invoice-renamer/internal/ingest"
	"github.com/joseph-ayodele/invoice-renamer/internal/naming"
	"github.com/joseph-ayodele/invoice-renamer/internal/pdftext"
	repo "github.com/joseph-ayodele/invoice-renamer/internal/repository"
	"github.com/joseph-ayodele/invoice-renamer/internal/server"
)

func main() {
	// Logger
	zl, _ := zap.NewProduction()
	defer zl.Sync()
	log := zl.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if len(cfg.Ingest.Roots) == 0 {
		log.Fatal("WATCH_DIRS env var is required")
	}

	// components log through slog like the rest of the tree
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, false, logger)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer server.CloseDB(db, logger)
	log.Infow("DB health OK")

	filesRepo := repo.NewDocumentFileRepository(db, logger)
	jobsRepo := repo.NewExtractJobRepository(db, logger)
	invoicesRepo := repo.NewInvoiceRepository(db, logger)

	decoder := pdftext.NewExtractor(pdftext.Config{Validate: cfg.PDF.Validate, MaxPages: cfg.PDF.MaxPages}, logger)
	processor := core.NewProcessor(logger, decoder, filesRepo, jobsRepo, invoicesRepo, core.Options{
		Rename: cfg.Naming.Rename,
		Naming: naming.Options{MaxLength: cfg.Naming.MaxLength},
	})
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
	)
	ingestor := ingest.NewFSIngestor(filesRepo, logger)

	// gRPC health + reflection
	srv := server.New(zl)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Errorw("grpc serve", "error", err)
			stop()
		}
	}()
	go srv.Monitor(ctx, 30*time.Second, cfg.Database.DialTimeout, func(ctx context.Context) error {
		return repo.HealthCheck(ctx, db, 0, logger)
	})

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.Roots,
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
		SkipHidden:  true,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("watcher: %v", err)
	}
	log.Infow("watching", "roots", cfg.Ingest.Roots, "grpc_addr", cfg.Server.GRPCAddr)

loop:
	for {
		select {
		case path, ok := <-events:
			if !ok {
				break loop
			}
			enqueue(ctx, log, ingestor, queue, path)
		case err, ok := <-errs:
			if ok {
				log.Warnw("watcher error", "error", err)
			}
		case <-ctx.Done():
			break loop
		}
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	srv.Stop()
	log.Info("stopped.")
}

// enqueue registers path and queues it unless its content was seen before;
// renamed files come back through the watcher with an already known hash.
func enqueue(ctx context.Context, log *zap.SugaredLogger, ingestor *ingest.FSIngestor, queue *async.ProcessorQueue, path string) {
	res, err := ingestor.IngestPath(ctx, path)
	if err != nil {
		log.Warnw("ingest failed", "path", path, "error", err)
		return
	}
	if res.Deduplicated {
		log.Debugw("skipping known content", "path", path, "file_id", res.FileID)
		return
	}
	id, err := uuid.Parse(res.FileID)
	if err != nil {
		log.Errorw("bad file id", "file_id", res.FileID, "error", err)
		return
	}
	if err := queue.Enqueue(ctx, async.Job{FileID: id, Path: path, TraceID: uuid.NewString()}); err != nil {
		log.Warnw("enqueue failed", "path", path, "error", err)
	}
}
