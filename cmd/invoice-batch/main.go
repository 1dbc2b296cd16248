package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/core"
	"github.com/joseph-ayodele/invoice-renamer/internal/export"
	"github.com/joseph-ayodele/invoice-renamer/internal/ingest"
	"github.com/joseph-ayodele/invoice-renamer/internal/naming"
	"github.com/joseph-ayodele/invoice-renamer/internal/pdftext"
	repo "github.com/joseph-ayodele/invoice-renamer/internal/repository"
	"github.com/joseph-ayodele/invoice-renamer/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type outcome struct {
	path string
	res  core.Result
	err  error
}

func main() {
	cfg := common.LoadConfig()

	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory to process invoices from (required)")
		rename     = flag.Bool("rename", cfg.Naming.Rename, "rename processed files to the standard invoice name")
		xlsxOut    = flag.String("xlsx", "", "write an XLSX report to this path")
		reportOut  = flag.String("report", "", "write a JSON report to this path ('-' for stdout)")
		workers    = flag.Int("workers", cfg.Ingest.Workers, "number of files processed concurrently")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer server.CloseDB(db, logger)

	filesRepo := repo.NewDocumentFileRepository(db, logger)
	jobsRepo := repo.NewExtractJobRepository(db, logger)
	invoicesRepo := repo.NewInvoiceRepository(db, logger)

	decoder := pdftext.NewExtractor(pdftext.Config{
		Validate: cfg.PDF.Validate,
		MaxPages: cfg.PDF.MaxPages,
	}, logger)
	processor := core.NewProcessor(logger, decoder, filesRepo, jobsRepo, invoicesRepo, core.Options{
		Rename: *rename,
		Naming: naming.Options{MaxLength: cfg.Naming.MaxLength},
	})
	ingestor := ingest.NewFSIngestor(filesRepo, logger)

	logger.Info("starting ingestion", "dir", *dir)
	ingestionResults, stats, err := ingestor.IngestDirectory(ctx, *dir, *skipHidden)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	// one job per distinct content; ingest failures go straight to the report
	var (
		report  export.Report
		pending []outcome
		ids     []uuid.UUID
		seen    = map[uuid.UUID]bool{}
	)
	for _, r := range ingestionResults {
		if r.Err != "" {
			report.AddFailure(filepath.Base(r.SourcePath), r.SourcePath, fmt.Errorf("%s", r.Err))
			continue
		}
		id, err := uuid.Parse(r.FileID)
		if err != nil {
			logger.Error("failed to parse file ID", "file_id", r.FileID, "error", err)
			continue
		}
		if seen[id] {
			logger.Info("skipping duplicate content", "path", r.SourcePath, "file_id", id)
			continue
		}
		seen[id] = true
		pending = append(pending, outcome{path: r.SourcePath})
		ids = append(ids, id)
	}
	logger.Info("ingestion complete",
		"files_queued", len(ids),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	var g errgroup.Group
	g.SetLimit(*workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := processor.ProcessFile(ctx, id)
			pending[i].res, pending[i].err = res, err
			// per-file failures never stop the batch
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range pending {
		if o.err != nil {
			report.AddFailure(filepath.Base(o.path), o.path, o.err)
			continue
		}
		report.AddSuccess(o.path, o.res.RenamedPath, o.res.Record)
	}

	if *xlsxOut != "" {
		b, err := export.WriteXLSX(report)
		if err != nil {
			logger.Error("failed to build XLSX report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, b, 0o644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
	}
	if *reportOut != "" {
		if err := writeJSONReport(*reportOut, report); err != nil {
			logger.Error("failed to write JSON report", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"total", report.Summary.Total,
		"success", report.Summary.Success,
		"failed", report.Summary.Failed)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Total: %d\n", report.Summary.Total)
	fmt.Printf("- Success: %d\n", report.Summary.Success)
	fmt.Printf("- Failed: %d\n", report.Summary.Failed)
	for _, d := range report.Details {
		if d.Status == export.StatusFailed {
			fmt.Printf("  ✗ %s: %s\n", d.FileName, d.Error)
		}
	}
	if *xlsxOut != "" {
		fmt.Printf("- Output: %s\n", *xlsxOut)
	}
}

func writeJSONReport(path string, r export.Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = fmt.Println(string(b))
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
