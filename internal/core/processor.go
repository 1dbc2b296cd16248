package core

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
	"github.com/joseph-ayodele/invoice-renamer/internal/naming"
	"github.com/joseph-ayodele/invoice-renamer/internal/pdftext"
	"github.com/joseph-ayodele/invoice-renamer/internal/repository"
	"github.com/joseph-ayodele/invoice-renamer/internal/schema"
)

// Options toggles the optional rename stage.
type Options struct {
	Rename bool
	Naming naming.Options
}

// Result is the outcome of one processed file.
type Result struct {
	FileID      uuid.UUID
	JobID       uuid.UUID
	InvoiceID   uuid.UUID
	Record      invoice.Record
	RenamedPath string
}

// Processor coordinates decode (reconstructed pages) then extraction (fields)
// for one ingested file and records every stage on its extract_job.
type Processor struct {
	logger       *slog.Logger
	decoder      pdftext.Decoder
	extractor    *invoice.Extractor
	filesRepo    repository.DocumentFileRepository
	jobsRepo     repository.ExtractJobRepository
	invoicesRepo repository.InvoiceRepository
	opts         Options
}

func NewProcessor(
	logger *slog.Logger,
	decoder pdftext.Decoder,
	filesRepo repository.DocumentFileRepository,
	jobsRepo repository.ExtractJobRepository,
	invoicesRepo repository.InvoiceRepository,
	opts Options,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:       logger,
		decoder:      decoder,
		extractor:    invoice.NewExtractor(logger),
		filesRepo:    filesRepo,
		jobsRepo:     jobsRepo,
		invoicesRepo: invoicesRepo,
		opts:         opts,
	}
}

// ProcessFile runs the pipeline for fileID. Failures after the job is
// started mark it FAILED and are returned; the job ID is set in either case.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (Result, error) {
	res := Result{FileID: fileID}

	file, err := p.filesRepo.GetByID(ctx, fileID)
	if err != nil {
		return res, fmt.Errorf("get file: %w", err)
	}
	ctx = common.WithContentHash(ctx, hex.EncodeToString(file.ContentHash))

	format := constants.MapExtToFormat(file.FileExt)
	if format == "" {
		return res, fmt.Errorf("%w: unsupported format: %s", common.ErrInvalidInput, file.FileExt)
	}

	job, err := p.jobsRepo.Start(ctx, file.ID, format, constants.JobStatusRunning)
	if err != nil {
		return res, err
	}
	res.JobID = job.ID
	logger := loggerFor(ctx, p.logger).With("file_id", file.ID, "job_id", job.ID)

	fail := func(stage string, err error) (Result, error) {
		logger.Error("processor."+stage+".failed", "error", err)
		if ferr := p.jobsRepo.FinishFailure(context.WithoutCancel(ctx), job.ID, err.Error()); ferr != nil {
			logger.Error("processor.job.finish_failed", "error", ferr)
		}
		return res, err
	}

	// 1) decode: reconstructed pages
	pages, err := p.decoder.Decode(ctx, file.SourcePath)
	if err != nil {
		return fail("decode", err)
	}
	if err := p.jobsRepo.FinishDecode(ctx, job.ID, len(pages)); err != nil {
		return fail("decode", err)
	}

	// 2) extract + contract check
	rec, err := p.extractor.Extract(ctx, file.Filename, pages)
	if err != nil {
		return fail("extract", err)
	}
	if err := schema.ValidateRecord(rec); err != nil {
		return fail("validate", err)
	}
	res.Record = rec

	// 3) persist
	stored, err := p.invoicesRepo.Save(ctx, repository.SaveInvoiceRequest{FileID: file.ID, JobID: job.ID, Record: rec})
	if err != nil {
		return fail("persist", err)
	}
	res.InvoiceID = stored.ID

	// 4) optional rename; the record stays valid if this fails
	if p.opts.Rename {
		renamed, err := p.rename(ctx, file.ID, file.SourcePath, rec)
		if err != nil {
			logger.Warn("processor.rename.failed", "path", file.SourcePath, "error", err)
		}
		res.RenamedPath = renamed
	}

	extracted, err := json.Marshal(rec)
	if err != nil {
		return fail("persist", err)
	}
	err = p.jobsRepo.FinishParseSuccess(ctx, job.ID, repository.ParseOutcome{
		InvoiceID:   stored.ID,
		ParseMethod: rec.ParseMethod,
		FoundFields: rec.Found(),
		Extracted:   extracted,
	})
	if err != nil {
		return res, err
	}

	logger.Info("processor.file.ok",
		"file", file.Filename,
		"invoice_number", rec.Fields[constants.InvoiceNumber],
		"total_amount", rec.Fields[constants.TotalAmount],
		"found", rec.Found(),
		"renamed", res.RenamedPath != "",
	)
	return res, nil
}

func (p *Processor) rename(ctx context.Context, fileID uuid.UUID, src string, rec invoice.Record) (string, error) {
	target, err := naming.RenameFile(src, rec, p.opts.Naming)
	if err != nil {
		return "", err
	}
	if target == src {
		return "", nil
	}
	return target, errors.Join(
		p.filesRepo.UpdatePath(ctx, fileID, target, filepath.Base(target)),
		p.invoicesRepo.SetRenamedPath(ctx, fileID, target),
	)
}

// loggerFor attaches the request ID and content hash carried by ctx.
func loggerFor(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := common.RequestIDFromContext(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	if h, ok := common.ContentHashFromContext(ctx); ok {
		logger = logger.With("content_hash", h)
	}
	return logger
}
