package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/entity"
)

// ParseOutcome is what a successful parse stage stores on its job.
type ParseOutcome struct {
	InvoiceID   uuid.UUID
	ParseMethod string
	FoundFields int
	Extracted   json.RawMessage
}

type ExtractJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID, format string, status constants.JobStatus) (*entity.ExtractJob, error)
	GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractJob, error)
	FinishDecode(ctx context.Context, jobID uuid.UUID, pages int) error
	FinishParseSuccess(ctx context.Context, jobID uuid.UUID, out ParseOutcome) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log}
}

var jobColumns = []string{
	"id", "file_id", "invoice_id", "format", "started_at", "finished_at", "status",
	"error_message", "page_count", "parse_method", "found_fields", "extracted_json",
}

func (r *extractJobRepo) Start(ctx context.Context, fileID uuid.UUID, format string, status constants.JobStatus) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		StartedAt: time.Now().UTC(),
		Status:    string(status),
	}
	q := r.db.builder().Insert("extract_jobs").
		Columns("id", "file_id", "format", "started_at", "status").
		Values(job.ID, job.FileID, job.Format, formatTime(job.StartedAt), job.Status)
	_, err := r.db.exec(ctx, q)
	if err != nil {
		r.log.Error("extract_job start failed", "file_id", fileID, "err", err)
		return nil, fmt.Errorf("%w: start extract job: %v", common.ErrDatabase, err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "file_id", fileID, "format", format)
	return job, nil
}

func (r *extractJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	q := r.db.builder().Select(jobColumns...).From(r.db.table("extract_jobs")).Where(entsql.EQ("id", jobID))
	var job *entity.ExtractJob
	err := r.db.queryRow(ctx, q, func(row rowScanner) (err error) {
		job, err = scanJob(row)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: extract job %s", common.ErrNotFound, jobID)
	}
	return job, err
}

func (r *extractJobRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractJob, error) {
	q := r.db.builder().Select(jobColumns...).
		From(r.db.table("extract_jobs")).
		Where(entsql.EQ("file_id", fileID)).
		OrderBy("started_at", "id")
	rows, err := r.db.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list extract jobs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.ExtractJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *extractJobRepo) FinishDecode(ctx context.Context, jobID uuid.UUID, pages int) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusDecodedOK)).
			Set("page_count", pages)
	})
	if err != nil {
		r.log.Error("extract_job finish(DECODED_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Debug("extract_job decoded", "job_id", jobID, "pages", pages)
	return nil
}

func (r *extractJobRepo) FinishParseSuccess(ctx context.Context, jobID uuid.UUID, out ParseOutcome) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusParsedOK)).
			Set("finished_at", formatTime(time.Now())).
			Set("invoice_id", out.InvoiceID).
			Set("parse_method", out.ParseMethod).
			Set("found_fields", out.FoundFields).
			Set("extracted_json", string(out.Extracted)).
			SetNull("error_message")
	})
	if err != nil {
		r.log.Error("extract_job finish(PARSED_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (PARSED_OK)", "job_id", jobID, "invoice_id", out.InvoiceID, "found_fields", out.FoundFields)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusFailed)).
			Set("finished_at", formatTime(time.Now())).
			Set("error_message", message)
	})
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, set func(*entsql.UpdateBuilder)) error {
	u := r.db.builder().Update("extract_jobs")
	set(u)
	res, err := r.db.exec(ctx, u.Where(entsql.EQ("id", jobID)))
	if err != nil {
		return fmt.Errorf("%w: update extract job: %v", common.ErrDatabase, err)
	}
	return affected(res, "extract job "+jobID.String())
}

func scanJob(row rowScanner) (*entity.ExtractJob, error) {
	var (
		job        entity.ExtractJob
		invoiceID  sql.NullString
		startedAt  string
		finishedAt sql.NullString
		errMsg     sql.NullString
		pages      sql.NullInt64
		method     sql.NullString
		found      sql.NullInt64
		extracted  sql.NullString
	)
	err := row.Scan(&job.ID, &job.FileID, &invoiceID, &job.Format, &startedAt, &finishedAt,
		&job.Status, &errMsg, &pages, &method, &found, &extracted)
	if err != nil {
		return nil, err
	}
	if job.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if job.FinishedAt, err = nullTime(finishedAt); err != nil {
		return nil, err
	}
	if invoiceID.Valid {
		id, err := uuid.Parse(invoiceID.String)
		if err != nil {
			return nil, fmt.Errorf("parse invoice id: %w", err)
		}
		job.InvoiceID = &id
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if pages.Valid {
		n := int(pages.Int64)
		job.PageCount = &n
	}
	if method.Valid {
		job.ParseMethod = &method.String
	}
	if found.Valid {
		n := int(found.Int64)
		job.FoundFields = &n
	}
	if extracted.Valid && extracted.String != "" {
		job.ExtractedJSON = json.RawMessage(extracted.String)
	}
	return &job, nil
}
