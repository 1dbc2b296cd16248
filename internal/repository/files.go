package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/entity"
)

type DocumentFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.DocumentFile, error)
	Create(ctx context.Context, sourcePath, filename, ext string, size int64, hash []byte, ingestedAt time.Time) (*entity.DocumentFile, error)
	UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int64, hash []byte, ingestedAt time.Time) (*entity.DocumentFile, bool, error)
	UpdatePath(ctx context.Context, id uuid.UUID, sourcePath, filename string) error
}

type documentFileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentFileRepository(db *DB, logger *slog.Logger) DocumentFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentFileRepo{db: db, logger: logger}
}

var fileColumns = []string{"id", "source_path", "content_hash", "filename", "file_ext", "file_size", "ingested_at"}

func (r *documentFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	f, err := r.getOne(ctx, entsql.EQ("id", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document file %s", common.ErrNotFound, id)
	}
	return f, err
}

func (r *documentFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.DocumentFile, error) {
	f, err := r.getOne(ctx, entsql.EQ("content_hash", hex.EncodeToString(hash)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document file with hash %x", common.ErrNotFound, hash)
	}
	return f, err
}

func (r *documentFileRepo) getOne(ctx context.Context, where *entsql.Predicate) (*entity.DocumentFile, error) {
	q := r.db.builder().Select(fileColumns...).From(r.db.table("document_files")).Where(where)
	var f *entity.DocumentFile
	err := r.db.queryRow(ctx, q, func(row rowScanner) (err error) {
		f, err = scanFile(row)
		return err
	})
	return f, err
}

func (r *documentFileRepo) Create(ctx context.Context, sourcePath, filename, ext string, size int64, hash []byte, ingestedAt time.Time) (*entity.DocumentFile, error) {
	f := &entity.DocumentFile{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		ContentHash: hash,
		Filename:    filename,
		FileExt:     ext,
		FileSize:    size,
		IngestedAt:  ingestedAt.UTC(),
	}
	q := r.db.builder().Insert("document_files").
		Columns(fileColumns...).
		Values(f.ID, f.SourcePath, hex.EncodeToString(hash), f.Filename, f.FileExt, f.FileSize, formatTime(f.IngestedAt))
	_, err := r.db.exec(ctx, q)
	if err != nil {
		r.logger.Error("failed to create document file", "source_path", sourcePath, "filename", filename, "error", err)
		return nil, fmt.Errorf("%w: create document file: %v", common.ErrDatabase, err)
	}
	return f, nil
}

// UpsertByHash returns the existing row for hash, or creates one. The bool
// reports whether the row already existed.
func (r *documentFileRepo) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int64, hash []byte, ingestedAt time.Time) (*entity.DocumentFile, bool, error) {
	existing, err := r.GetByHash(ctx, hash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, sourcePath, filename, ext, size, hash, ingestedAt)
	if err != nil {
		r.logger.Error("failed to upsert document file by hash", "source_path", sourcePath, "filename", filename, "error", err)
		return nil, false, err
	}
	return row, false, nil
}

// UpdatePath records a new location after the file was renamed.
func (r *documentFileRepo) UpdatePath(ctx context.Context, id uuid.UUID, sourcePath, filename string) error {
	q := r.db.builder().Update("document_files").
		Set("source_path", sourcePath).
		Set("filename", filename).
		Where(entsql.EQ("id", id))
	res, err := r.db.exec(ctx, q)
	if err != nil {
		r.logger.Error("failed to update document file path", "file_id", id, "error", err)
		return fmt.Errorf("%w: update document file: %v", common.ErrDatabase, err)
	}
	return affected(res, "document file "+id.String())
}

func scanFile(row rowScanner) (*entity.DocumentFile, error) {
	var (
		f          entity.DocumentFile
		hashHex    string
		ingestedAt string
	)
	if err := row.Scan(&f.ID, &f.SourcePath, &hashHex, &f.Filename, &f.FileExt, &f.FileSize, &ingestedAt); err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, fmt.Errorf("decode content hash: %w", err)
	}
	f.ContentHash = hash
	if f.IngestedAt, err = parseTime(ingestedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
