package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, dialect.Postgres, DialectFor("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, dialect.Postgres, DialectFor("PostgreSQL://localhost/db"))
	assert.Equal(t, dialect.SQLite, DialectFor("file:invoices.db"))
	assert.Equal(t, dialect.SQLite, DialectFor(":memory:"))
	assert.Equal(t, "pgx", driverName(dialect.Postgres))
	assert.Equal(t, "sqlite", driverName(dialect.SQLite))
}

func TestBuilderPlaceholdersFollowDialect(t *testing.T) {
	pg := &DB{drv: entsql.OpenDB(dialect.Postgres, nil)}
	query, args := pg.builder().Update("extract_jobs").
		Set("status", "FAILED").
		Set("error_message", "boom").
		Where(entsql.EQ("id", "job-1")).
		Query()
	assert.Contains(t, query, "$1")
	assert.Contains(t, query, "$3")
	assert.NotContains(t, query, "?")
	assert.Equal(t, []any{"FAILED", "boom", "job-1"}, args)

	lite := &DB{drv: entsql.OpenDB(dialect.SQLite, nil)}
	query, _ = lite.builder().Select("id").From(lite.table("invoices")).Where(entsql.EQ("file_id", "f")).Query()
	assert.Contains(t, query, "?")
	assert.NotContains(t, query, "$1")
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}

func TestDocumentFileUpsertByHash(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentFileRepository(openTestDB(t), nil)
	hash := []byte{0xde, 0xad, 0xbe, 0xef}

	first, dedup, err := repo.UpsertByHash(ctx, "/in/a.pdf", "a.pdf", "pdf", 42, hash, time.Now())
	require.NoError(t, err)
	assert.False(t, dedup)

	second, dedup, err := repo.UpsertByHash(ctx, "/in/copy.pdf", "copy.pdf", "pdf", 42, hash, time.Now())
	require.NoError(t, err)
	assert.True(t, dedup)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "/in/a.pdf", second.SourcePath)
	assert.Equal(t, hash, second.ContentHash)
	assert.Equal(t, int64(42), second.FileSize)

	require.NoError(t, repo.UpdatePath(ctx, first.ID, "/in/renamed.pdf", "renamed.pdf"))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "/in/renamed.pdf", got.SourcePath)
	assert.Equal(t, "renamed.pdf", got.Filename)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.True(t, errors.Is(repo.UpdatePath(ctx, uuid.New(), "x", "x"), common.ErrNotFound))
}

func TestExtractJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := NewDocumentFileRepository(db, nil)
	jobs := NewExtractJobRepository(db, nil)

	file, err := files.Create(ctx, "/in/a.pdf", "a.pdf", "pdf", 1, []byte{1}, time.Now())
	require.NoError(t, err)

	job, err := jobs.Start(ctx, file.ID, constants.PDF, constants.JobStatusRunning)
	require.NoError(t, err)
	require.NoError(t, jobs.FinishDecode(ctx, job.ID, 2))

	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusDecodedOK), got.Status)
	require.NotNil(t, got.PageCount)
	assert.Equal(t, 2, *got.PageCount)
	assert.Nil(t, got.FinishedAt)

	invoiceID := uuid.New()
	require.NoError(t, jobs.FinishParseSuccess(ctx, job.ID, ParseOutcome{
		InvoiceID:   invoiceID,
		ParseMethod: invoice.MethodLayoutText,
		FoundFields: 9,
		Extracted:   []byte(`{"invoiceNumber":"1"}`),
	}))
	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsedOK), got.Status)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, invoiceID, *got.InvoiceID)
	require.NotNil(t, got.FoundFields)
	assert.Equal(t, 9, *got.FoundFields)
	assert.JSONEq(t, `{"invoiceNumber":"1"}`, string(got.ExtractedJSON))
	assert.NotNil(t, got.FinishedAt)

	failed, err := jobs.Start(ctx, file.ID, constants.PDF, constants.JobStatusRunning)
	require.NoError(t, err)
	require.NoError(t, jobs.FinishFailure(ctx, failed.ID, "boom"))
	got, err = jobs.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "boom", *got.ErrorMessage)

	all, err := jobs.ListByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, errors.Is(jobs.FinishFailure(ctx, uuid.New(), "x"), common.ErrNotFound))
}

func TestInvoiceSaveReplacesPerFile(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := NewDocumentFileRepository(db, nil)
	invoices := NewInvoiceRepository(db, nil)

	file, err := files.Create(ctx, "/in/a.pdf", "a.pdf", "pdf", 1, []byte{1}, time.Now())
	require.NoError(t, err)

	rec := invoice.Record{FileName: "a.pdf", ParseMethod: invoice.MethodLayoutText, FullText: "raw"}
	rec.Fields[constants.InvoiceNumber] = "12345678"
	rec.Fields[constants.BuyerName] = "甲公司"
	rec.Fields[constants.TotalAmount] = "100.00"

	saved, err := invoices.Save(ctx, SaveInvoiceRequest{FileID: file.ID, JobID: uuid.New(), Record: rec})
	require.NoError(t, err)
	assert.Equal(t, "12345678", saved.Record.Fields[constants.InvoiceNumber])
	assert.Equal(t, "", saved.Record.FullText)

	rec.Fields[constants.TotalAmount] = "200.00"
	again, err := invoices.Save(ctx, SaveInvoiceRequest{FileID: file.ID, JobID: uuid.New(), Record: rec, RenamedPath: "/in/b.pdf"})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, "200.00", again.Record.Fields[constants.TotalAmount])
	assert.Equal(t, "/in/b.pdf", again.RenamedPath)

	list, err := invoices.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = invoices.List(ctx, ListFilter{BuyerName: "乙公司"})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = invoices.List(ctx, ListFilter{InvoiceNumber: "12345678", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, invoices.SetRenamedPath(ctx, file.ID, "/in/c.pdf"))
	got, err := invoices.GetByFileID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "/in/c.pdf", got.RenamedPath)

	_, err = invoices.GetByFileID(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
