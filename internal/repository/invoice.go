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
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

// SaveInvoiceRequest wraps parameters for storing an extraction result.
type SaveInvoiceRequest struct {
	FileID      uuid.UUID
	JobID       uuid.UUID
	Record      invoice.Record
	RenamedPath string
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	InvoiceNumber string
	BuyerName     string
	SellerName    string
	Limit         int
}

type InvoiceRepository interface {
	Save(ctx context.Context, req SaveInvoiceRequest) (*entity.StoredInvoice, error)
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*entity.StoredInvoice, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.StoredInvoice, error)
	SetRenamedPath(ctx context.Context, fileID uuid.UUID, path string) error
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

var invoiceColumns = []string{"id", "file_id", "job_id", "record_json", "renamed_path", "created_at", "updated_at"}

// Save stores one invoice per file; re-processing a file replaces its row.
func (r *invoiceRepository) Save(ctx context.Context, req SaveInvoiceRequest) (*entity.StoredInvoice, error) {
	// full text is large and always recoverable from the source
	rec := req.Record
	rec.FullText = ""
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	now := formatTime(time.Now())
	f := rec.Fields
	q := r.db.builder().Insert("invoices").
		Columns("id", "file_id", "job_id", "invoice_number", "invoice_date", "buyer_name", "seller_name",
			"total_amount", "record_json", "renamed_path", "created_at", "updated_at").
		Values(uuid.New(), req.FileID, req.JobID,
			f[constants.InvoiceNumber], f[constants.InvoiceDate], f[constants.BuyerName], f[constants.SellerName], f[constants.TotalAmount],
			string(data), req.RenamedPath, now, now).
		OnConflict(
			entsql.ConflictColumns("file_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range []string{"job_id", "invoice_number", "invoice_date", "buyer_name", "seller_name",
					"total_amount", "record_json", "renamed_path", "updated_at"} {
					u.SetExcluded(c)
				}
			}),
		)
	_, err = r.db.exec(ctx, q)
	if err != nil {
		r.logger.Error("failed to save invoice", "file_id", req.FileID, "job_id", req.JobID, "error", err)
		return nil, fmt.Errorf("%w: save invoice: %v", common.ErrDatabase, err)
	}
	return r.GetByFileID(ctx, req.FileID)
}

func (r *invoiceRepository) GetByFileID(ctx context.Context, fileID uuid.UUID) (*entity.StoredInvoice, error) {
	q := r.db.builder().Select(invoiceColumns...).From(r.db.table("invoices")).Where(entsql.EQ("file_id", fileID))
	var inv *entity.StoredInvoice
	err := r.db.queryRow(ctx, q, func(row rowScanner) (err error) {
		inv, err = scanInvoice(row)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice for file %s", common.ErrNotFound, fileID)
	}
	return inv, err
}

func (r *invoiceRepository) List(ctx context.Context, filter ListFilter) ([]*entity.StoredInvoice, error) {
	q := r.db.builder().Select(invoiceColumns...).From(r.db.table("invoices"))
	if filter.InvoiceNumber != "" {
		q.Where(entsql.EQ("invoice_number", filter.InvoiceNumber))
	}
	if filter.BuyerName != "" {
		q.Where(entsql.EQ("buyer_name", filter.BuyerName))
	}
	if filter.SellerName != "" {
		q.Where(entsql.EQ("seller_name", filter.SellerName))
	}
	q.OrderBy("created_at", "id")
	if filter.Limit > 0 {
		q.Limit(filter.Limit)
	}

	rows, err := r.db.query(ctx, q)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, fmt.Errorf("%w: list invoices: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.StoredInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoiceRepository) SetRenamedPath(ctx context.Context, fileID uuid.UUID, path string) error {
	q := r.db.builder().Update("invoices").
		Set("renamed_path", path).
		Set("updated_at", formatTime(time.Now())).
		Where(entsql.EQ("file_id", fileID))
	res, err := r.db.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("%w: update invoice: %v", common.ErrDatabase, err)
	}
	return affected(res, "invoice for file "+fileID.String())
}

func scanInvoice(row rowScanner) (*entity.StoredInvoice, error) {
	var (
		inv                  entity.StoredInvoice
		data                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&inv.ID, &inv.FileID, &inv.JobID, &data, &inv.RenamedPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &inv.Record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	var err error
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
