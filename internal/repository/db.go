// Package repository persists files, extract jobs and invoices through the
// ent SQL driver and its dialect-aware query builder. SQLite (modernc) is the
// default; postgres:// DSNs go through the pgx stdlib driver.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB wraps the ent driver opened over a database/sql pool.
type DB struct {
	drv *entsql.Driver
}

// DialectFor picks the ent dialect from the DSN scheme.
func DialectFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// driverName maps an ent dialect to the registered database/sql driver.
func driverName(d string) string {
	if d == dialect.Postgres {
		return "pgx"
	}
	return "sqlite"
}

// Open connects, pings and migrates.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := DialectFor(cfg.DSN)
	logger.Info("connecting to database", "dialect", d)

	sqlDB, err := sql.Open(driverName(d), cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, common.WrapError(err, "open database")
	}
	if isMemory(d, cfg.DSN) {
		// each sqlite connection would get its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	db := &DB{drv: entsql.OpenDB(d, sqlDB)}
	if err := HealthCheck(ctx, db, cfg.DialTimeout, logger); err != nil {
		_ = db.drv.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, common.WrapError(err, "ping database")
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.drv.Close()
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

// Dialect reports the ent dialect the driver was opened with.
func (db *DB) Dialect() string {
	return db.drv.Dialect()
}

// Close closes the database connections gracefully.
func Close(db *DB, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if db == nil {
		return
	}
	logger.Info("closing database connections")
	if err := db.drv.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database, bounded by timeout when positive.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger.Debug("pinging database")
	if err := db.drv.DB().PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

func (db *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(db.drv.Dialect())
}

func (db *DB) table(name string) *entsql.SelectTable {
	return db.builder().Table(name)
}

// schema lists the tables in creation order.
func (db *DB) schema() []entsql.Querier {
	b := db.builder()
	fileRef := func() *entsql.ForeignKeyBuilder {
		return entsql.ForeignKey().Columns("file_id").
			Reference(entsql.Reference().Table("document_files").Columns("id"))
	}
	return []entsql.Querier{
		b.CreateTable("document_files").IfNotExists().
			Columns(
				entsql.Column("id").Type("TEXT"),
				entsql.Column("source_path").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("content_hash").Type("TEXT").Attr("NOT NULL UNIQUE"),
				entsql.Column("filename").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("file_ext").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("file_size").Type("BIGINT").Attr("NOT NULL"),
				entsql.Column("ingested_at").Type("TEXT").Attr("NOT NULL"),
			).
			PrimaryKey("id"),
		b.CreateTable("extract_jobs").IfNotExists().
			Columns(
				entsql.Column("id").Type("TEXT"),
				entsql.Column("file_id").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("invoice_id").Type("TEXT"),
				entsql.Column("format").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("started_at").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("finished_at").Type("TEXT"),
				entsql.Column("status").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("error_message").Type("TEXT"),
				entsql.Column("page_count").Type("INTEGER"),
				entsql.Column("parse_method").Type("TEXT"),
				entsql.Column("found_fields").Type("INTEGER"),
				entsql.Column("extracted_json").Type("TEXT"),
			).
			PrimaryKey("id").
			ForeignKeys(fileRef()),
		b.CreateTable("invoices").IfNotExists().
			Columns(
				entsql.Column("id").Type("TEXT"),
				entsql.Column("file_id").Type("TEXT").Attr("NOT NULL UNIQUE"),
				entsql.Column("job_id").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("invoice_number").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("invoice_date").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("buyer_name").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("seller_name").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("total_amount").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("record_json").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("renamed_path").Type("TEXT").Attr("NOT NULL DEFAULT ''"),
				entsql.Column("created_at").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("updated_at").Type("TEXT").Attr("NOT NULL"),
			).
			PrimaryKey("id").
			ForeignKeys(fileRef()),
	}
}

// Migrate creates the tables when missing. Statements are idempotent.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range db.schema() {
		if _, err := db.exec(ctx, stmt); err != nil {
			return common.WrapError(err, "migrate")
		}
	}
	return nil
}

func (db *DB) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := db.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (db *DB) query(ctx context.Context, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := db.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// queryRow runs q and hands the first row to scan. No row yields sql.ErrNoRows.
func (db *DB) queryRow(ctx context.Context, q entsql.Querier, scan func(rowScanner) error) error {
	rows, err := db.query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return scan(rows)
}

// affected maps a zero-row update onto common.ErrNotFound.
func affected(res sql.Result, what string) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, what)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isMemory(d, dsn string) bool {
	return d == dialect.SQLite && (strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory"))
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func nullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
