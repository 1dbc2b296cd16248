// Package export renders batch reports and stored invoices as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-renamer/internal/repository"
)

const (
	detailSheet  = "发票明细"
	summarySheet = "汇总"
)

// WriteXLSX renders r as a workbook with a detail sheet and a summary sheet.
func WriteXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// rename the default sheet instead of leaving an empty "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), detailSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	headers := []string{"文件名"}
	for _, fld := range reportFields {
		headers = append(headers, fld.Label())
	}
	headers = append(headers, "备注", "新文件名", "状态", "错误")
	if err := f.SetSheetRow(detailSheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, d := range r.Details {
		row := make([]any, 0, len(headers))
		row = append(row, d.FileName)
		for _, fld := range reportFields {
			row = append(row, d.Fields[fld.Key()])
		}
		newName := ""
		if d.NewPath != "" {
			newName = filepath.Base(d.NewPath)
		}
		row = append(row, d.Remarks, newName, d.Status, d.Error)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(detailSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(detailSheet, "A", "A", 40)
	_ = f.SetColWidth(detailSheet, "B", "I", 24)
	_ = f.SetColWidth(detailSheet, "J", "K", 48)

	summary := [][]any{
		{"总数", r.Summary.Total},
		{"成功", r.Summary.Success},
		{"失败", r.Summary.Failed},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Service produces XLSX bytes from persisted invoices.
type Service struct {
	invoicesRepo repository.InvoiceRepository
	filesRepo    repository.DocumentFileRepository
	logger       *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, files repository.DocumentFileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoicesRepo: invoices, filesRepo: files, logger: logger}
}

// ExportInvoicesXLSX renders every stored invoice matching filter.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	invs, err := s.invoicesRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	var r Report
	for _, inv := range invs {
		source := ""
		if file, err := s.filesRepo.GetByID(ctx, inv.FileID); err == nil {
			source = file.SourcePath
		}
		r.AddSuccess(source, inv.RenamedPath, inv.Record)
	}

	b, err := WriteXLSX(r)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(invs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}
