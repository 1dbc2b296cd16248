// Package pdftext turns source documents into reconstructed layout pages.
package pdftext

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/layout"
)

// Decoder yields the reconstructed pages of one document, in page order.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]layout.Page, error)
}

type Config struct {
	Validate bool // run pdfcpu validation before reading text
	MaxPages int  // 0 = no limit
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

var disableConfigDir sync.Once

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	// pdfcpu would otherwise create a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Extractor{cfg: cfg, logger: logger}
}

// Decode picks a reader based on file extension. Every failure is a
// DECODE_FAILURE AppError naming the file.
func (e *Extractor) Decode(ctx context.Context, path string) ([]layout.Page, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("pdftext.decode.start", "path", path, "ext", ext)

	var (
		pages []layout.Page
		err   error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		pages, err = e.decodePDF(ctx, path)
	case constants.TXT:
		pages, err = decodeText(path)
	default:
		e.logger.Error("pdftext.decode.unsupported", "path", path, "ext", ext)
		return nil, common.DecodeError(filepath.Base(path), common.ErrInvalidInput)
	}
	if err != nil {
		e.logger.Error("pdftext.decode.failed", "path", path, "error", err)
		return nil, common.DecodeError(filepath.Base(path), err)
	}
	e.logger.Info("pdftext.decode.ok", "path", path, "pages", len(pages), "took", time.Since(start))
	return pages, nil
}
