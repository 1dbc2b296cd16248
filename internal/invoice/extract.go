package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/layout"
)

// Extract builds the record for one document from its reconstructed text.
// It never fails: fields that cannot be found are empty.
func Extract(fileName, fullText string) Record {
	base := ResolveBase(fullText)
	supplementary := ResolveSupplementary(fullText, base)
	tabular := ResolveTabular(fullText)

	return Record{
		Fields:      Merge(base, supplementary, tabular),
		Remarks:     ResolveRemarks(fullText),
		FileName:    fileName,
		ParseMethod: MethodLayoutText,
		FullText:    fullText,
	}
}

// ExtractPages joins reconstructed pages and extracts the record. A document
// whose pages carry no text at all fails with common.ErrNoContent.
func ExtractPages(fileName string, pages []layout.Page) (Record, error) {
	if !hasContent(pages) {
		return Record{}, common.NoContentError(fileName)
	}
	return Extract(fileName, layout.FullText(pages)), nil
}

func hasContent(pages []layout.Page) bool {
	if layout.HasText(pages) {
		return true
	}
	for _, p := range pages {
		if len(p.Fragments) == 0 && p.Text != "" {
			return true
		}
	}
	return false
}

// Extractor wraps ExtractPages with logging.
type Extractor struct {
	Logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, fileName string, pages []layout.Page) (Record, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("extract %s: %w", fileName, err)
	}
	start := time.Now()
	rec, err := ExtractPages(fileName, pages)
	if err != nil {
		logger.Warn("invoice.extract.failed", "file", fileName, "pages", len(pages), "error", err)
		return Record{}, err
	}
	missing := rec.Missing()
	keys := make([]string, len(missing))
	for i, f := range missing {
		keys[i] = f.Key()
	}
	logger.Info("invoice.extract.ok",
		"file", fileName,
		"pages", len(pages),
		"found", rec.Found(),
		"missing", len(missing),
		"missing_fields", keys,
		"took", time.Since(start),
	)
	return rec, nil
}
