package pdftext

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/invoice-renamer/internal/layout"
)

func (e *Extractor) decodePDF(ctx context.Context, path string) ([]layout.Page, error) {
	if e.cfg.Validate {
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.ValidateFile(path, conf); err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("pdftext.close.failed", "path", path, "error", cerr)
		}
	}()

	n := r.NumPage()
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		e.logger.Warn("pdftext.pages.truncated", "path", path, "pages", n, "max_pages", e.cfg.MaxPages)
		n = e.cfg.MaxPages
	}

	pages := make([]layout.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, layout.BuildPage(i, nil))
			continue
		}
		texts, err := pageTexts(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, layout.BuildPage(i, coalesce(texts)))
	}
	return pages, nil
}

// pageTexts reads the positioned glyphs of p. The reader panics on some
// malformed content streams; that is reported as an error.
func pageTexts(p pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()
	return p.Content().Text, nil
}
