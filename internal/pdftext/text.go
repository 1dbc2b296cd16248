package pdftext

import (
	"os"
	"strings"

	"github.com/joseph-ayodele/invoice-renamer/internal/layout"
)

// decodeText reads an already reconstructed text dump. Form feeds separate
// pages; such pages carry text but no fragments.
func decodeText(path string) ([]layout.Page, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := strings.ReplaceAll(string(b), "\r\n", "\n")
	parts := strings.Split(raw, "\f")
	pages := make([]layout.Page, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, layout.Page{Number: i + 1, Text: strings.Trim(p, "\n")})
	}
	return pages, nil
}
