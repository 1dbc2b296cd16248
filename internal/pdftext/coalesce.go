package pdftext

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-renamer/internal/layout"
)

// Glyph joining thresholds, as fractions of the font size.
const (
	sameLineRatio = 0.3
	maxGapRatio   = 0.35
	overlapRatio  = 0.5
	defaultFontSz = 10.0
)

// coalesce joins consecutive glyphs that sit on one baseline and touch
// horizontally into a single fragment positioned at the first glyph.
func coalesce(texts []pdf.Text) []layout.Fragment {
	var out []layout.Fragment
	var run strings.Builder
	var first, prev pdf.Text
	open := false

	flush := func() {
		if open {
			out = append(out, layout.Fragment{Text: run.String(), X: first.X, Y: first.Y})
			run.Reset()
			open = false
		}
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if open && adjacent(prev, t) {
			run.WriteString(t.S)
			prev = t
			continue
		}
		flush()
		first, prev, open = t, t, true
		run.WriteString(t.S)
	}
	flush()
	return out
}

func adjacent(prev, next pdf.Text) bool {
	fs := prev.FontSize
	if fs <= 0 {
		fs = defaultFontSz
	}
	if math.Abs(next.Y-prev.Y) > fs*sameLineRatio {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap >= -fs*overlapRatio && gap <= fs*maxGapRatio
}
