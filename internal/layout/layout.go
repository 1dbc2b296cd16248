// Package layout rebuilds line and column structured text from positioned
// text fragments reported by a PDF text layer.
package layout

import (
	"sort"
	"strings"
)

const (
	// LineTolerance is the largest Y difference between fragments on one visual line.
	LineTolerance = 5.0
	// ColumnGap is the X distance beyond which a fragment starts a new column.
	ColumnGap = 50.0
	// ColumnSeparator joins columns inside a reconstructed line.
	ColumnSeparator = '\t'
)

// Fragment is a single run of text at a page position. Y grows upwards.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// Page is one reconstructed page. Fragments are kept in reading order.
type Page struct {
	Number    int
	Text      string
	Fragments []Fragment
}

// SortFragments orders fragments top to bottom, then left to right within a
// visual line. Lines are clustered against the first fragment of each line
// so that a chain of small Y steps cannot pull fragments across lines. The
// input is not modified.
func SortFragments(frags []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, line := range groupLines(frags) {
		out = append(out, line...)
	}
	return out
}

// groupLines splits fragments into visual lines, top line first, each line
// ordered by ascending X.
func groupLines(frags []Fragment) [][]Fragment {
	if len(frags) == 0 {
		return nil
	}
	byY := make([]Fragment, len(frags))
	copy(byY, frags)
	sort.SliceStable(byY, func(i, j int) bool { return byY[i].Y > byY[j].Y })

	var lines [][]Fragment
	var current []Fragment
	anchorY := byY[0].Y
	for _, f := range byY {
		if anchorY-f.Y > LineTolerance {
			lines = append(lines, current)
			current = nil
			anchorY = f.Y
		}
		current = append(current, f)
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// Reconstruct renders fragments as text: lines joined with '\n', columns
// within a line joined with ColumnSeparator.
func Reconstruct(frags []Fragment) string {
	lines := groupLines(frags)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = formatLine(line)
	}
	return strings.Join(out, "\n")
}

// BuildPage reconstructs a single page.
func BuildPage(number int, frags []Fragment) Page {
	return Page{
		Number:    number,
		Text:      Reconstruct(frags),
		Fragments: SortFragments(frags),
	}
}

// FullText concatenates page texts, each followed by a page-break newline.
func FullText(pages []Page) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// HasText reports whether any fragment on any page carries non-blank text.
func HasText(pages []Page) bool {
	for _, p := range pages {
		for _, f := range p.Fragments {
			if strings.TrimSpace(f.Text) != "" {
				return true
			}
		}
	}
	return false
}

// formatLine expects fragments in ascending X order. Runs inside a column
// are concatenated as is; a digit run split over two fragments stays whole.
func formatLine(line []Fragment) string {
	var columns []string
	var col strings.Builder
	lastX := 0.0
	for i, f := range line {
		if i > 0 && f.X-lastX > ColumnGap {
			columns = append(columns, col.String())
			col.Reset()
		}
		col.WriteString(f.Text)
		lastX = f.X
	}
	columns = append(columns, col.String())
	return strings.Join(columns, string(ColumnSeparator))
}
