package invoice

import (
	"regexp"
	"strings"
)

const taxIDLength = 18

var (
	taxIDRun        = regexp.MustCompile(`[0-9A-Z]+`)
	standaloneTaxID = regexp.MustCompile(`^[0-9A-Z]{18}$`)
)

// taxIDTokens returns the uppercase alphanumeric runs in s that are exactly
// one tax ID long. Longer runs are not split.
func taxIDTokens(s string) []string {
	var out []string
	for _, run := range taxIDRun.FindAllString(s, -1) {
		if len(run) == taxIDLength {
			out = append(out, run)
		}
	}
	return out
}

func isTaxIDLabelLine(line string) bool {
	return strings.Contains(line, "统一社会信用代码") || strings.Contains(line, "纳税人识别号")
}

// resolveTaxIDs assigns tax IDs to buyer and seller. Lines carrying a tax ID
// label, plus the line after each, form the search region. A tab delimited
// region line is read positionally: tokens in the left half of its columns
// belong to the buyer, the rest to the seller. Otherwise the first distinct
// token is the buyer's and the second the seller's. A line holding only a
// tax ID fills the seller when nothing else did.
func resolveTaxIDs(lines []string) (buyer, seller string) {
	var regional []string
	seen := make(map[string]bool)
	positional := false

	for i, line := range lines {
		if !isTaxIDLabelLine(line) {
			continue
		}
		region := []string{line}
		if i+1 < len(lines) {
			region = append(region, lines[i+1])
		}
		for _, rl := range region {
			if b, s, ok := positionalTaxIDs(rl); ok {
				positional = true
				if buyer == "" {
					buyer = b
				}
				if seller == "" {
					seller = s
				}
				continue
			}
			for _, tok := range taxIDTokens(rl) {
				if !seen[tok] {
					seen[tok] = true
					regional = append(regional, tok)
				}
			}
		}
	}

	if !positional {
		switch {
		case len(regional) == 1:
			buyer = regional[0]
		case len(regional) >= 2:
			buyer, seller = regional[0], regional[1]
		}
	}

	if seller == "" {
		for _, line := range lines {
			if t := strings.TrimSpace(line); standaloneTaxID.MatchString(t) && t != buyer {
				seller = t
				break
			}
		}
	}
	return buyer, seller
}

// positionalTaxIDs reads a tab delimited line with at least two non-blank
// columns. It reports ok only when a token was found in some column.
func positionalTaxIDs(line string) (buyer, seller string, ok bool) {
	if !strings.ContainsRune(line, '\t') {
		return "", "", false
	}
	cols := splitColumns(line)
	if len(cols) < 2 {
		return "", "", false
	}
	for j, col := range cols {
		toks := taxIDTokens(col)
		if len(toks) == 0 {
			continue
		}
		ok = true
		if float64(j) < float64(len(cols))/2 {
			if buyer == "" {
				buyer = toks[0]
			}
		} else if seller == "" {
			seller = toks[0]
		}
	}
	return buyer, seller, ok
}

// splitColumns splits a reconstructed line on tabs and drops blank columns.
func splitColumns(line string) []string {
	var cols []string
	for _, c := range strings.Split(line, "\t") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
