package invoice

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	annotation    = regexp.MustCompile(`\([^()]*\)|（[^（）]*）|\[[^\[\]]*\]|【[^【】]*】`)
)

// Merge combines resolver outputs field by field. A non-empty tabular value
// wins, then a non-empty supplementary value, then the base value. The
// result is normalized with Clean.
func Merge(base, supplementary, tabular Fields) Fields {
	var out Fields
	for _, f := range constants.AllFields() {
		switch {
		case strings.TrimSpace(tabular[f]) != "":
			out[f] = tabular[f]
		case strings.TrimSpace(supplementary[f]) != "":
			out[f] = supplementary[f]
		default:
			out[f] = base[f]
		}
	}
	return Clean(out)
}

// Clean trims every field, collapses whitespace in free-text fields, strips
// bracketed annotations from the item name and clears the buyer tax ID of
// an individual buyer.
func Clean(fs Fields) Fields {
	for _, f := range constants.AllFields() {
		fs[f] = strings.TrimSpace(fs[f])
	}
	fs[constants.TotalAmountChinese] = collapseWhitespace(fs[constants.TotalAmountChinese])
	fs[constants.ItemName] = collapseWhitespace(stripAnnotations(fs[constants.ItemName]))
	if isIndividual(fs[constants.BuyerName]) {
		fs[constants.BuyerTaxID] = ""
	}
	return fs
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func stripAnnotations(s string) string {
	for {
		next := annotation.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
