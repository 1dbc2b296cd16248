package invoice

import (
	"strings"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

// ResolveBase applies Patterns to text. For each field the first rule whose
// capture is non-empty after trimming wins; unmatched fields stay empty.
func ResolveBase(text string) Fields {
	return resolveTable(&Patterns, text, nil)
}

// resolveTable runs table against text. When skip is non-nil, fields for
// which skip returns true are left untouched.
func resolveTable(table *PatternTable, text string, skip func(constants.Field) bool) Fields {
	var out Fields
	for _, f := range constants.AllFields() {
		if skip != nil && skip(f) {
			continue
		}
		out[f] = firstMatch(table[f], text)
	}
	return out
}

func firstMatch(rules []Rule, text string) string {
	for _, r := range rules {
		if v := applyRule(r, text); v != "" {
			return v
		}
	}
	return ""
}

// applyRule returns the trimmed capture of r against text. A panicking rule
// counts as no match so one bad rule cannot fail the whole record.
func applyRule(r Rule, text string) (value string) {
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()
	if r.Re == nil {
		return ""
	}
	m := r.Re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
