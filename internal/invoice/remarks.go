package invoice

import (
	"regexp"
	"strings"
)

var (
	remarksStart = regexp.MustCompile(`[（(]\s*小\s*写\s*[）)]\s*[￥¥]\s*[\d.]+[^\n]*\n`)
	remarksEnd   = regexp.MustCompile(`\n\s*开\s*票\s*人`)
	remarksLabel = strings.NewReplacer("\n备", "\n", "\n注", "\n")
)

// ResolveRemarks returns the free text between the lowercase total line and
// the drawer line, with the stacked 备/注 label characters removed. It
// returns "" when the block is absent or empty.
func ResolveRemarks(text string) string {
	start := remarksStart.FindStringIndex(text)
	if start == nil {
		return ""
	}
	rest := "\n" + text[start[1]:]
	end := remarksEnd.FindStringIndex(rest)
	if end == nil {
		return ""
	}
	block := remarksLabel.Replace(rest[:end[0]])
	return strings.TrimSpace(block)
}
