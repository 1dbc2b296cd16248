package invoice

import (
	"regexp"
	"strings"
)

var (
	separatorLine = regexp.MustCompile(`^[-─═]+$`)
	starredTag    = regexp.MustCompile(`^\*([^*]+)\*`)
	tabRun        = regexp.MustCompile(`\t+`)
)

// itemTableEnd marks lines that close the line-item table.
var itemTableEnd = []string{"合计", "价税合计", "开票人", "收款人", "复核", "销售方", "购买方"}

// isItemTableStart reports whether line opens the line-item table, either
// with a column header or with a starred category next to a goods keyword.
func isItemTableStart(line string) bool {
	if strings.Contains(line, "项目名称") || strings.Contains(line, "货物或应税劳务") {
		return true
	}
	return strings.Contains(line, "*") && (strings.Contains(line, "服务") || strings.Contains(line, "商品"))
}

// resolveItemName takes the first column of the first data row below the
// item table header. A leading *category* tag yields just the category.
func resolveItemName(lines []string) string {
	start := -1
	for i, line := range lines {
		if isItemTableStart(strings.TrimSpace(line)) {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	for _, raw := range lines[start+1:] {
		line := strings.TrimSpace(raw)
		if line == "" || separatorLine.MatchString(line) {
			continue
		}
		if containsAny(line, itemTableEnd...) {
			return ""
		}
		first := strings.TrimSpace(tabRun.Split(line, 2)[0])
		if first == "" {
			continue
		}
		if m := starredTag.FindStringSubmatch(first); m != nil {
			return strings.TrimSpace(m[1])
		}
		return first
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
