package invoice

import (
	"regexp"
	"sort"
	"strings"
)

// entitySuffixes are business-entity words that end an organisation name.
var entitySuffixes = []string{
	"股份有限公司", "有限责任公司", "有限公司", "分公司", "子公司", "总公司", "公司",
	"集团", "企业", "合作社", "联合社", "事务所", "研究院", "研究所", "设计院",
	"医院", "诊所", "药房", "药店", "学校", "大学", "学院", "幼儿园", "培训中心",
	"中心", "商行", "商店", "超市", "商场", "百货", "门市部", "经营部", "营业部",
	"服务部", "工作室", "个体工商户", "厂", "工厂", "加工厂", "农场", "养殖场",
	"酒店", "宾馆", "饭店", "餐厅", "酒楼", "旅行社", "物业", "银行", "支行",
	"分行", "保险", "协会", "基金会", "委员会", "管理局", "局", "办事处",
	"出版社", "报社", "电视台", "俱乐部", "店",
}

var entityPattern = buildEntityPattern()

// buildEntityPattern matches the longest run of name characters ending in an entity
// suffix. Longer suffixes are listed first so they win over their tails.
func buildEntityPattern() *regexp.Regexp {
	sfx := make([]string, len(entitySuffixes))
	copy(sfx, entitySuffixes)
	sort.SliceStable(sfx, func(i, j int) bool {
		return len([]rune(sfx[i])) > len([]rune(sfx[j]))
	})
	for i, s := range sfx {
		sfx[i] = regexp.QuoteMeta(s)
	}
	return regexp.MustCompile(`[^\s:：，,;；]+(?:` + strings.Join(sfx, "|") + `)`)
}

type entityToken struct {
	text  string
	start int // byte offset within the full text
}

// findEntities lists entity-suffixed tokens in text order, skipping ones
// that are only a bare suffix or a field label.
func findEntities(text string) []entityToken {
	var out []entityToken
	for _, loc := range entityPattern.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		tok = stripPartyLabel(tok)
		if tok == "" || isBareSuffix(tok) {
			continue
		}
		out = append(out, entityToken{text: tok, start: loc[1] - len(tok)})
	}
	return out
}

var labelPrefix = regexp.MustCompile(`^.*(?:名\s*称|购买方|销售方|买方|卖方|开票方|客户|单位)[：:]?`)

func stripPartyLabel(tok string) string {
	return strings.TrimSpace(labelPrefix.ReplaceAllString(tok, ""))
}

func isBareSuffix(tok string) bool {
	for _, s := range entitySuffixes {
		if tok == s {
			return true
		}
	}
	return false
}
