package invoice

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

type side int

const (
	noSide side = iota
	buyerSide
	sellerSide
)

// individualMarker in a buyer name designates a private person.
const individualMarker = "个人"

var (
	nameToken       = regexp.MustCompile(`名\s*称`)
	nameValuePrefix = regexp.MustCompile(`^\s*[：:]?\s*`)

	compressedBuyer  = regexp.MustCompile(`买\s*名\s*称\s*[：:]?\s*([^售\s]+)`)
	compressedSeller = regexp.MustCompile(`售\s*名\s*称\s*[：:]?\s*(\S+)`)

	looseBuyerLabel  = regexp.MustCompile(`(?:购买方|买方|客户)(?:信息)?\s*(?:名\s*称)?\s*[：:]?\s*`)
	looseSellerLabel = regexp.MustCompile(`(?:销售方|卖方|开票方)(?:信息)?\s*(?:名\s*称)?\s*[：:]?\s*`)
)

var (
	partyStopLabels  = []string{"纳税人识别号", "统一社会信用代码", "税号", "地址", "电话", "开户行", "账号", "\t"}
	buyerStopLabels  = append(append([]string{}, partyStopLabels...), "销售方", "卖方", "开票方")
	sellerStopLabels = append(append([]string{}, partyStopLabels...), "购买方", "买方", "客户")
	itemHeaderLabels = []string{"项目名称", "规格型号", "货物或应税劳务", "商品名称", "服务名称"}
	sellerContext    = []string{"销售方", "销方", "卖方", "开票方", "售"}
)

// tabularBasicRules are the narrow rules the tabular pass uses for the
// non-party fields it also reports.
var tabularBasicRules = PatternTable{
	constants.InvoiceNumber: {
		rule("tabular_invoice_number_label", `发票号码[：:]\s*(\d+)`),
		rule("tabular_invoice_number_no", `No[：:]\s*(\d+)`),
		rule("tabular_invoice_number_long_digits", `\b(\d{20,})\b`),
	},
	constants.InvoiceDate: {
		rule("tabular_invoice_date_label", `开票日期[：:]\s*(\d{4}[-年]\d{1,2}[-月]\d{1,2}日?)`),
		rule("tabular_date_label", `日期[：:]\s*(\d{4}[-年]\d{1,2}[-月]\d{1,2}日?)`),
		rule("tabular_date_cn", `(\d{4}年\d{1,2}月\d{1,2}日)`),
	},
	constants.TotalAmount: {
		rule("tabular_total_written_row", `价税合计[（(]大写[）)][^\n]*?[￥¥]\s*(\d+(?:\.\d+)?)`),
		rule("tabular_sum_label", `合计[：:]\s*[￥¥]?\s*(\d+\.\d{2})`),
		rule("tabular_grand_total_label", `总计[：:]\s*[￥¥]?\s*(\d+\.\d{2})`),
		rule("tabular_lowercase", `[（(]\s*小\s*写\s*[）)]\s*[￥¥]\s*(\d+\.\d{2})`),
		rule("tabular_currency_amount", `[￥¥]\s*(\d+\.\d{2})`),
	},
	constants.TotalAmountChinese: {
		rule("tabular_written_amount", `合计[^\n]*?[（(]大写[）)][^\n`+cnNumerals+`]*([`+cnNumerals+`]+)`),
	},
	constants.Drawer: {
		rule("tabular_drawer", `开票人[：:]?[ \t]*(\S+)`),
	},
}

// ResolveTabular reads the party block of a reconstructed invoice: buyer and
// seller names and tax IDs, the first line item, and a few basic fields from
// tabularBasicRules. Fields it cannot determine are left empty.
func ResolveTabular(text string) Fields {
	lines := splitLines(text)

	var out Fields
	for _, f := range constants.AllFields() {
		out[f] = firstMatch(tabularBasicRules[f], text)
	}

	buyer, seller := resolvePartyNames(text, lines)
	buyerTax, sellerTax := resolveTaxIDs(lines)
	if isIndividual(buyer) {
		buyerTax = ""
	}

	out[constants.BuyerName] = buyer
	out[constants.SellerName] = seller
	out[constants.BuyerTaxID] = buyerTax
	out[constants.SellerTaxID] = sellerTax
	out[constants.ItemName] = resolveItemName(lines)
	return out
}

// resolvePartyNames tries each strategy in turn. Buyer and seller are
// settled independently: a later strategy only fills a side still empty.
func resolvePartyNames(text string, lines []string) (buyer, seller string) {
	strategies := []func([]string) (string, string){
		fourColumnNames,
		compressedNames,
		looseNames,
	}
	for _, s := range strategies {
		if buyer != "" && seller != "" {
			return buyer, seller
		}
		b, sl := s(lines)
		if buyer == "" {
			buyer = b
		}
		if seller == "" {
			seller = sl
		}
	}
	if buyer == "" || seller == "" {
		b, sl := entityNames(text, buyer, seller)
		if buyer == "" {
			buyer = b
		}
		if seller == "" {
			seller = sl
		}
	}
	return buyer, seller
}

// fourColumnNames handles rows such as "购买方\t名称：X\t销售方\t名称：Y".
// A column's side comes from the label text before its name token or from
// the closest side label column to its left. Name columns with no side at
// all are taken in order, buyer first.
func fourColumnNames(lines []string) (buyer, seller string) {
	for _, line := range lines {
		if !strings.ContainsRune(line, '\t') || !nameToken.MatchString(line) || containsAny(line, itemHeaderLabels...) {
			continue
		}
		cols := splitColumns(line)
		current := noSide
		unsided := 0
		for j, col := range cols {
			loc := nameToken.FindStringIndex(col)
			if loc == nil {
				if s := labelSide(col); s != noSide && looksLikeSideLabel(col) {
					current = s
				}
				continue
			}
			if s := labelSide(col[:loc[0]]); s != noSide {
				current = s
			}
			target := current
			if target == noSide {
				target = buyerSide
				if unsided > 0 {
					target = sellerSide
				}
				unsided++
			}

			value := strings.TrimSpace(nameValuePrefix.ReplaceAllString(col[loc[1]:], ""))
			if value == "" && j+1 < len(cols) && acceptsNeighbour(cols[j+1], target) {
				value = cols[j+1]
			}
			switch {
			case value == "":
			case target == buyerSide && buyer == "":
				buyer = value
			case target == sellerSide && seller == "":
				seller = value
			}
		}
		if buyer != "" && seller != "" {
			break
		}
	}
	return buyer, seller
}

func labelSide(label string) side {
	b := strings.IndexAny(label, "购买")
	s := strings.IndexAny(label, "销售")
	switch {
	case b >= 0 && (s < 0 || b < s):
		return buyerSide
	case s >= 0:
		return sellerSide
	default:
		return noSide
	}
}

// looksLikeSideLabel keeps long value cells that happen to contain 买 or 售
// from switching sides.
func looksLikeSideLabel(col string) bool {
	return strings.Contains(col, "方") || utf8.RuneCountInString(col) <= 4
}

// acceptsNeighbour reports whether the column right of an empty name label
// can be its value: it must not be another label.
func acceptsNeighbour(col string, target side) bool {
	if strings.Contains(col, "方") || nameToken.MatchString(col) {
		return false
	}
	opposite := "销售"
	if target == sellerSide {
		opposite = "购买"
	}
	return !strings.ContainsAny(col, opposite)
}

// compressedNames handles a single line such as "买名 称:X 售名 称:Y".
func compressedNames(lines []string) (buyer, seller string) {
	for _, line := range lines {
		if buyer == "" {
			if m := compressedBuyer.FindStringSubmatch(line); m != nil {
				buyer = strings.TrimSpace(m[1])
			}
		}
		if seller == "" {
			if m := compressedSeller.FindStringSubmatch(line); m != nil {
				seller = strings.TrimSpace(m[1])
			}
		}
		if buyer != "" && seller != "" {
			break
		}
	}
	return buyer, seller
}

// looseNames takes the text after a party label, cut at the first stop label.
func looseNames(lines []string) (buyer, seller string) {
	for _, line := range lines {
		if containsAny(line, itemHeaderLabels...) {
			continue
		}
		if buyer == "" {
			buyer = valueAfterLabel(line, looseBuyerLabel, buyerStopLabels)
		}
		if seller == "" {
			seller = valueAfterLabel(line, looseSellerLabel, sellerStopLabels)
		}
		if buyer != "" && seller != "" {
			break
		}
	}
	return buyer, seller
}

func valueAfterLabel(line string, label *regexp.Regexp, stops []string) string {
	loc := label.FindStringIndex(line)
	if loc == nil {
		return ""
	}
	value := line[loc[1]:]
	cut := len(value)
	for _, stop := range stops {
		if i := strings.Index(value, stop); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.Trim(value[:cut], " \t：:，,;；")
}

// entityNames is the last resort: organisation-like tokens anywhere in the
// text. The buyer gets the first unused token; the seller prefers a token
// with a seller marker earlier on its line.
func entityNames(text, haveBuyer, haveSeller string) (buyer, seller string) {
	used := map[string]bool{}
	if haveBuyer != "" {
		used[haveBuyer] = true
	}
	if haveSeller != "" {
		used[haveSeller] = true
	}
	tokens := findEntities(text)

	if haveBuyer == "" {
		for _, t := range tokens {
			if !used[t.text] {
				buyer = t.text
				used[t.text] = true
				break
			}
		}
	}
	if haveSeller == "" {
		for _, t := range tokens {
			if !used[t.text] && containsAny(linePrefix(text, t.start), sellerContext...) {
				seller = t.text
				break
			}
		}
		if seller == "" {
			for _, t := range tokens {
				if !used[t.text] {
					seller = t.text
					break
				}
			}
		}
	}
	return buyer, seller
}

// linePrefix returns the part of text's line that precedes offset.
func linePrefix(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return text[start:offset]
}

func isIndividual(buyerName string) bool {
	return strings.Contains(buyerName, individualMarker)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
