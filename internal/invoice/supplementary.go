package invoice

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

// Accepted length range, in runes, for a supplementary value.
const (
	minSupplementaryLen = 1
	maxSupplementaryLen = 100
)

var blankRun = regexp.MustCompile(`[ \t\x{3000}]+`)

// Normalize folds full-width characters to their narrow forms, converts
// CRLF to LF and collapses runs of spaces and tabs to a single space.
func Normalize(text string) string {
	text = width.Fold.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(blankRun.ReplaceAllString(l, " "))
	}
	return strings.Join(lines, "\n")
}

// supplementaryRules run against Normalize output, so labels use the
// half-width colon, parentheses and yen sign.
var supplementaryRules = PatternTable{
	constants.InvoiceNumber: {
		rule("loose_invoice_number", `发\s*票\s*号\s*码\s*:?\s*(\d{8,})`),
	},
	constants.InvoiceDate: {
		rule("loose_invoice_date", `开\s*票\s*日\s*期\s*:?\s*(\d{4}\s*[-年/.]\s*\d{1,2}\s*[-月/.]\s*\d{1,2}\s*日?)`),
	},
	constants.BuyerName: {
		rule("loose_buyer", `购买方:\s*([^\n]+)`),
		rule("loose_buyer_spaced", `购\s*买\s*方\s*:\s*([^\n]+)`),
		rule("loose_customer_name", `客户名称:\s*([^\n]+)`),
	},
	constants.BuyerTaxID: {
		rule("loose_buyer_tax_id", `购买方纳税人识别号:\s*([A-Z0-9]{15,20})`),
		rule("loose_buyer_tax_no", `购买方税号:\s*([A-Z0-9]{15,20})`),
		rule("loose_tax_id", `纳税人识别号:\s*([A-Z0-9]{15,20})`),
	},
	constants.SellerName: {
		rule("loose_seller", `销售方:\s*([^\n]+)`),
		rule("loose_seller_spaced", `销\s*售\s*方\s*:\s*([^\n]+)`),
		rule("loose_issuer_unit", `开票单位:\s*([^\n]+)`),
	},
	constants.SellerTaxID: {
		rule("loose_seller_tax_id", `销售方纳税人识别号:\s*([A-Z0-9]{15,20})`),
		rule("loose_seller_tax_no", `销售方税号:\s*([A-Z0-9]{15,20})`),
		rule("loose_issuer_tax_no", `开票方税号:\s*([A-Z0-9]{15,20})`),
	},
	constants.TotalAmount: {
		rule("loose_total", `价税合计[^\n]*?¥\s*(\d+(?:\.\d+)?)`),
		rule("loose_lowercase", `\(\s*小\s*写\s*\)\s*¥?\s*(\d+(?:\.\d+)?)`),
	},
	constants.TotalAmountChinese: {
		rule("loose_written_amount", `大写金额:\s*([^\n]+)`),
		rule("loose_total_written", `价税合计\(大写\):?\s*([^\n(]+)`),
		rule("loose_sum_written", `合计金额\(大写\):?\s*([^\n(]+)`),
	},
	constants.TaxAmount: {
		rule("loose_tax_amount", `税\s*额:\s*¥?\s*(\d+(?:\.\d+)?)`),
		rule("loose_tax_sum", `税\s*金:\s*¥?\s*(\d+(?:\.\d+)?)`),
		rule("loose_vat_amount", `增值税额:\s*¥?\s*(\d+(?:\.\d+)?)`),
	},
	constants.AmountWithoutTax: {
		rule("loose_net_amount", `不含税金额:\s*¥?\s*(\d+(?:\.\d+)?)`),
		rule("loose_amount", `金\s*额:\s*¥?\s*(\d+(?:\.\d+)?)`),
		rule("loose_subtotal", `小\s*计:\s*¥?\s*(\d+(?:\.\d+)?)`),
	},
	constants.Drawer: {
		rule("loose_drawer", `开\s*票\s*人\s*:[ ]*(\S+)`),
	},
	constants.Payee: {
		rule("loose_payee", `收\s*款\s*人\s*:[ ]*(\S+)`),
	},
	constants.Reviewer: {
		rule("loose_reviewer", `复\s*核\s*人?\s*:[ ]*(\S+)`),
		rule("loose_auditor", `审核人:[ ]*(\S+)`),
	},
	constants.ItemName: {
		rule("loose_item_name", `项目名称:\s*([^\n]+)`),
		rule("loose_goods_name", `商品名称:\s*([^\n]+)`),
		rule("loose_taxable_service", `货物或应税劳务:\s*([^\n]+)`),
		rule("loose_service_name", `服务名称:\s*([^\n]+)`),
	},
}

// lineScan finds a value on the keyword's line or the line right after it.
type lineScan struct {
	keywords []string
	value    *regexp.Regexp
}

var lineScans = map[constants.Field]lineScan{
	constants.InvoiceNumber: {
		keywords: []string{"发票号码", "票据号码"},
		value:    regexp.MustCompile(`\b(\d{8,})\b`),
	},
	constants.InvoiceDate: {
		keywords: []string{"开票日期"},
		value:    regexp.MustCompile(`(\d{4}\s*[-年/.]\s*\d{1,2}\s*[-月/.]\s*\d{1,2}\s*日?)`),
	},
	constants.TotalAmount: {
		keywords: []string{"价税合计", "小写"},
		value:    regexp.MustCompile(`¥?\s*(\d+\.\d{2})`),
	},
}

// ResolveSupplementary re-attempts the fields that are empty in have with
// looser rules over normalized text, then with a keyword line scan. Values
// outside the accepted length range are discarded.
func ResolveSupplementary(text string, have Fields) Fields {
	norm := Normalize(text)
	lines := strings.Split(norm, "\n")

	var out Fields
	for _, f := range constants.AllFields() {
		if have[f] != "" {
			continue
		}
		v := acceptSupplementary(firstMatch(supplementaryRules[f], norm))
		if v == "" {
			if scan, ok := lineScans[f]; ok {
				v = acceptSupplementary(scan.find(lines))
			}
		}
		out[f] = v
	}
	return out
}

func (s lineScan) find(lines []string) string {
	for i, line := range lines {
		for _, kw := range s.keywords {
			idx := strings.Index(line, kw)
			if idx < 0 {
				continue
			}
			if m := s.value.FindStringSubmatch(line[idx+len(kw):]); m != nil {
				return strings.TrimSpace(m[1])
			}
			if i+1 < len(lines) {
				if m := s.value.FindStringSubmatch(lines[i+1]); m != nil {
					return strings.TrimSpace(m[1])
				}
			}
		}
	}
	return ""
}

func acceptSupplementary(v string) string {
	n := utf8.RuneCountInString(v)
	if n < minSupplementaryLen || n > maxSupplementaryLen {
		return ""
	}
	return v
}
