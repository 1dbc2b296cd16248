package invoice

import (
	"fmt"
	"regexp"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

// Rule is one extraction pattern. Re has exactly one capture group; its
// trimmed content is the field value.
type Rule struct {
	Name string
	Re   *regexp.Regexp
}

// PatternTable holds the ordered rules for every field. Earlier rules are
// more specific and win over later ones.
type PatternTable [constants.FieldCount][]Rule

func rule(name, expr string) Rule {
	re := regexp.MustCompile(expr)
	if n := re.NumSubexp(); n != 1 {
		panic(fmt.Sprintf("invoice: rule %q has %d capture groups, want 1", name, n))
	}
	return Rule{Name: name, Re: re}
}

// Label alternations shared by several rules. Go regexp has no lookahead,
// so a bounded value is captured lazily and followed by one of these stops
// (or the end of the line) outside the group.
const (
	partyStops  = `纳税人识别号|统一社会信用代码|税号|地址|电话|开户行|账号`
	amountValue = `(\d+(?:\.\d+)?)`
	cnNumerals  = `壹贰叁肆伍陆柒捌玖拾佰仟万亿零圆元角分整正`
	dateValue   = `(\d{4}\s*[-年/.]\s*\d{1,2}\s*[-月/.]\s*\d{1,2}\s*日?)`
	taxIDValue  = `([0-9A-Z]{15,20})`
)

// Patterns is the base rule table used by ResolveBase.
var Patterns = PatternTable{
	constants.InvoiceNumber: {
		rule("invoice_number_label", `发票号码[：:]\s*(\d+)`),
		rule("invoice_number_spaced", `发\s*票\s*号\s*码\s*[：:]?\s*(\d+)`),
		rule("receipt_number_label", `票据号码[：:]\s*(\d+)`),
		rule("invoice_number_no", `No[.．]?\s*[：:]\s*(\d+)`),
		rule("invoice_number_long_digits", `\b(\d{20,})\b`),
		rule("invoice_number_digits", `\b(\d{8,})\b`),
	},
	constants.InvoiceDate: {
		rule("invoice_date_label", `开票日期[：:]\s*`+dateValue),
		rule("invoice_date_spaced", `开\s*票\s*日\s*期\s*[：:]?\s*`+dateValue),
		rule("date_label", `日期[：:]\s*`+dateValue),
		rule("date_cn", `(\d{4}年\d{1,2}月\d{1,2}日)`),
		rule("date_iso", `(\d{4}-\d{1,2}-\d{1,2})`),
	},
	constants.BuyerName: {
		rule("buyer_name_label", `购买方[：:]?\s*名\s*称[：:]?\s*([^\n\t]+)`),
		rule("buyer_name_spaced", `购\s*买\s*方\s*名\s*称\s*[：:]\s*([^\n\t]+)`),
		rule("customer_name_label", `客户名称[：:]\s*([^\n\t]+)`),
		rule("buyer_bounded", `(?m)购买方[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|销售方|$)`),
		rule("buyer_short_bounded", `(?m)买方[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|卖方|销售方|$)`),
		rule("customer_bounded", `(?m)客户[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|销售方|$)`),
	},
	constants.BuyerTaxID: {
		rule("buyer_tax_id_label", `购买方[^\n]*?(?:纳税人识别号|统一社会信用代码)[^：:\n]*[：:]\s*`+taxIDValue),
		rule("buyer_tax_no_label", `购买方[^\n]*?税号[：:]\s*`+taxIDValue),
		rule("buyer_short_tax_id_label", `买方[^\n]*?(?:纳税人识别号|税号)[：:]\s*`+taxIDValue),
		rule("tax_id_spaced", `纳\s*税\s*人\s*识\s*别\s*号\s*[：:]\s*`+taxIDValue),
		rule("credit_code_label", `统一社会信用代码[^：:\n]*[：:]\s*`+taxIDValue),
	},
	constants.SellerName: {
		rule("seller_name_label", `销售方[：:]?\s*名\s*称[：:]?\s*([^\n\t]+)`),
		rule("seller_name_spaced", `销\s*售\s*方\s*名\s*称\s*[：:]\s*([^\n\t]+)`),
		rule("issuer_unit_label", `开票单位[：:]\s*([^\n\t]+)`),
		rule("seller_bounded", `(?m)销售方[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|购买方|$)`),
		rule("seller_short_bounded", `(?m)卖方[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|买方|购买方|$)`),
		rule("issuer_bounded", `(?m)开票方[：:]?\s*([^\n\t]+?)\s*(?:`+partyStops+`|购买方|$)`),
	},
	constants.SellerTaxID: {
		rule("seller_tax_id_label", `销售方[^\n]*?(?:纳税人识别号|统一社会信用代码)[^：:\n]*[：:]\s*`+taxIDValue),
		rule("seller_tax_no_label", `销售方[^\n]*?税号[：:]\s*`+taxIDValue),
		rule("seller_short_tax_id_label", `卖方[^\n]*?(?:纳税人识别号|税号)[：:]\s*`+taxIDValue),
		rule("issuer_tax_no_label", `开票方税号[：:]\s*`+taxIDValue),
	},
	constants.TotalAmount: {
		rule("total_lowercase", `价税合计[^\n]*?[（(]\s*小\s*写\s*[）)]\s*[￥¥]?\s*`+amountValue),
		rule("total_label", `价税合计[：:]\s*[￥¥]?\s*`+amountValue),
		rule("total_amount_label", `合计金额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("grand_total_label", `总金额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("lowercase_spaced", `[（(]\s*小\s*写\s*[）)]\s*[：:]?\s*[￥¥]\s*`+amountValue),
		rule("sum_label", `(?:合\s*计|总\s*计)[：:]\s*[￥¥]?\s*(\d+\.\d{2})`),
		rule("currency_amount", `[￥¥]\s*(\d+\.\d{2})`),
		rule("yuan_amount", `(\d+\.\d{2})元`),
	},
	constants.TotalAmountChinese: {
		rule("written_amount_label", `大\s*写[^`+cnNumerals+`\n]*([`+cnNumerals+`]+)`),
		rule("written_amount_colon", `大写金额[：:]\s*([^\n\t]+)`),
		rule("written_amount_bare", `([壹贰叁肆伍陆柒捌玖拾佰仟万亿零]+[圆元][零壹贰叁肆伍陆柒捌玖角分整正]*)`),
	},
	constants.TaxAmount: {
		rule("tax_amount_label", `税\s*额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("vat_amount_label", `增值税额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("tax_sum_label", `税\s*金[：:]\s*[￥¥]?\s*`+amountValue),
	},
	constants.AmountWithoutTax: {
		rule("net_amount_label", `不含税金额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("amount_label", `金\s*额[：:]\s*[￥¥]?\s*`+amountValue),
		rule("subtotal_label", `小\s*计[：:]\s*[￥¥]?\s*`+amountValue),
	},
	constants.Drawer: {
		rule("drawer_label", `开\s*票\s*人\s*[：:][ \t]*(\S+)`),
		rule("maker_label", `制票人[：:][ \t]*(\S+)`),
	},
	constants.Payee: {
		rule("payee_label", `收\s*款\s*人\s*[：:][ \t]*(\S+)`),
	},
	constants.Reviewer: {
		rule("reviewer_label", `复\s*核\s*人?\s*[：:][ \t]*(\S+)`),
		rule("auditor_label", `审核人[：:][ \t]*(\S+)`),
	},
	constants.ItemName: {
		rule("item_name_label", `(?:商品|服务|项目)名称[：:]\s*([^\n\t]+)`),
		rule("goods_name_label", `货物或应税劳务[^\n]*?名称[：:]\s*([^\n\t]+)`),
		rule("product_label", `品名[：:]\s*([^\n\t]+)`),
	},
}
