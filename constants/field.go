package constants

// Field identifies one extracted invoice field. The set is closed; every
// resolver and the merge step iterate AllFields so nothing is skipped.
type Field int

const (
	InvoiceNumber Field = iota
	InvoiceDate
	BuyerName
	BuyerTaxID
	SellerName
	SellerTaxID
	TotalAmount
	TotalAmountChinese
	TaxAmount
	AmountWithoutTax
	Drawer
	Payee
	Reviewer
	ItemName

	// FieldCount is the number of fields; keep it last.
	FieldCount
)

var fieldKeys = [FieldCount]string{
	InvoiceNumber:      "invoiceNumber",
	InvoiceDate:        "invoiceDate",
	BuyerName:          "buyerName",
	BuyerTaxID:         "buyerTaxId",
	SellerName:         "sellerName",
	SellerTaxID:        "sellerTaxId",
	TotalAmount:        "totalAmount",
	TotalAmountChinese: "totalAmountChinese",
	TaxAmount:          "taxAmount",
	AmountWithoutTax:   "amountWithoutTax",
	Drawer:             "drawer",
	Payee:              "payee",
	Reviewer:           "reviewer",
	ItemName:           "itemName",
}

var fieldLabels = [FieldCount]string{
	InvoiceNumber:      "发票号码",
	InvoiceDate:        "开票日期",
	BuyerName:          "购买方名称",
	BuyerTaxID:         "购买方税号",
	SellerName:         "销售方名称",
	SellerTaxID:        "销售方税号",
	TotalAmount:        "价税合计",
	TotalAmountChinese: "价税合计(大写)",
	TaxAmount:          "税额",
	AmountWithoutTax:   "不含税金额",
	Drawer:             "开票人",
	Payee:              "收款人",
	Reviewer:           "复核人",
	ItemName:           "项目名称",
}

// AllFields returns every field in canonical order.
func AllFields() []Field {
	out := make([]Field, FieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool { return f >= 0 && f < FieldCount }

// Key is the JSON/record key of the field (e.g. "buyerTaxId").
func (f Field) Key() string {
	if !f.Valid() {
		return ""
	}
	return fieldKeys[f]
}

// Label is the Chinese caption used in reports and exports.
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return fieldLabels[f]
}

func (f Field) String() string { return f.Key() }

// FieldByKey looks up a field by its record key.
func FieldByKey(key string) (Field, bool) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return -1, false
}
