package invoice

import (
	"encoding/json"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

// MethodLayoutText identifies records resolved from layout-reconstructed text.
const MethodLayoutText = "layout-text"

// Fields is a partial or complete set of invoice field values indexed by
// constants.Field. An empty string means the field was not found.
type Fields [constants.FieldCount]string

// Get returns the value of f.
func (fs *Fields) Get(f constants.Field) string {
	if !f.Valid() {
		return ""
	}
	return fs[f]
}

// Set stores v under f. Invalid fields are ignored.
func (fs *Fields) Set(f constants.Field, v string) {
	if f.Valid() {
		fs[f] = v
	}
}

// Found counts non-empty fields.
func (fs *Fields) Found() int {
	n := 0
	for _, v := range fs {
		if v != "" {
			n++
		}
	}
	return n
}

// Missing lists the fields that are still empty, in field order.
func (fs *Fields) Missing() []constants.Field {
	var out []constants.Field
	for _, f := range constants.AllFields() {
		if fs[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// Map returns the values keyed by their JSON field key. Every key is present.
func (fs *Fields) Map() map[string]string {
	m := make(map[string]string, constants.FieldCount)
	for _, f := range constants.AllFields() {
		m[f.Key()] = fs[f]
	}
	return m
}

// Record is the extraction result for one document.
type Record struct {
	Fields
	Remarks     string
	FileName    string
	ParseMethod string
	FullText    string
}

type recordJSON struct {
	FileName           string `json:"fileName"`
	InvoiceNumber      string `json:"invoiceNumber"`
	InvoiceDate        string `json:"invoiceDate"`
	BuyerName          string `json:"buyerName"`
	BuyerTaxID         string `json:"buyerTaxId"`
	SellerName         string `json:"sellerName"`
	SellerTaxID        string `json:"sellerTaxId"`
	TotalAmount        string `json:"totalAmount"`
	TotalAmountChinese string `json:"totalAmountChinese"`
	TaxAmount          string `json:"taxAmount"`
	AmountWithoutTax   string `json:"amountWithoutTax"`
	Drawer             string `json:"drawer"`
	Payee              string `json:"payee"`
	Reviewer           string `json:"reviewer"`
	ItemName           string `json:"itemName"`
	Remarks            string `json:"remarks"`
	ParseMethod        string `json:"parseMethod"`
	FullText           string `json:"fullText"`
}

// MarshalJSON emits every field key, empty or not.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		FileName:           r.FileName,
		InvoiceNumber:      r.Fields[constants.InvoiceNumber],
		InvoiceDate:        r.Fields[constants.InvoiceDate],
		BuyerName:          r.Fields[constants.BuyerName],
		BuyerTaxID:         r.Fields[constants.BuyerTaxID],
		SellerName:         r.Fields[constants.SellerName],
		SellerTaxID:        r.Fields[constants.SellerTaxID],
		TotalAmount:        r.Fields[constants.TotalAmount],
		TotalAmountChinese: r.Fields[constants.TotalAmountChinese],
		TaxAmount:          r.Fields[constants.TaxAmount],
		AmountWithoutTax:   r.Fields[constants.AmountWithoutTax],
		Drawer:             r.Fields[constants.Drawer],
		Payee:              r.Fields[constants.Payee],
		Reviewer:           r.Fields[constants.Reviewer],
		ItemName:           r.Fields[constants.ItemName],
		Remarks:            r.Remarks,
		ParseMethod:        r.ParseMethod,
		FullText:           r.FullText,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var j recordJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Record{
		Remarks:     j.Remarks,
		FileName:    j.FileName,
		ParseMethod: j.ParseMethod,
		FullText:    j.FullText,
	}
	r.Fields[constants.InvoiceNumber] = j.InvoiceNumber
	r.Fields[constants.InvoiceDate] = j.InvoiceDate
	r.Fields[constants.BuyerName] = j.BuyerName
	r.Fields[constants.BuyerTaxID] = j.BuyerTaxID
	r.Fields[constants.SellerName] = j.SellerName
	r.Fields[constants.SellerTaxID] = j.SellerTaxID
	r.Fields[constants.TotalAmount] = j.TotalAmount
	r.Fields[constants.TotalAmountChinese] = j.TotalAmountChinese
	r.Fields[constants.TaxAmount] = j.TaxAmount
	r.Fields[constants.AmountWithoutTax] = j.AmountWithoutTax
	r.Fields[constants.Drawer] = j.Drawer
	r.Fields[constants.Payee] = j.Payee
	r.Fields[constants.Reviewer] = j.Reviewer
	r.Fields[constants.ItemName] = j.ItemName
	return nil
}
