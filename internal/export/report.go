package export

import (
	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

const (
	// Unrecognized fills report cells for fields that were not extracted.
	Unrecognized = "未识别"

	StatusSuccess = "成功"
	StatusFailed  = "失败"
)

// reportFields are the fields shown per file, in column order.
var reportFields = []constants.Field{
	constants.InvoiceNumber,
	constants.InvoiceDate,
	constants.BuyerName,
	constants.BuyerTaxID,
	constants.SellerName,
	constants.SellerTaxID,
	constants.TotalAmount,
	constants.ItemName,
}

type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Detail is one file's line in a batch report.
type Detail struct {
	FileName   string            `json:"fileName"`
	SourcePath string            `json:"sourcePath,omitempty"`
	NewPath    string            `json:"newPath,omitempty"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields"`
	Remarks    string            `json:"remarks,omitempty"`
}

type Report struct {
	Summary Summary  `json:"summary"`
	Details []Detail `json:"details"`
}

// AddSuccess appends a processed record.
func (r *Report) AddSuccess(sourcePath, newPath string, rec invoice.Record) {
	d := Detail{
		FileName:   rec.FileName,
		SourcePath: sourcePath,
		NewPath:    newPath,
		Status:     StatusSuccess,
		Fields:     make(map[string]string, len(reportFields)),
		Remarks:    rec.Remarks,
	}
	for _, f := range reportFields {
		v := rec.Fields[f]
		if v == "" {
			v = Unrecognized
		}
		d.Fields[f.Key()] = v
	}
	r.Details = append(r.Details, d)
	r.Summary.Total++
	r.Summary.Success++
}

// AddFailure appends a file that could not be processed.
func (r *Report) AddFailure(fileName, sourcePath string, err error) {
	d := Detail{
		FileName:   fileName,
		SourcePath: sourcePath,
		Status:     StatusFailed,
		Fields:     make(map[string]string, len(reportFields)),
	}
	if err != nil {
		d.Error = err.Error()
	}
	for _, f := range reportFields {
		d.Fields[f.Key()] = Unrecognized
	}
	r.Details = append(r.Details, d)
	r.Summary.Total++
	r.Summary.Failed++
}
