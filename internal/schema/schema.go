// Package schema holds the JSON contract of an extracted invoice record.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every field is a string and always present; "" means not found.
func BuildInvoiceJSONSchema() map[string]any {
	props := map[string]any{
		"fileName":    map[string]any{"type": "string"},
		"remarks":     map[string]any{"type": "string"},
		"parseMethod": map[string]any{"type": "string", "minLength": 1},
		"fullText":    map[string]any{"type": "string"},
	}
	for _, f := range constants.AllFields() {
		props[f.Key()] = map[string]any{"type": "string"}
	}
	props[constants.InvoiceNumber.Key()] = optionalPattern(`\d+`)
	props[constants.BuyerTaxID.Key()] = optionalPattern(`[0-9A-Z]{15,20}`)
	props[constants.SellerTaxID.Key()] = optionalPattern(`[0-9A-Z]{15,20}`)
	props[constants.TotalAmount.Key()] = decimalProp()
	props[constants.TaxAmount.Key()] = decimalProp()
	props[constants.AmountWithoutTax.Key()] = decimalProp()

	required := make([]string, 0, len(props))
	for _, f := range constants.AllFields() {
		required = append(required, f.Key())
	}
	required = append(required, "fileName", "parseMethod")

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func optionalPattern(p string) map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^(` + p + `)?$`,
	}
}

func decimalProp() map[string]any {
	return optionalPattern(`\d+(\.\d+)?`)
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compile(schemaMap)
	if err != nil {
		return err
	}
	return validate(schema, data)
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

// ValidateRecord checks rec against BuildInvoiceJSONSchema. Failures wrap
// common.ErrValidation.
func ValidateRecord(rec invoice.Record) error {
	recordSchemaOnce.Do(func() {
		recordSchema, recordSchemaErr = compile(BuildInvoiceJSONSchema())
	})
	if recordSchemaErr != nil {
		return recordSchemaErr
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := validate(recordSchema, data); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrValidation, rec.FileName, err)
	}
	return nil
}

func compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
