package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob tracks one run of the pipeline over a DocumentFile.
type ExtractJob struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"file_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Format        string          `json:"format"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	Status        string          `json:"status"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	PageCount     *int            `json:"page_count,omitempty"`
	ParseMethod   *string         `json:"parse_method,omitempty"`
	FoundFields   *int            `json:"found_fields,omitempty"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
}
