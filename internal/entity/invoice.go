package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

// StoredInvoice is the persisted extraction result of one file. The full
// record is kept alongside a few indexed columns.
type StoredInvoice struct {
	ID          uuid.UUID      `json:"id"`
	FileID      uuid.UUID      `json:"file_id"`
	JobID       uuid.UUID      `json:"job_id"`
	Record      invoice.Record `json:"record"`
	RenamedPath string         `json:"renamed_path,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
