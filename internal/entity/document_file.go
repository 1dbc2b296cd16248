package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentFile is one ingested source document, deduplicated by content hash.
type DocumentFile struct {
	ID          uuid.UUID `json:"id"`
	SourcePath  string    `json:"source_path"`
	ContentHash []byte    `json:"content_hash"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int64     `json:"file_size"`
	IngestedAt  time.Time `json:"ingested_at"`
}
