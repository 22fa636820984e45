package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile is one ingested spreadsheet document. Deleting it cascades to
// its sheets and rows. Re-uploading a file with the same name creates a new
// record; duplicate cleanup is a separate maintenance operation.
type UploadedFile struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"file_path,omitempty"`
	UploadDate   time.Time `json:"upload_date"`
}
