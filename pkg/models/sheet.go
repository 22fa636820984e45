package models

import (
	"time"

	"github.com/google/uuid"
)

// Sheet is one logical table within an ingested spreadsheet document.
// Headers is the definitive column ordering, preserved exactly as read from
// the source; row data keys are always a subset of it.
type Sheet struct {
	ID        uuid.UUID `json:"id"`
	FileID    uuid.UUID `json:"file_id"`
	SheetName string    `json:"sheet_name"`
	Headers   []string  `json:"headers"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
