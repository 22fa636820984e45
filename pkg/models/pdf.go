package models

import (
	"time"

	"github.com/google/uuid"
)

// PDFDocument maps a reference code to a stored PDF file. The engine only
// resolves the mapping; rendering and page navigation happen client-side.
type PDFDocument struct {
	ID         uuid.UUID `json:"id"`
	RCNumber   string    `json:"rc_number"`
	PDFPath    string    `json:"pdf_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}
