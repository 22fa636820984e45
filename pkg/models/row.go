package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RowData is the schema-less key/value content of one spreadsheet row.
// Values are scalars (string, number, bool) or nil; keys are a subset of the
// owning sheet's header list. Different rows of one sheet may carry different
// keys when the source data is irregular.
type RowData map[string]any

// Row is one data row of a sheet. RowNumber is 1-based and contiguous within
// the sheet, assigned in source order at ingestion time.
type Row struct {
	ID        uuid.UUID `json:"id,omitempty"`
	SheetID   uuid.UUID `json:"sheet_id,omitempty"`
	RowNumber int       `json:"row_number"`
	Data      RowData   `json:"data"`
}

// Candidate column lists. Source spreadsheets name the same logical column
// inconsistently; lookups try these names in priority order and the first
// non-null value wins. Keys are case-sensitive as they appear in the source.
var (
	ReferenceCodeColumns = []string{"rc_number", "rc", "rc_no", "reference_number", "RC_Number"}
	CompanyColumns       = []string{"company_name", "company", "Company_Name", "Name of the Applicant"}
	ProductColumns       = []string{"product_name", "product", "Product_Name", "Name of the Product", "Product name"}
	GenericDateColumns   = []string{"date", "date_created", "created_date", "transaction_date"}
)

// MeetingDateColumn holds DD.MM.YYYY meeting dates on the reference index sheet.
const MeetingDateColumn = "Meeting_held_on_date"

// FirstPresent returns the trimmed string form of the first candidate column
// holding a non-null, non-empty value, or "" and false when none does.
func (d RowData) FirstPresent(candidates []string) (string, bool) {
	for _, key := range candidates {
		v, ok := d[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			continue
		}
		return s, true
	}
	return "", false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSONB numbers decode as float64; render integers without the
		// trailing ".0" Excel never had.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
