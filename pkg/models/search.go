package models

// SearchQuery carries the user's cross-sheet search filters. At least one of
// Company, Product, or a date bound must be present.
type SearchQuery struct {
	Company  string
	Product  string
	DateFrom string
	DateTo   string
}

// HasCriteria reports whether any filter is set.
func (q SearchQuery) HasCriteria() bool {
	return q.Company != "" || q.Product != "" || q.HasDateRange()
}

// HasDateRange reports whether reference-code resolution should run.
func (q SearchQuery) HasDateRange() bool {
	return q.DateFrom != "" || q.DateTo != ""
}

// DateRangeLabel renders the human-readable range echoed in search results.
func (q SearchQuery) DateRangeLabel() string {
	switch {
	case q.DateFrom != "" && q.DateTo != "":
		return q.DateFrom + " to " + q.DateTo
	case q.DateFrom != "":
		return "from " + q.DateFrom
	case q.DateTo != "":
		return "until " + q.DateTo
	default:
		return ""
	}
}

// SearchCriteria echoes the query back to the caller alongside the resolved
// reference codes.
type SearchCriteria struct {
	Company        string   `json:"company"`
	Product        string   `json:"product"`
	DateFrom       *string  `json:"dateFrom"`
	DateTo         *string  `json:"dateTo"`
	DateRange      *string  `json:"date_range"`
	RCNumbersFound []string `json:"rc_numbers_found"`
}

// SearchSummary aggregates the grouped results.
type SearchSummary struct {
	TotalRecords   int            `json:"total_records"`
	TotalSheets    int            `json:"total_sheets"`
	SearchCriteria SearchCriteria `json:"search_criteria"`
}

// MatchedRecord is one deduplicated row in a search result group, keyed by
// (sheet_name, row_number).
type MatchedRecord struct {
	RowNumber int     `json:"row_number"`
	Data      RowData `json:"data"`
	DateValue *string `json:"date_value"`
	RCValue   *string `json:"rc_value"`
}

// SheetMatches groups matched records by sheet.
type SheetMatches struct {
	SheetName    string          `json:"sheet_name"`
	FileName     string          `json:"file_name"`
	Annexure     string          `json:"annexure"`
	Title        string          `json:"title"`
	TotalMatches int             `json:"total_matches"`
	Records      []MatchedRecord `json:"records"`
}

// SearchResult is the full search response body.
type SearchResult struct {
	Summary SearchSummary  `json:"summary"`
	Results []SheetMatches `json:"results"`
}

// SuggestionKind selects the candidate column set for autocomplete lookups.
type SuggestionKind string

const (
	SuggestCompany SuggestionKind = "company"
	SuggestProduct SuggestionKind = "product"
)

// Columns returns the candidate column list for the kind.
func (k SuggestionKind) Columns() []string {
	if k == SuggestProduct {
		return ProductColumns
	}
	return CompanyColumns
}
