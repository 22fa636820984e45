package models

// SheetFilter is one ad-hoc filter condition against a sheet's column.
type SheetFilter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// SheetQuery is an ad-hoc filtered, sorted, paginated read of one sheet.
type SheetQuery struct {
	Filters   []SheetFilter `json:"filters"`
	SortBy    string        `json:"sortBy"`
	SortOrder string        `json:"sortOrder"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
}
