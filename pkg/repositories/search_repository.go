package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/excelq/excelq-engine/pkg/database"
	"github.com/excelq/excelq-engine/pkg/models"
)

// indexSheetCondition matches the designated reference-code index sheet by
// name: any sheet whose name contains both "list" and "rc" tokens, in either
// order, plus the two literal spellings seen in the wild.
const indexSheetCondition = `(LOWER(s.sheet_name) LIKE '%list%rc%'
		OR LOWER(s.sheet_name) LIKE '%rc%list%'
		OR LOWER(s.sheet_name) = 'list of rc'
		OR LOWER(s.sheet_name) = 'list_of_rc')`

// meetingDatePattern is the fixed DD.MM.YYYY textual form used on the index
// sheet. Dates in this form never parse as Postgres dates directly and need
// TO_DATE.
const meetingDatePattern = `^\d{2}\.\d{2}\.\d{4}$`

// SearchRow is one cross-sheet match before deduplication and grouping.
type SearchRow struct {
	SheetName string
	FileName  string
	RowNumber int
	Data      models.RowData
	Annexure  *string
	Title     *string
	DateValue *string
	RCValue   *string
}

// SearchRepository runs the cross-sheet JSONB queries behind reference
// resolution, searching, and suggestions.
type SearchRepository interface {
	// LookupReferenceCodes resolves distinct reference codes from the index
	// sheet whose meeting date falls within [dateFrom, dateTo]; either bound
	// may be empty, meaning unbounded on that side.
	LookupReferenceCodes(ctx context.Context, dateFrom, dateTo string) ([]string, error)

	// ReferenceCodeDates maps every reference code on the index sheet to its
	// meeting date.
	ReferenceCodeDates(ctx context.Context) (map[string]string, error)

	// SearchRows scans all rows across all sheets for the combined predicate:
	// AND across filter kinds, OR within a kind's candidate columns, plus the
	// serialized-row fallback.
	SearchRows(ctx context.Context, rcNumbers []string, company, product string) ([]SearchRow, error)

	// Suggestions returns up to limit distinct values of the kind's candidate
	// columns starting with prefix, case-insensitively, alphabetically.
	Suggestions(ctx context.Context, kind models.SuggestionKind, prefix string, limit int) ([]string, error)

	// RowsBySheetName reads one sheet's rows filtered by exact-column
	// company/product contains-match and literal date equality.
	RowsBySheetName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error)
}

type searchRepository struct {
	db *database.DB
}

// NewSearchRepository creates a new SearchRepository.
func NewSearchRepository(db *database.DB) SearchRepository {
	return &searchRepository{db: db}
}

var _ SearchRepository = (*searchRepository)(nil)

// jsonbCoalesce renders COALESCE over the candidate columns of a JSONB row.
// Candidate lists are compile-time constants, never user input.
func jsonbCoalesce(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("data->>'%s'", c)
	}
	return "COALESCE(" + strings.Join(parts, ", ") + ")"
}

// jsonbAnyNotNull renders an OR chain requiring at least one candidate column
// to be present.
func jsonbAnyNotNull(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("data->>'%s' IS NOT NULL", c)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// jsonbAnyILIKE renders an OR chain matching any candidate column (and the
// serialized full row) against the bound pattern parameters.
func jsonbAnyILIKE(columns []string, params ...int) string {
	var parts []string
	for _, c := range columns {
		for _, p := range params {
			parts = append(parts, fmt.Sprintf("data->>'%s' ILIKE $%d", c, p))
		}
	}
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("data::text ILIKE $%d", p))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// meetingDateCondition renders the date-range predicate for the index sheet:
// the fixed DD.MM.YYYY column when present, generic date columns otherwise.
// op is ">=", "<=", or "BETWEEN" (consuming two parameters).
func meetingDateCondition(op string, firstParam int) string {
	fallback := fmt.Sprintf("COALESCE((data->>'%s')::date, (data->>'%s')::date, (data->>'%s')::date, (data->>'%s')::date)",
		models.GenericDateColumns[0], models.GenericDateColumns[1], models.GenericDateColumns[2], models.GenericDateColumns[3])

	// Bounds are ISO date strings from the API, so a plain cast is
	// DateStyle-independent; only the column side carries the DD.MM.YYYY
	// spreadsheet form.
	var fixed, generic string
	if op == "BETWEEN" {
		bound := fmt.Sprintf("$%d::date AND $%d::date", firstParam, firstParam+1)
		fixed = fmt.Sprintf("TO_DATE(data->>'%s', 'DD.MM.YYYY') BETWEEN %s", models.MeetingDateColumn, bound)
		generic = fmt.Sprintf("%s BETWEEN %s", fallback, bound)
	} else {
		bound := fmt.Sprintf("$%d::date", firstParam)
		fixed = fmt.Sprintf("TO_DATE(data->>'%s', 'DD.MM.YYYY') %s %s", models.MeetingDateColumn, op, bound)
		generic = fmt.Sprintf("%s %s %s", fallback, op, bound)
	}

	return fmt.Sprintf(`(CASE
			WHEN data->>'%s' ~ '%s' THEN %s
			ELSE %s
		END)`, models.MeetingDateColumn, meetingDatePattern, fixed, generic)
}

func (r *searchRepository) LookupReferenceCodes(ctx context.Context, dateFrom, dateTo string) ([]string, error) {
	var dateCond string
	var args []any
	switch {
	case dateFrom != "" && dateTo != "":
		dateCond = meetingDateCondition("BETWEEN", 1)
		args = []any{dateFrom, dateTo}
	case dateFrom != "":
		dateCond = meetingDateCondition(">=", 1)
		args = []any{dateFrom}
	case dateTo != "":
		dateCond = meetingDateCondition("<=", 1)
		args = []any{dateTo}
	default:
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS rc_number
		FROM excel_data ed
		JOIN excel_sheets s ON s.id = ed.sheet_id
		WHERE %s
			AND %s
			AND %s`,
		jsonbCoalesce(models.ReferenceCodeColumns),
		indexSheetCondition,
		dateCond,
		jsonbAnyNotNull(models.ReferenceCodeColumns))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reference codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code *string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan reference code: %w", err)
		}
		if code == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*code); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}

	return codes, rows.Err()
}

func (r *searchRepository) ReferenceCodeDates(ctx context.Context) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS rc_number, data->>'%s' AS meeting_date
		FROM excel_data ed
		JOIN excel_sheets s ON s.id = ed.sheet_id
		WHERE %s
			AND %s
			AND data->>'%s' IS NOT NULL
		ORDER BY rc_number`,
		jsonbCoalesce(models.ReferenceCodeColumns),
		models.MeetingDateColumn,
		indexSheetCondition,
		jsonbAnyNotNull(models.ReferenceCodeColumns),
		models.MeetingDateColumn)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference code dates: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]string)
	for rows.Next() {
		var code, date *string
		if err := rows.Scan(&code, &date); err != nil {
			return nil, fmt.Errorf("failed to scan reference code date: %w", err)
		}
		if code == nil || date == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*code); trimmed != "" {
			dates[trimmed] = *date
		}
	}

	return dates, rows.Err()
}

// digitsOnly strips everything but digits, so "463rd" also matches "463".
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *searchRepository) SearchRows(ctx context.Context, rcNumbers []string, company, product string) ([]SearchRow, error) {
	var conds []string
	var args []any

	if len(rcNumbers) > 0 {
		var rcConds []string
		for _, rc := range rcNumbers {
			full := len(args) + 1
			digits := len(args) + 2
			rcConds = append(rcConds, jsonbAnyILIKE(models.ReferenceCodeColumns, full, digits))
			args = append(args, "%"+rc+"%", "%"+digitsOnly(rc)+"%")
		}
		conds = append(conds, "("+strings.Join(rcConds, " OR ")+")")
	}

	if company != "" {
		conds = append(conds, jsonbAnyILIKE(models.CompanyColumns, len(args)+1))
		args = append(args, "%"+company+"%")
	}

	if product != "" {
		conds = append(conds, jsonbAnyILIKE(models.ProductColumns, len(args)+1))
		args = append(args, "%"+product+"%")
	}

	if len(conds) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT
			s.sheet_name,
			f.original_name AS file_name,
			ed.row_number,
			ed.data,
			data->>'annexure' AS annexure,
			data->>'title' AS title,
			%s AS date_value,
			%s AS rc_value
		FROM excel_data ed
		JOIN excel_sheets s ON s.id = ed.sheet_id
		JOIN uploaded_files f ON f.id = s.file_id
		WHERE %s
		ORDER BY s.sheet_name, ed.row_number`,
		jsonbCoalesce(append(append([]string{}, models.GenericDateColumns...), models.MeetingDateColumn)),
		jsonbCoalesce(models.ReferenceCodeColumns),
		strings.Join(conds, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search rows: %w", err)
	}
	defer rows.Close()

	var matches []SearchRow
	for rows.Next() {
		var m SearchRow
		if err := rows.Scan(&m.SheetName, &m.FileName, &m.RowNumber, &m.Data,
			&m.Annexure, &m.Title, &m.DateValue, &m.RCValue); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (r *searchRepository) Suggestions(ctx context.Context, kind models.SuggestionKind, prefix string, limit int) ([]string, error) {
	columns := kind.Columns()

	var likeParts []string
	for _, c := range columns {
		likeParts = append(likeParts, fmt.Sprintf("data->>'%s' ILIKE $1", c))
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS suggestion
		FROM excel_data ed
		WHERE (%s)
			AND %s IS NOT NULL
		ORDER BY suggestion
		LIMIT $2`,
		jsonbCoalesce(columns),
		strings.Join(likeParts, " OR "),
		jsonbCoalesce(columns))

	rows, err := r.db.Query(ctx, query, prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []string
	for rows.Next() {
		var s *string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		if s == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*s); trimmed != "" {
			suggestions = append(suggestions, trimmed)
		}
	}

	return suggestions, rows.Err()
}

func (r *searchRepository) RowsBySheetName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error) {
	conds := []string{"s.sheet_name = $1"}
	args := []any{sheetName}

	if company != "" {
		conds = append(conds, fmt.Sprintf("data->>'company_name' ILIKE $%d", len(args)+1))
		args = append(args, "%"+company+"%")
	}
	if product != "" {
		conds = append(conds, fmt.Sprintf("data->>'product' ILIKE $%d", len(args)+1))
		args = append(args, "%"+product+"%")
	}
	if date != "" {
		conds = append(conds, fmt.Sprintf("data->>'date' = $%d", len(args)+1))
		args = append(args, date)
	}

	query := fmt.Sprintf(`
		SELECT ed.row_number, ed.data
		FROM excel_data ed
		JOIN excel_sheets s ON s.id = ed.sheet_id
		WHERE %s
		ORDER BY ed.row_number`,
		strings.Join(conds, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}
