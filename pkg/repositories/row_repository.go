package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/excelq/excelq-engine/pkg/database"
	"github.com/excelq/excelq-engine/pkg/models"
	sqlutil "github.com/excelq/excelq-engine/pkg/sql"
)

// InsertBatchSize bounds one multi-row INSERT during ingestion. Batching is a
// throughput measure only; all batches run inside the caller's transaction so
// they become visible together or not at all.
const InsertBatchSize = 1000

// RowRepository provides data access for spreadsheet row content.
type RowRepository interface {
	InsertRows(ctx context.Context, tx pgx.Tx, sheetID uuid.UUID, rows []models.Row) error
	GetPage(ctx context.Context, sheetID uuid.UUID, limit, offset int) ([]models.Row, error)
	QueryPage(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) ([]models.Row, int, error)
}

type rowRepository struct {
	db *database.DB
}

// NewRowRepository creates a new RowRepository.
func NewRowRepository(db *database.DB) RowRepository {
	return &rowRepository{db: db}
}

var _ RowRepository = (*rowRepository)(nil)

func (r *rowRepository) InsertRows(ctx context.Context, tx pgx.Tx, sheetID uuid.UUID, rows []models.Row) error {
	for start := 0; start < len(rows); start += InsertBatchSize {
		end := start + InsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertRowBatch(ctx, tx, sheetID, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func insertRowBatch(ctx context.Context, tx pgx.Tx, sheetID uuid.UUID, batch []models.Row) error {
	if len(batch) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO excel_data (sheet_id, row_number, data) VALUES `)
	args := make([]any, 0, len(batch)*3)
	for i, row := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, sheetID, row.RowNumber, row.Data)
	}

	if _, err := tx.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert row batch: %w", err)
	}

	return nil
}

func (r *rowRepository) GetPage(ctx context.Context, sheetID uuid.UUID, limit, offset int) ([]models.Row, error) {
	query := `
		SELECT row_number, data
		FROM excel_data
		WHERE sheet_id = $1
		ORDER BY row_number
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, sheetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet page: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// QueryPage runs an ad-hoc filtered, sorted, paginated read over one sheet.
// Filter columns and the sort column must already be validated against the
// sheet's headers (pkg/sql); here they only ever appear as bound parameters
// on the JSONB key lookup, never as SQL text.
func (r *rowRepository) QueryPage(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) ([]models.Row, int, error) {
	where := "sheet_id = $1"
	args := []any{sheetID}

	for _, f := range q.Filters {
		op, err := sqlutil.OperatorSQL(f.Operator)
		if err != nil {
			return nil, 0, err
		}
		where += fmt.Sprintf(" AND data->>$%d %s $%d", len(args)+1, op, len(args)+2)
		args = append(args, f.Column, sqlutil.OperatorValue(f.Operator, f.Value))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM excel_data WHERE " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered rows: %w", err)
	}

	order := "ORDER BY row_number"
	if q.SortBy != "" {
		dir, err := sqlutil.ValidateSort(q.SortBy, q.SortOrder, []string{q.SortBy})
		if err != nil {
			return nil, 0, err
		}
		order = fmt.Sprintf("ORDER BY data->>$%d %s", len(args)+1, dir)
		args = append(args, q.SortBy)
	}

	offset := (q.Page - 1) * q.Limit
	dataQuery := fmt.Sprintf(
		"SELECT row_number, data FROM excel_data WHERE %s %s LIMIT $%d OFFSET $%d",
		where, order, len(args)+1, len(args)+2)
	args = append(args, q.Limit, offset)

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query filtered rows: %w", err)
	}
	defer rows.Close()

	page, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return page, total, nil
}

func scanRows(rows pgx.Rows) ([]models.Row, error) {
	var out []models.Row
	for rows.Next() {
		var row models.Row
		if err := rows.Scan(&row.RowNumber, &row.Data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
