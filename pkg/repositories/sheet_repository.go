package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/database"
	"github.com/excelq/excelq-engine/pkg/models"
)

// SheetRepository provides data access for sheets of uploaded files.
type SheetRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, sheet *models.Sheet) error
	GetByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error)
	GetByID(ctx context.Context, sheetID uuid.UUID) (*models.Sheet, error)
}

type sheetRepository struct {
	db *database.DB
}

// NewSheetRepository creates a new SheetRepository.
func NewSheetRepository(db *database.DB) SheetRepository {
	return &sheetRepository{db: db}
}

var _ SheetRepository = (*sheetRepository)(nil)

func (r *sheetRepository) Insert(ctx context.Context, tx pgx.Tx, sheet *models.Sheet) error {
	query := `
		INSERT INTO excel_sheets (file_id, sheet_name, headers, row_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	headers := sheet.Headers
	if headers == nil {
		headers = []string{}
	}

	err := tx.QueryRow(ctx, query, sheet.FileID, sheet.SheetName, headers, sheet.RowCount).
		Scan(&sheet.ID, &sheet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sheet: %w", err)
	}

	return nil
}

func (r *sheetRepository) GetByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error) {
	query := `
		SELECT id, file_id, sheet_name, headers, row_count, created_at
		FROM excel_sheets
		WHERE file_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []*models.Sheet
	for rows.Next() {
		s := &models.Sheet{}
		if err := rows.Scan(&s.ID, &s.FileID, &s.SheetName, &s.Headers, &s.RowCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, s)
	}

	return sheets, rows.Err()
}

func (r *sheetRepository) GetByID(ctx context.Context, sheetID uuid.UUID) (*models.Sheet, error) {
	query := `
		SELECT id, file_id, sheet_name, headers, row_count, created_at
		FROM excel_sheets
		WHERE id = $1`

	s := &models.Sheet{}
	err := r.db.QueryRow(ctx, query, sheetID).
		Scan(&s.ID, &s.FileID, &s.SheetName, &s.Headers, &s.RowCount, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}

	return s, nil
}
