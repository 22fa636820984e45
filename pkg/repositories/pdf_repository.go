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

// PDFRepository provides data access for stored PDF documents.
type PDFRepository interface {
	Insert(ctx context.Context, doc *models.PDFDocument) error
	GetPathByRCNumber(ctx context.Context, rcNumber string) (string, error)
	List(ctx context.Context) ([]*models.PDFDocument, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PDFDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pdfRepository struct {
	db *database.DB
}

// NewPDFRepository creates a new PDFRepository.
func NewPDFRepository(db *database.DB) PDFRepository {
	return &pdfRepository{db: db}
}

var _ PDFRepository = (*pdfRepository)(nil)

func (r *pdfRepository) Insert(ctx context.Context, doc *models.PDFDocument) error {
	query := `
		INSERT INTO pdf_documents (rc_number, pdf_path, uploaded_at)
		VALUES ($1, $2, NOW())
		RETURNING id, uploaded_at`

	err := r.db.QueryRow(ctx, query, doc.RCNumber, doc.PDFPath).
		Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pdf document: %w", err)
	}

	return nil
}

func (r *pdfRepository) GetPathByRCNumber(ctx context.Context, rcNumber string) (string, error) {
	query := `
		SELECT pdf_path FROM pdf_documents
		WHERE UPPER(TRIM(rc_number)) = $1
		LIMIT 1`

	var path string
	err := r.db.QueryRow(ctx, query, rcNumber).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to look up pdf: %w", err)
	}

	return path, nil
}

func (r *pdfRepository) List(ctx context.Context) ([]*models.PDFDocument, error) {
	query := `
		SELECT id, rc_number, pdf_path, uploaded_at
		FROM pdf_documents
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pdf documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.PDFDocument
	for rows.Next() {
		d := &models.PDFDocument{}
		if err := rows.Scan(&d.ID, &d.RCNumber, &d.PDFPath, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pdf document: %w", err)
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func (r *pdfRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PDFDocument, error) {
	query := `
		SELECT id, rc_number, pdf_path, uploaded_at
		FROM pdf_documents
		WHERE id = $1`

	d := &models.PDFDocument{}
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.RCNumber, &d.PDFPath, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pdf document: %w", err)
	}

	return d, nil
}

func (r *pdfRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM pdf_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pdf document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
