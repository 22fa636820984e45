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

// DuplicateGroup describes one original file name uploaded more than once:
// the newest copy to keep and the older copies to delete.
type DuplicateGroup struct {
	Name      string
	KeepID    uuid.UUID
	DeleteIDs []uuid.UUID
}

// FileRepository provides data access for uploaded spreadsheet files.
type FileRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, file *models.UploadedFile) error
	List(ctx context.Context) ([]*models.UploadedFile, error)
	Latest(ctx context.Context) (*models.UploadedFile, error)
	LatestByName(ctx context.Context, name string) (*models.UploadedFile, error)
	Delete(ctx context.Context, fileID uuid.UUID) (string, error)
	DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error)
	DeleteMany(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
}

type fileRepository struct {
	db *database.DB
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(db *database.DB) FileRepository {
	return &fileRepository{db: db}
}

var _ FileRepository = (*fileRepository)(nil)

func (r *fileRepository) Insert(ctx context.Context, tx pgx.Tx, file *models.UploadedFile) error {
	query := `
		INSERT INTO uploaded_files (original_name, file_path, upload_date)
		VALUES ($1, $2, NOW())
		RETURNING id, upload_date`

	err := tx.QueryRow(ctx, query, file.OriginalName, file.FilePath).
		Scan(&file.ID, &file.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to insert uploaded file: %w", err)
	}

	return nil
}

func (r *fileRepository) List(ctx context.Context) ([]*models.UploadedFile, error) {
	query := `
		SELECT id, original_name, upload_date
		FROM uploaded_files
		ORDER BY upload_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded files: %w", err)
	}
	defer rows.Close()

	var files []*models.UploadedFile
	for rows.Next() {
		f := &models.UploadedFile{}
		if err := rows.Scan(&f.ID, &f.OriginalName, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan uploaded file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func (r *fileRepository) Latest(ctx context.Context) (*models.UploadedFile, error) {
	query := `
		SELECT id, original_name, upload_date
		FROM uploaded_files
		ORDER BY upload_date DESC
		LIMIT 1`

	f := &models.UploadedFile{}
	err := r.db.QueryRow(ctx, query).Scan(&f.ID, &f.OriginalName, &f.UploadDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest uploaded file: %w", err)
	}

	return f, nil
}

func (r *fileRepository) LatestByName(ctx context.Context, name string) (*models.UploadedFile, error) {
	query := `
		SELECT id, original_name, upload_date
		FROM uploaded_files
		WHERE original_name = $1
		ORDER BY upload_date DESC
		LIMIT 1`

	f := &models.UploadedFile{}
	err := r.db.QueryRow(ctx, query, name).Scan(&f.ID, &f.OriginalName, &f.UploadDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check uploaded file name: %w", err)
	}

	return f, nil
}

// Delete removes a file; sheets and rows go with it via FK cascade.
// Returns the deleted file's original name.
func (r *fileRepository) Delete(ctx context.Context, fileID uuid.UUID) (string, error) {
	query := `DELETE FROM uploaded_files WHERE id = $1 RETURNING original_name`

	var name string
	err := r.db.QueryRow(ctx, query, fileID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to delete uploaded file: %w", err)
	}

	return name, nil
}

func (r *fileRepository) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	query := `
		SELECT original_name, id
		FROM uploaded_files
		WHERE original_name IN (
			SELECT original_name FROM uploaded_files
			GROUP BY original_name HAVING COUNT(*) > 1
		)
		ORDER BY original_name, upload_date DESC, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate files: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	var current *DuplicateGroup
	for rows.Next() {
		var name string
		var id uuid.UUID
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate file: %w", err)
		}
		if current == nil || current.Name != name {
			groups = append(groups, DuplicateGroup{Name: name, KeepID: id})
			current = &groups[len(groups)-1]
			continue
		}
		current.DeleteIDs = append(current.DeleteIDs, id)
	}

	return groups, rows.Err()
}

func (r *fileRepository) DeleteMany(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM uploaded_files WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete duplicate files: %w", err)
	}

	return nil
}
