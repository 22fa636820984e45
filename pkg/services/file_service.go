package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

// LatestFile is the newest uploaded file together with its sheets.
type LatestFile struct {
	File   *models.UploadedFile
	Sheets []*models.Sheet
}

// CleanupReport describes one duplicate-name group handled by
// CleanupDuplicates.
type CleanupReport struct {
	Name    string    `json:"name"`
	KeptID  uuid.UUID `json:"kept_id"`
	Deleted int       `json:"deleted"`
}

// FileService manages the lifecycle of uploaded files.
type FileService interface {
	List(ctx context.Context) ([]*models.UploadedFile, error)
	Latest(ctx context.Context) (*LatestFile, error)
	CheckName(ctx context.Context, name string) (*models.UploadedFile, error)
	SheetsByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error)
	Delete(ctx context.Context, fileID uuid.UUID) (string, error)

	// CleanupDuplicates keeps the most recently uploaded copy per distinct
	// original name and deletes the older copies in one transaction.
	CleanupDuplicates(ctx context.Context) ([]CleanupReport, error)
}

type fileService struct {
	db        TxBeginner
	fileRepo  repositories.FileRepository
	sheetRepo repositories.SheetRepository
	logger    *zap.Logger
}

// NewFileService creates a new FileService.
func NewFileService(db TxBeginner, fileRepo repositories.FileRepository, sheetRepo repositories.SheetRepository, logger *zap.Logger) FileService {
	return &fileService{db: db, fileRepo: fileRepo, sheetRepo: sheetRepo, logger: logger}
}

var _ FileService = (*fileService)(nil)

func (s *fileService) List(ctx context.Context) ([]*models.UploadedFile, error) {
	return s.fileRepo.List(ctx)
}

func (s *fileService) Latest(ctx context.Context) (*LatestFile, error) {
	file, err := s.fileRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	sheets, err := s.sheetRepo.GetByFile(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	return &LatestFile{File: file, Sheets: sheets}, nil
}

func (s *fileService) CheckName(ctx context.Context, name string) (*models.UploadedFile, error) {
	return s.fileRepo.LatestByName(ctx, name)
}

func (s *fileService) SheetsByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error) {
	return s.sheetRepo.GetByFile(ctx, fileID)
}

func (s *fileService) Delete(ctx context.Context, fileID uuid.UUID) (string, error) {
	name, err := s.fileRepo.Delete(ctx, fileID)
	if err != nil {
		return "", err
	}

	s.logger.Info("Deleted uploaded file",
		zap.String("file_id", fileID.String()),
		zap.String("name", name))
	return name, nil
}

func (s *fileService) CleanupDuplicates(ctx context.Context) ([]CleanupReport, error) {
	groups, err := s.fileRepo.DuplicateGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []CleanupReport{}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	reports := make([]CleanupReport, 0, len(groups))
	for _, g := range groups {
		if err := s.fileRepo.DeleteMany(ctx, tx, g.DeleteIDs); err != nil {
			return nil, err
		}
		reports = append(reports, CleanupReport{Name: g.Name, KeptID: g.KeepID, Deleted: len(g.DeleteIDs)})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cleanup: %w", err)
	}

	s.logger.Info("Cleaned up duplicate uploads", zap.Int("groups", len(reports)))
	return reports, nil
}
