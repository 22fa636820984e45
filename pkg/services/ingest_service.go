package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/excel"
	"github.com/excelq/excelq-engine/pkg/logging"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

// TxBeginner starts write transactions. *database.DB satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SheetInfo identifies one persisted sheet in an ingestion result.
type SheetInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	FileID     uuid.UUID      `json:"fileId"`
	FileName   string         `json:"fileName"`
	SheetNames []string       `json:"sheetNames"`
	Sheets     []SheetInfo    `json:"sheets"`
	RowCounts  map[string]int `json:"rowCounts"`
	TotalRows  int            `json:"totalRows"`
}

// IngestService converts an uploaded spreadsheet into row store entries.
type IngestService interface {
	// Ingest parses the document and persists the file, its sheets, and all
	// rows as one atomic unit. The reader's content is not retained.
	Ingest(ctx context.Context, originalName, filePath string, document io.Reader) (*IngestResult, error)
}

type ingestService struct {
	db        TxBeginner
	fileRepo  repositories.FileRepository
	sheetRepo repositories.SheetRepository
	rowRepo   repositories.RowRepository
	logger    *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(
	db TxBeginner,
	fileRepo repositories.FileRepository,
	sheetRepo repositories.SheetRepository,
	rowRepo repositories.RowRepository,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		db:        db,
		fileRepo:  fileRepo,
		sheetRepo: sheetRepo,
		rowRepo:   rowRepo,
		logger:    logger,
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) Ingest(ctx context.Context, originalName, filePath string, document io.Reader) (*IngestResult, error) {
	workbook, err := excel.Parse(document)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingestion transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	file := &models.UploadedFile{OriginalName: originalName, FilePath: filePath}
	if err := s.fileRepo.Insert(ctx, tx, file); err != nil {
		return nil, err
	}

	result := &IngestResult{
		FileID:     file.ID,
		FileName:   originalName,
		SheetNames: workbook.SheetNames(),
		RowCounts:  make(map[string]int, len(workbook.Sheets)),
	}

	for _, parsed := range workbook.Sheets {
		sheet := &models.Sheet{
			FileID:    file.ID,
			SheetName: parsed.Name,
			Headers:   parsed.Headers,
			RowCount:  len(parsed.Rows),
		}
		if err := s.sheetRepo.Insert(ctx, tx, sheet); err != nil {
			return nil, err
		}

		rows := make([]models.Row, len(parsed.Rows))
		for i, data := range parsed.Rows {
			rows[i] = models.Row{RowNumber: i + 1, Data: data}
		}
		if err := s.rowRepo.InsertRows(ctx, tx, sheet.ID, rows); err != nil {
			return nil, err
		}

		result.Sheets = append(result.Sheets, SheetInfo{ID: sheet.ID, Name: sheet.SheetName})
		result.RowCounts[parsed.Name] = len(parsed.Rows)
		result.TotalRows += len(parsed.Rows)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion: %w", err)
	}

	s.logger.Info("Ingested spreadsheet",
		zap.String("file", logging.TruncateString(originalName, 120)),
		zap.String("file_id", file.ID.String()),
		zap.Int("sheets", len(workbook.Sheets)),
		zap.Int("total_rows", result.TotalRows))

	return result, nil
}
