package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
	sqlutil "github.com/excelq/excelq-engine/pkg/sql"
)

// DefaultPageSize is the row page size when the caller does not pass one.
const DefaultPageSize = 15

// SheetPage is one page of a sheet's rows for display.
type SheetPage struct {
	SheetName   string           `json:"sheetName"`
	Headers     []string         `json:"headers"`
	TotalRows   int              `json:"totalRows"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	Limit       int              `json:"limit"`
	Data        []models.RowData `json:"data"`
}

// SheetQueryPage extends SheetPage with the applied ad-hoc query.
type SheetQueryPage struct {
	SheetPage
	FilteredRows   int                  `json:"filteredRows"`
	AppliedFilters []models.SheetFilter `json:"appliedFilters"`
	SortBy         string               `json:"sortBy,omitempty"`
	SortOrder      string               `json:"sortOrder,omitempty"`
}

// SheetService reads sheet content for pagination and ad-hoc querying.
type SheetService interface {
	GetPage(ctx context.Context, sheetID uuid.UUID, page, limit int) (*SheetPage, error)
	Query(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) (*SheetQueryPage, error)
}

type sheetService struct {
	sheetRepo repositories.SheetRepository
	rowRepo   repositories.RowRepository
}

// NewSheetService creates a new SheetService.
func NewSheetService(sheetRepo repositories.SheetRepository, rowRepo repositories.RowRepository) SheetService {
	return &sheetService{sheetRepo: sheetRepo, rowRepo: rowRepo}
}

var _ SheetService = (*sheetService)(nil)

func (s *sheetService) GetPage(ctx context.Context, sheetID uuid.UUID, page, limit int) (*SheetPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	rows, err := s.rowRepo.GetPage(ctx, sheetID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &SheetPage{
		SheetName:   sheet.SheetName,
		Headers:     sheet.Headers,
		TotalRows:   sheet.RowCount,
		CurrentPage: page,
		TotalPages:  totalPages(sheet.RowCount, limit),
		Limit:       limit,
		Data:        rowData(rows),
	}, nil
}

func (s *sheetService) Query(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) (*SheetQueryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}

	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	// User-supplied columns never reach SQL text unchecked.
	if err := sqlutil.ValidateFilters(q.Filters, sheet.Headers); err != nil {
		return nil, err
	}
	order, err := sqlutil.ValidateSort(q.SortBy, q.SortOrder, sheet.Headers)
	if err != nil {
		return nil, err
	}
	q.SortOrder = order

	rows, total, err := s.rowRepo.QueryPage(ctx, sheetID, q)
	if err != nil {
		return nil, err
	}

	return &SheetQueryPage{
		SheetPage: SheetPage{
			SheetName:   sheet.SheetName,
			Headers:     sheet.Headers,
			TotalRows:   total,
			CurrentPage: q.Page,
			TotalPages:  totalPages(total, q.Limit),
			Limit:       q.Limit,
			Data:        rowData(rows),
		},
		FilteredRows:   total,
		AppliedFilters: q.Filters,
		SortBy:         q.SortBy,
		SortOrder:      q.SortOrder,
	}, nil
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func rowData(rows []models.Row) []models.RowData {
	data := make([]models.RowData, len(rows))
	for i, r := range rows {
		data[i] = r.Data
	}
	return data
}
