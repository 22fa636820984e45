package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/logging"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

// SearchService resolves reference codes from date ranges and runs the
// cross-sheet search with deduplication and per-sheet grouping.
type SearchService interface {
	// Search runs the two-phase search: optional date-range → reference-code
	// resolution, then the combined text/code predicate across all sheets.
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error)

	// ReferenceCodeDates maps reference codes to meeting dates from the
	// index sheet.
	ReferenceCodeDates(ctx context.Context) (map[string]string, error)

	// SheetRowsByName reads one sheet's rows with exact-column filters.
	SheetRowsByName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error)
}

type searchService struct {
	searchRepo repositories.SearchRepository
	logger     *zap.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(searchRepo repositories.SearchRepository, logger *zap.Logger) SearchService {
	return &searchService{searchRepo: searchRepo, logger: logger}
}

var _ SearchService = (*searchService)(nil)

func (s *searchService) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	if !query.HasCriteria() {
		return nil, apperrors.ErrInvalidQuery
	}

	criteria := models.SearchCriteria{
		Company:        query.Company,
		Product:        query.Product,
		DateFrom:       optional(query.DateFrom),
		DateTo:         optional(query.DateTo),
		DateRange:      optional(query.DateRangeLabel()),
		RCNumbersFound: []string{},
	}

	var rcNumbers []string
	if query.HasDateRange() {
		codes, err := s.searchRepo.LookupReferenceCodes(ctx, query.DateFrom, query.DateTo)
		if err != nil {
			// A broken lookup degrades to a search without the
			// reference-code filter; a healthy lookup with zero matches is
			// handled below and is not an error.
			s.logger.Warn("Reference code lookup failed, continuing without code filter",
				zap.String("error", logging.SanitizeError(err)))
		} else if len(codes) == 0 {
			// An explicit date filter that resolves no codes means "no
			// results", never "ignore the date filter".
			return &models.SearchResult{
				Summary: models.SearchSummary{SearchCriteria: criteria},
				Results: []models.SheetMatches{},
			}, nil
		} else {
			rcNumbers = codes
			criteria.RCNumbersFound = codes
			s.logger.Info("Resolved reference codes for date range",
				zap.Int("codes", len(codes)),
				zap.String("range", query.DateRangeLabel()))
		}
	}

	if len(rcNumbers) == 0 && query.Company == "" && query.Product == "" {
		return nil, apperrors.ErrInvalidQuery
	}

	rows, err := s.searchRepo.SearchRows(ctx, rcNumbers, query.Company, query.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	groups := groupBySheet(rows)

	total := 0
	for _, g := range groups {
		total += g.TotalMatches
	}

	return &models.SearchResult{
		Summary: models.SearchSummary{
			TotalRecords:   total,
			TotalSheets:    len(groups),
			SearchCriteria: criteria,
		},
		Results: groups,
	}, nil
}

// groupBySheet folds scan-ordered matches into per-sheet groups. A record is
// identified by (sheet_name, row_number); matches surfaced more than once by
// OR branches collapse to a single record. Group order follows first
// appearance in the scan, which is sorted by sheet name.
func groupBySheet(rows []repositories.SearchRow) []models.SheetMatches {
	groups := []models.SheetMatches{}
	index := make(map[string]int)
	seen := make(map[string]struct{})

	for _, row := range rows {
		gi, ok := index[row.SheetName]
		if !ok {
			gi = len(groups)
			index[row.SheetName] = gi
			groups = append(groups, models.SheetMatches{
				SheetName: row.SheetName,
				FileName:  row.FileName,
				Annexure:  deref(row.Annexure),
				Title:     deref(row.Title),
				Records:   []models.MatchedRecord{},
			})
		}

		key := fmt.Sprintf("%s-%d", row.SheetName, row.RowNumber)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		// SQL extracts these from fixed candidate columns; numeric JSONB
		// values come back null there, so fall back to the row itself.
		dateValue := row.DateValue
		if dateValue == nil {
			if v, ok := row.Data.FirstPresent(append(append([]string{}, models.GenericDateColumns...), models.MeetingDateColumn)); ok {
				dateValue = &v
			}
		}
		rcValue := row.RCValue
		if rcValue == nil {
			if v, ok := row.Data.FirstPresent(models.ReferenceCodeColumns); ok {
				rcValue = &v
			}
		}

		groups[gi].Records = append(groups[gi].Records, models.MatchedRecord{
			RowNumber: row.RowNumber,
			Data:      row.Data,
			DateValue: dateValue,
			RCValue:   rcValue,
		})
		groups[gi].TotalMatches++
	}

	return groups
}

func (s *searchService) ReferenceCodeDates(ctx context.Context) (map[string]string, error) {
	dates, err := s.searchRepo.ReferenceCodeDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference code dates: %w", err)
	}
	return dates, nil
}

func (s *searchService) SheetRowsByName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error) {
	rows, err := s.searchRepo.RowsBySheetName(ctx, sheetName, company, product, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}
	return rows, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
