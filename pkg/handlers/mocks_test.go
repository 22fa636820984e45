package handlers

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/services"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockFileServiceForHandler implements services.FileService for handler tests.
type mockFileServiceForHandler struct {
	files       []*models.UploadedFile
	latest      *services.LatestFile
	checked     *models.UploadedFile
	sheets      []*models.Sheet
	deletedName string
	reports     []services.CleanupReport
	listErr     error
	latestErr   error
	checkErr    error
	sheetsErr   error
	deleteErr   error
	cleanupErr  error
}

func (m *mockFileServiceForHandler) List(ctx context.Context) ([]*models.UploadedFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockFileServiceForHandler) Latest(ctx context.Context) (*services.LatestFile, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest, nil
}

func (m *mockFileServiceForHandler) CheckName(ctx context.Context, name string) (*models.UploadedFile, error) {
	if m.checkErr != nil {
		return nil, m.checkErr
	}
	return m.checked, nil
}

func (m *mockFileServiceForHandler) SheetsByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error) {
	if m.sheetsErr != nil {
		return nil, m.sheetsErr
	}
	return m.sheets, nil
}

func (m *mockFileServiceForHandler) Delete(ctx context.Context, fileID uuid.UUID) (string, error) {
	if m.deleteErr != nil {
		return "", m.deleteErr
	}
	return m.deletedName, nil
}

func (m *mockFileServiceForHandler) CleanupDuplicates(ctx context.Context) ([]services.CleanupReport, error) {
	if m.cleanupErr != nil {
		return nil, m.cleanupErr
	}
	return m.reports, nil
}

// mockSheetServiceForHandler implements services.SheetService for handler tests.
type mockSheetServiceForHandler struct {
	page      *services.SheetPage
	queryPage *services.SheetQueryPage
	pageErr   error
	queryErr  error
	lastQuery models.SheetQuery
}

func (m *mockSheetServiceForHandler) GetPage(ctx context.Context, sheetID uuid.UUID, page, limit int) (*services.SheetPage, error) {
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	return m.page, nil
}

func (m *mockSheetServiceForHandler) Query(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) (*services.SheetQueryPage, error) {
	m.lastQuery = q
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.queryPage, nil
}

// mockSearchServiceForHandler implements services.SearchService for handler tests.
type mockSearchServiceForHandler struct {
	result    *models.SearchResult
	searchErr error
	lastQuery models.SearchQuery
	dates     map[string]string
	datesErr  error
	rows      []models.Row
	rowsErr   error
	lastSheet string
}

func (m *mockSearchServiceForHandler) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	m.lastQuery = query
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.result, nil
}

func (m *mockSearchServiceForHandler) ReferenceCodeDates(ctx context.Context) (map[string]string, error) {
	if m.datesErr != nil {
		return nil, m.datesErr
	}
	return m.dates, nil
}

func (m *mockSearchServiceForHandler) SheetRowsByName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error) {
	m.lastSheet = sheetName
	if m.rowsErr != nil {
		return nil, m.rowsErr
	}
	return m.rows, nil
}

// mockSuggestionServiceForHandler implements services.SuggestionService for handler tests.
type mockSuggestionServiceForHandler struct {
	suggestions []string
	err         error
	lastKind    models.SuggestionKind
	lastPrefix  string
}

func (m *mockSuggestionServiceForHandler) Suggest(ctx context.Context, kind models.SuggestionKind, prefix string) ([]string, error) {
	m.lastKind = kind
	m.lastPrefix = prefix
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestions, nil
}

// mockIngestServiceForHandler implements services.IngestService for handler tests.
type mockIngestServiceForHandler struct {
	result   *services.IngestResult
	err      error
	lastName string
}

func (m *mockIngestServiceForHandler) Ingest(ctx context.Context, originalName, filePath string, document io.Reader) (*services.IngestResult, error) {
	m.lastName = originalName
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockPDFServiceForHandler implements services.PDFService for handler tests.
type mockPDFServiceForHandler struct {
	doc       *models.PDFDocument
	storeErr  error
	lastName  string
	location  *services.PDFLocation
	lastRC    string
	lastPage  int
	resolvErr error
	docs      []*models.PDFDocument
	listErr   error
	deletedRC string
	deleteErr error
}

func (m *mockPDFServiceForHandler) Store(ctx context.Context, filename string, content io.Reader) (*models.PDFDocument, error) {
	m.lastName = filename
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return m.doc, nil
}

func (m *mockPDFServiceForHandler) Resolve(ctx context.Context, rcNumber string, pageNumber int) (*services.PDFLocation, error) {
	m.lastRC = rcNumber
	m.lastPage = pageNumber
	if m.resolvErr != nil {
		return nil, m.resolvErr
	}
	return m.location, nil
}

func (m *mockPDFServiceForHandler) List(ctx context.Context) ([]*models.PDFDocument, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockPDFServiceForHandler) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	if m.deleteErr != nil {
		return "", m.deleteErr
	}
	return m.deletedRC, nil
}
