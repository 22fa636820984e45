package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

func errNotFoundForTest() error { return apperrors.ErrNotFound }

// ============================================================================
// Transaction fakes
// ============================================================================

// fakeTx embeds pgx.Tx for interface satisfaction; only Commit/Rollback are
// implemented because mocked repositories never touch the connection.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	beginErr error
	lastTx   *fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	d.lastTx = &fakeTx{}
	return d.lastTx, nil
}

// ============================================================================
// Repository mocks
// ============================================================================

type insertedSheet struct {
	sheet *models.Sheet
	rows  []models.Row
}

type mockFileRepo struct {
	files     map[uuid.UUID]*models.UploadedFile
	inserted  []*models.UploadedFile
	groups    []repositories.DuplicateGroup
	deleted   []uuid.UUID
	insertErr error
	listErr   error
	deleteErr error
	groupsErr error
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[uuid.UUID]*models.UploadedFile)}
}

func (m *mockFileRepo) Insert(ctx context.Context, tx pgx.Tx, file *models.UploadedFile) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	file.ID = uuid.New()
	m.files[file.ID] = file
	m.inserted = append(m.inserted, file)
	return nil
}

func (m *mockFileRepo) List(ctx context.Context) ([]*models.UploadedFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.UploadedFile, 0, len(m.inserted))
	out = append(out, m.inserted...)
	return out, nil
}

func (m *mockFileRepo) Latest(ctx context.Context) (*models.UploadedFile, error) {
	if len(m.inserted) == 0 {
		return nil, errNotFoundForTest()
	}
	return m.inserted[len(m.inserted)-1], nil
}

func (m *mockFileRepo) LatestByName(ctx context.Context, name string) (*models.UploadedFile, error) {
	for i := len(m.inserted) - 1; i >= 0; i-- {
		if m.inserted[i].OriginalName == name {
			return m.inserted[i], nil
		}
	}
	return nil, errNotFoundForTest()
}

func (m *mockFileRepo) Delete(ctx context.Context, fileID uuid.UUID) (string, error) {
	if m.deleteErr != nil {
		return "", m.deleteErr
	}
	f, ok := m.files[fileID]
	if !ok {
		return "", errNotFoundForTest()
	}
	delete(m.files, fileID)
	return f.OriginalName, nil
}

func (m *mockFileRepo) DuplicateGroups(ctx context.Context) ([]repositories.DuplicateGroup, error) {
	if m.groupsErr != nil {
		return nil, m.groupsErr
	}
	return m.groups, nil
}

func (m *mockFileRepo) DeleteMany(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

type mockSheetRepo struct {
	sheets    map[uuid.UUID]*models.Sheet
	byFile    map[uuid.UUID][]*models.Sheet
	inserted  []*models.Sheet
	insertErr error
	getErr    error
}

func newMockSheetRepo() *mockSheetRepo {
	return &mockSheetRepo{
		sheets: make(map[uuid.UUID]*models.Sheet),
		byFile: make(map[uuid.UUID][]*models.Sheet),
	}
}

func (m *mockSheetRepo) Insert(ctx context.Context, tx pgx.Tx, sheet *models.Sheet) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	sheet.ID = uuid.New()
	m.sheets[sheet.ID] = sheet
	m.byFile[sheet.FileID] = append(m.byFile[sheet.FileID], sheet)
	m.inserted = append(m.inserted, sheet)
	return nil
}

func (m *mockSheetRepo) GetByFile(ctx context.Context, fileID uuid.UUID) ([]*models.Sheet, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.byFile[fileID], nil
}

func (m *mockSheetRepo) GetByID(ctx context.Context, sheetID uuid.UUID) (*models.Sheet, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sheets[sheetID]
	if !ok {
		return nil, errNotFoundForTest()
	}
	return s, nil
}

type mockRowRepo struct {
	bySheet    map[uuid.UUID][]models.Row
	insertErr  error
	queryTotal int
	queryRows  []models.Row
	queryErr   error
}

func newMockRowRepo() *mockRowRepo {
	return &mockRowRepo{bySheet: make(map[uuid.UUID][]models.Row)}
}

func (m *mockRowRepo) InsertRows(ctx context.Context, tx pgx.Tx, sheetID uuid.UUID, rows []models.Row) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.bySheet[sheetID] = append(m.bySheet[sheetID], rows...)
	return nil
}

func (m *mockRowRepo) GetPage(ctx context.Context, sheetID uuid.UUID, limit, offset int) ([]models.Row, error) {
	rows := m.bySheet[sheetID]
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *mockRowRepo) QueryPage(ctx context.Context, sheetID uuid.UUID, q models.SheetQuery) ([]models.Row, int, error) {
	if m.queryErr != nil {
		return nil, 0, m.queryErr
	}
	return m.queryRows, m.queryTotal, nil
}

type mockSearchRepo struct {
	codes      []string
	codesErr   error
	codeCalls  int
	rows       []repositories.SearchRow
	rowsErr    error
	lastRC     []string
	lastComp   string
	lastProd   string
	rowCalls   int
	sugg       []string
	suggErr    error
	suggCalls  int
	dates      map[string]string
	datesErr   error
	named      []models.Row
	namedErr   error
	lastPrefix string
}

func (m *mockSearchRepo) LookupReferenceCodes(ctx context.Context, dateFrom, dateTo string) ([]string, error) {
	m.codeCalls++
	if m.codesErr != nil {
		return nil, m.codesErr
	}
	return m.codes, nil
}

func (m *mockSearchRepo) ReferenceCodeDates(ctx context.Context) (map[string]string, error) {
	if m.datesErr != nil {
		return nil, m.datesErr
	}
	return m.dates, nil
}

func (m *mockSearchRepo) SearchRows(ctx context.Context, rcNumbers []string, company, product string) ([]repositories.SearchRow, error) {
	m.rowCalls++
	m.lastRC = rcNumbers
	m.lastComp = company
	m.lastProd = product
	if m.rowsErr != nil {
		return nil, m.rowsErr
	}
	return m.rows, nil
}

func (m *mockSearchRepo) Suggestions(ctx context.Context, kind models.SuggestionKind, prefix string, limit int) ([]string, error) {
	m.suggCalls++
	m.lastPrefix = prefix
	if m.suggErr != nil {
		return nil, m.suggErr
	}
	return m.sugg, nil
}

func (m *mockSearchRepo) RowsBySheetName(ctx context.Context, sheetName, company, product, date string) ([]models.Row, error) {
	if m.namedErr != nil {
		return nil, m.namedErr
	}
	return m.named, nil
}

type mockPDFRepo struct {
	docs      map[uuid.UUID]*models.PDFDocument
	byRC      map[string]string
	insertErr error
}

func newMockPDFRepo() *mockPDFRepo {
	return &mockPDFRepo{
		docs: make(map[uuid.UUID]*models.PDFDocument),
		byRC: make(map[string]string),
	}
}

func (m *mockPDFRepo) Insert(ctx context.Context, doc *models.PDFDocument) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	doc.ID = uuid.New()
	m.docs[doc.ID] = doc
	m.byRC[doc.RCNumber] = doc.PDFPath
	return nil
}

func (m *mockPDFRepo) GetPathByRCNumber(ctx context.Context, rcNumber string) (string, error) {
	path, ok := m.byRC[rcNumber]
	if !ok {
		return "", errNotFoundForTest()
	}
	return path, nil
}

func (m *mockPDFRepo) List(ctx context.Context) ([]*models.PDFDocument, error) {
	out := make([]*models.PDFDocument, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockPDFRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PDFDocument, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, errNotFoundForTest()
	}
	return d, nil
}

func (m *mockPDFRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.docs[id]; !ok {
		return errNotFoundForTest()
	}
	delete(m.docs, id)
	return nil
}
