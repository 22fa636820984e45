package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

// pdfNamePattern enforces the <RCNUMBER>.pdf naming scheme that links a PDF
// to its reference code.
var pdfNamePattern = regexp.MustCompile(`(?i)^(RC\d+)\.pdf$`)

// PDFLocation is the resolved link target for a reference code.
type PDFLocation struct {
	PDFURL     string `json:"pdf_url"`
	PageNumber int    `json:"page_number"`
}

// PDFService stores and resolves reference-code PDF documents. The engine
// treats PDFs as opaque blobs; only the code-to-path mapping lives here.
type PDFService interface {
	Store(ctx context.Context, filename string, content io.Reader) (*models.PDFDocument, error)
	Resolve(ctx context.Context, rcNumber string, pageNumber int) (*PDFLocation, error)
	List(ctx context.Context) ([]*models.PDFDocument, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
}

type pdfService struct {
	pdfRepo    repositories.PDFRepository
	storageDir string
	logger     *zap.Logger
}

// NewPDFService creates a new PDFService storing files under storageDir.
func NewPDFService(pdfRepo repositories.PDFRepository, storageDir string, logger *zap.Logger) PDFService {
	return &pdfService{pdfRepo: pdfRepo, storageDir: storageDir, logger: logger}
}

var _ PDFService = (*pdfService)(nil)

func (s *pdfService) Store(ctx context.Context, filename string, content io.Reader) (*models.PDFDocument, error) {
	match := pdfNamePattern.FindStringSubmatch(filename)
	if match == nil {
		return nil, fmt.Errorf("%w: filename must be <RCNUMBER>.pdf", apperrors.ErrUnprocessableInput)
	}
	rcNumber := match[1]

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare pdf storage: %w", err)
	}

	// filename matched the strict pattern above, so it carries no path
	// separators.
	path := filepath.Join(s.storageDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf file: %w", err)
	}
	if _, err := io.Copy(dst, content); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write pdf file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("failed to close pdf file: %w", err)
	}

	doc := &models.PDFDocument{
		RCNumber: rcNumber,
		PDFPath:  "/pdfs/" + filename,
	}
	if err := s.pdfRepo.Insert(ctx, doc); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	s.logger.Info("Stored PDF document", zap.String("rc_number", rcNumber))
	return doc, nil
}

func (s *pdfService) Resolve(ctx context.Context, rcNumber string, pageNumber int) (*PDFLocation, error) {
	normalized := strings.ToUpper(strings.TrimSpace(rcNumber))
	path, err := s.pdfRepo.GetPathByRCNumber(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &PDFLocation{PDFURL: path, PageNumber: pageNumber}, nil
}

func (s *pdfService) List(ctx context.Context) ([]*models.PDFDocument, error) {
	return s.pdfRepo.List(ctx)
}

func (s *pdfService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.pdfRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.pdfRepo.Delete(ctx, id); err != nil {
		return "", err
	}

	// Best effort; a missing file on disk should not fail the delete.
	name := strings.TrimPrefix(doc.PDFPath, "/pdfs/")
	if err := os.Remove(filepath.Join(s.storageDir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove pdf file from disk", zap.Error(err))
	}

	return doc.RCNumber, nil
}
