package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/services"
)

func TestUploadPDF(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{
		doc: &models.PDFDocument{ID: uuid.New(), RCNumber: "RC123", PDFPath: "/pdfs/RC123.pdf"},
	}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	body, contentType := multipartBody(t, "pdfFile", "RC123.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RC123.pdf", pdfService.lastName)
}

func TestUploadPDFRejectsBadName(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{storeErr: apperrors.ErrUnprocessableInput}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	body, contentType := multipartBody(t, "pdfFile", "report.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "invalid_pdf_name", response["error"])
}

func TestResolvePDF(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{
		location: &services.PDFLocation{PDFURL: "/pdfs/RC123.pdf", PageNumber: 4},
	}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/get-pdf?rc_number=RC123&page_number=4", nil)
	rec := httptest.NewRecorder()
	handler.Resolve(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RC123", pdfService.lastRC)
	assert.Equal(t, 4, pdfService.lastPage)

	var location services.PDFLocation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &location))
	assert.Equal(t, "/pdfs/RC123.pdf", location.PDFURL)
	assert.Equal(t, 4, location.PageNumber)
}

func TestResolvePDFDefaultsPageNumber(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{
		location: &services.PDFLocation{PDFURL: "/pdfs/RC9.pdf", PageNumber: 1},
	}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/get-pdf?rc_number=RC9", nil)
	rec := httptest.NewRecorder()
	handler.Resolve(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pdfService.lastPage)
}

func TestResolvePDFRequiresRCNumber(t *testing.T) {
	handler := NewPDFHandler(&mockPDFServiceForHandler{}, uploadConfig(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/get-pdf", nil)
	rec := httptest.NewRecorder()
	handler.Resolve(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolvePDFNotFound(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{resolvErr: apperrors.ErrNotFound}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/get-pdf?rc_number=RC404", nil)
	rec := httptest.NewRecorder()
	handler.Resolve(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPDFs(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{
		docs: []*models.PDFDocument{
			{ID: uuid.New(), RCNumber: "RC1"},
			{ID: uuid.New(), RCNumber: "RC2"},
		},
	}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/list-pdfs", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
}

func TestDeletePDFNotFound(t *testing.T) {
	pdfService := &mockPDFServiceForHandler{deleteErr: apperrors.ErrNotFound}
	handler := NewPDFHandler(pdfService, uploadConfig(t), zap.NewNop())

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/delete-pdf/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
