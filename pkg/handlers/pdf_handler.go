package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/config"
	"github.com/excelq/excelq-engine/pkg/services"
)

// PDFHandler handles reference-code PDF upload and resolution requests.
type PDFHandler struct {
	pdfService services.PDFService
	cfg        *config.Config
	logger     *zap.Logger
}

// NewPDFHandler creates a new PDF handler.
func NewPDFHandler(pdfService services.PDFService, cfg *config.Config, logger *zap.Logger) *PDFHandler {
	return &PDFHandler{pdfService: pdfService, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the PDF handler's routes on the given mux.
func (h *PDFHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload-pdf", h.Upload)
	mux.HandleFunc("GET /api/get-pdf", h.Resolve)
	mux.HandleFunc("GET /api/list-pdfs", h.List)
	mux.HandleFunc("DELETE /api/delete-pdf/{id}", h.Delete)
}

// Upload handles POST /api/upload-pdf. The multipart field "pdfFile" carries
// the document; its filename must be <RCNUMBER>.pdf so the document can be
// linked to search results.
func (h *PDFHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxFileSizeBytes)

	if err := r.ParseMultipartForm(h.cfg.Upload.MaxFileSizeBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "Uploaded file exceeds the size limit")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid_multipart_form", "Request is not a valid multipart form")
		return
	}

	upload, header, err := r.FormFile("pdfFile")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing_file", "Multipart field 'pdfFile' is required")
		return
	}
	defer upload.Close()

	doc, err := h.pdfService.Store(r.Context(), header.Filename, upload)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnprocessableInput) {
			h.writeError(w, http.StatusBadRequest, "invalid_pdf_name", "Filename must be <RCNUMBER>.pdf")
			return
		}
		h.logger.Error("PDF upload failed",
			zap.String("file", header.Filename),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "pdf_upload_failed", "Failed to store PDF")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: doc, Message: "PDF uploaded successfully"})
}

// Resolve handles GET /api/get-pdf
// Query parameters: rc_number (required), page_number (optional, default 1).
func (h *PDFHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	rcNumber := strings.TrimSpace(r.URL.Query().Get("rc_number"))
	if rcNumber == "" {
		h.writeError(w, http.StatusBadRequest, "missing_rc_number", "Query parameter 'rc_number' is required")
		return
	}

	pageNumber := 1
	if raw := r.URL.Query().Get("page_number"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageNumber = n
		}
	}

	location, err := h.pdfService.Resolve(r.Context(), rcNumber, pageNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "pdf_not_found", "No PDF stored for this reference code")
			return
		}
		h.logger.Error("PDF resolution failed",
			zap.String("rc_number", rcNumber),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "pdf_resolve_failed", "Failed to resolve PDF")
		return
	}

	h.writeJSON(w, location)
}

// List handles GET /api/list-pdfs
func (h *PDFHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.pdfService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list PDFs", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_pdfs_failed", "Failed to list PDFs")
		return
	}

	h.writeJSON(w, map[string]any{"pdfs": docs, "total": len(docs)})
}

// Delete handles DELETE /api/delete-pdf/{id}
func (h *PDFHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	rcNumber, err := h.pdfService.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "pdf_not_found", "PDF document not found")
			return
		}
		h.logger.Error("Failed to delete PDF",
			zap.String("id", id.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "delete_pdf_failed", "Failed to delete PDF")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: map[string]string{"rc_number": rcNumber}, Message: "PDF deleted"})
}

func (h *PDFHandler) writeJSON(w http.ResponseWriter, body any) {
	if err := WriteJSON(w, http.StatusOK, body); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *PDFHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
