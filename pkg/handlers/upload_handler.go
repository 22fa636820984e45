package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/config"
	"github.com/excelq/excelq-engine/pkg/services"
)

// UploadHandler handles spreadsheet upload requests.
type UploadHandler struct {
	ingestService services.IngestService
	cfg           *config.Config
	logger        *zap.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(ingestService services.IngestService, cfg *config.Config, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{ingestService: ingestService, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
}

// Upload handles POST /api/upload. The multipart field "excelFile" carries
// the workbook. The uploaded file is staged on disk only for the duration of
// ingestion and removed afterwards, whether ingestion succeeds or not.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	upload, header, err := r.FormFile("excelFile")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing_file", "Multipart field 'excelFile' is required")
		return
	}
	defer upload.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		h.writeError(w, http.StatusBadRequest, "unsupported_file_type", "Only .xlsx and .xls files are accepted")
		return
	}

	tempPath, err := h.stageFile(upload, ext)
	if err != nil {
		h.logger.Error("Failed to stage uploaded file", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "upload_failed", "Failed to store uploaded file")
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			h.logger.Warn("Failed to remove staged upload", zap.Error(err))
		}
	}()

	staged, err := os.Open(tempPath)
	if err != nil {
		h.logger.Error("Failed to reopen staged file", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "upload_failed", "Failed to read uploaded file")
		return
	}
	defer staged.Close()

	result, err := h.ingestService.Ingest(r.Context(), header.Filename, tempPath, staged)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnprocessableInput) {
			h.writeError(w, http.StatusUnprocessableEntity, "unprocessable_file", "File could not be parsed as a spreadsheet")
			return
		}
		h.logger.Error("Ingestion failed",
			zap.String("file", header.Filename),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "ingestion_failed", "Failed to process uploaded file")
		return
	}

	response := ApiResponse{
		Success: true,
		Data:    result,
		Message: "File uploaded and processed successfully",
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *UploadHandler) stageFile(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(h.cfg.Upload.TempDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(h.cfg.Upload.TempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (h *UploadHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
