package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// FileListResponse for GET /api/data/files
type FileListResponse struct {
	Files []*models.UploadedFile `json:"files"`
	Total int                    `json:"total"`
}

// LatestFileResponse for GET /api/data/files/latest
type LatestFileResponse struct {
	HasFiles bool                 `json:"hasFiles"`
	File     *models.UploadedFile `json:"file,omitempty"`
	Sheets   []*models.Sheet      `json:"sheets,omitempty"`
}

// CheckFileResponse for GET /api/data/files/check/{filename}
type CheckFileResponse struct {
	Exists bool                 `json:"exists"`
	File   *models.UploadedFile `json:"file,omitempty"`
}

// DeleteFileResponse for DELETE /api/data/files/{fileId}
type DeleteFileResponse struct {
	DeletedFile string `json:"deletedFile"`
}

// ============================================================================
// Handler
// ============================================================================

// DataHandler handles uploaded file and sheet content HTTP requests.
type DataHandler struct {
	fileService  services.FileService
	sheetService services.SheetService
	logger       *zap.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(
	fileService services.FileService,
	sheetService services.SheetService,
	logger *zap.Logger,
) *DataHandler {
	return &DataHandler{
		fileService:  fileService,
		sheetService: sheetService,
		logger:       logger,
	}
}

// RegisterRoutes registers the data handler's routes on the given mux.
func (h *DataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/data/files", h.ListFiles)
	mux.HandleFunc("GET /api/data/files/latest", h.LatestFile)
	mux.HandleFunc("GET /api/data/files/check/{filename}", h.CheckFile)
	mux.HandleFunc("GET /api/data/files/{fileId}/sheets", h.FileSheets)
	mux.HandleFunc("DELETE /api/data/files/{fileId}", h.DeleteFile)
	mux.HandleFunc("GET /api/data/sheets/{sheetId}", h.SheetPage)
	mux.HandleFunc("POST /api/data/sheets/{sheetId}/query", h.QuerySheet)
}

// ListFiles handles GET /api/data/files
func (h *DataHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list files", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_files_failed", "Failed to list uploaded files")
		return
	}

	response := FileListResponse{Files: files, Total: len(files)}
	h.writeJSON(w, ApiResponse{Success: true, Data: response})
}

// LatestFile handles GET /api/data/files/latest
func (h *DataHandler) LatestFile(w http.ResponseWriter, r *http.Request) {
	latest, err := h.fileService.Latest(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeJSON(w, ApiResponse{Success: true, Data: LatestFileResponse{HasFiles: false}})
			return
		}
		h.logger.Error("Failed to read latest file", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "latest_file_failed", "Failed to read latest file")
		return
	}

	response := LatestFileResponse{HasFiles: true, File: latest.File, Sheets: latest.Sheets}
	h.writeJSON(w, ApiResponse{Success: true, Data: response})
}

// CheckFile handles GET /api/data/files/check/{filename}
func (h *DataHandler) CheckFile(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	file, err := h.fileService.CheckName(r.Context(), filename)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeJSON(w, ApiResponse{Success: true, Data: CheckFileResponse{Exists: false}})
			return
		}
		h.logger.Error("Failed to check file name",
			zap.String("filename", filename),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "check_file_failed", "Failed to check file name")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: CheckFileResponse{Exists: true, File: file}})
}

// FileSheets handles GET /api/data/files/{fileId}/sheets
func (h *DataHandler) FileSheets(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}

	sheets, err := h.fileService.SheetsByFile(r.Context(), fileID)
	if err != nil {
		h.logger.Error("Failed to list sheets",
			zap.String("file_id", fileID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_sheets_failed", "Failed to list sheets")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: sheets})
}

// DeleteFile handles DELETE /api/data/files/{fileId}
func (h *DataHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}

	name, err := h.fileService.Delete(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "file_not_found", "File not found")
			return
		}
		h.logger.Error("Failed to delete file",
			zap.String("file_id", fileID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "delete_file_failed", "Failed to delete file")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: DeleteFileResponse{DeletedFile: name}})
}

// SheetPage handles GET /api/data/sheets/{sheetId}
func (h *DataHandler) SheetPage(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := ParseSheetID(w, r, h.logger)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", services.DefaultPageSize)

	result, err := h.sheetService.GetPage(r.Context(), sheetID, page, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "sheet_not_found", "Sheet not found")
			return
		}
		h.logger.Error("Failed to read sheet page",
			zap.String("sheet_id", sheetID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "sheet_page_failed", "Failed to read sheet")
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: result})
}

// QuerySheet handles POST /api/data/sheets/{sheetId}/query
func (h *DataHandler) QuerySheet(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := ParseSheetID(w, r, h.logger)
	if !ok {
		return
	}

	var query models.SheetQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request_body", "Request body must be valid JSON")
		return
	}

	result, err := h.sheetService.Query(r.Context(), sheetID, query)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "sheet_not_found", "Sheet not found")
		case errors.Is(err, apperrors.ErrInvalidFilter):
			h.writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		default:
			h.logger.Error("Failed to query sheet",
				zap.String("sheet_id", sheetID.String()),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "sheet_query_failed", "Failed to query sheet")
		}
		return
	}

	h.writeJSON(w, ApiResponse{Success: true, Data: result})
}

func (h *DataHandler) writeJSON(w http.ResponseWriter, body any) {
	if err := WriteJSON(w, http.StatusOK, body); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DataHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
