package handlers

import (
	"bytes"
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

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestListFiles(t *testing.T) {
	fileService := &mockFileServiceForHandler{
		files: []*models.UploadedFile{
			{ID: uuid.New(), OriginalName: "report.xlsx"},
			{ID: uuid.New(), OriginalName: "data.xlsx"},
		},
	}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/data/files", nil)
	rec := httptest.NewRecorder()
	handler.ListFiles(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.Data.Total)
}

func TestLatestFileWhenEmpty(t *testing.T) {
	fileService := &mockFileServiceForHandler{latestErr: apperrors.ErrNotFound}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/data/files/latest", nil)
	rec := httptest.NewRecorder()
	handler.LatestFile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data LatestFileResponse `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.False(t, response.Data.HasFiles)
	assert.Nil(t, response.Data.File)
}

func TestLatestFileWithSheets(t *testing.T) {
	file := &models.UploadedFile{ID: uuid.New(), OriginalName: "latest.xlsx"}
	fileService := &mockFileServiceForHandler{
		latest: &services.LatestFile{
			File:   file,
			Sheets: []*models.Sheet{{ID: uuid.New(), SheetName: "Annexure-1"}},
		},
	}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/data/files/latest", nil)
	rec := httptest.NewRecorder()
	handler.LatestFile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data LatestFileResponse `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.True(t, response.Data.HasFiles)
	assert.Equal(t, "latest.xlsx", response.Data.File.OriginalName)
	assert.Len(t, response.Data.Sheets, 1)
}

func TestCheckFileNotPresent(t *testing.T) {
	fileService := &mockFileServiceForHandler{checkErr: apperrors.ErrNotFound}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/data/files/check/report.xlsx", nil)
	req.SetPathValue("filename", "report.xlsx")
	rec := httptest.NewRecorder()
	handler.CheckFile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data CheckFileResponse `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.False(t, response.Data.Exists)
}

func TestDeleteFileNotFound(t *testing.T) {
	fileService := &mockFileServiceForHandler{deleteErr: apperrors.ErrNotFound}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	fileID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/data/files/"+fileID.String(), nil)
	req.SetPathValue("fileId", fileID.String())
	rec := httptest.NewRecorder()
	handler.DeleteFile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFileReturnsName(t *testing.T) {
	fileService := &mockFileServiceForHandler{deletedName: "old.xlsx"}
	handler := NewDataHandler(fileService, &mockSheetServiceForHandler{}, zap.NewNop())

	fileID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/data/files/"+fileID.String(), nil)
	req.SetPathValue("fileId", fileID.String())
	rec := httptest.NewRecorder()
	handler.DeleteFile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data DeleteFileResponse `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.Equal(t, "old.xlsx", response.Data.DeletedFile)
}

func TestDeleteFileRejectsBadID(t *testing.T) {
	handler := NewDataHandler(&mockFileServiceForHandler{}, &mockSheetServiceForHandler{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodDelete, "/api/data/files/not-a-uuid", nil)
	req.SetPathValue("fileId", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.DeleteFile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSheetPageNotFound(t *testing.T) {
	sheetService := &mockSheetServiceForHandler{pageErr: apperrors.ErrNotFound}
	handler := NewDataHandler(&mockFileServiceForHandler{}, sheetService, zap.NewNop())

	sheetID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/data/sheets/"+sheetID.String(), nil)
	req.SetPathValue("sheetId", sheetID.String())
	rec := httptest.NewRecorder()
	handler.SheetPage(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSheetPageReturnsRows(t *testing.T) {
	sheetService := &mockSheetServiceForHandler{
		page: &services.SheetPage{
			SheetName:   "Annexure-1",
			Headers:     []string{"Company"},
			TotalRows:   30,
			CurrentPage: 2,
			TotalPages:  2,
			Limit:       15,
			Data:        []models.RowData{{"Company": "ABC"}},
		},
	}
	handler := NewDataHandler(&mockFileServiceForHandler{}, sheetService, zap.NewNop())

	sheetID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/data/sheets/"+sheetID.String()+"?page=2&limit=15", nil)
	req.SetPathValue("sheetId", sheetID.String())
	rec := httptest.NewRecorder()
	handler.SheetPage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data services.SheetPage `json:"data"`
	}
	decodeBody(t, rec, &response)
	assert.Equal(t, 2, response.Data.CurrentPage)
	assert.Equal(t, 30, response.Data.TotalRows)
}

func TestQuerySheetRejectsInvalidBody(t *testing.T) {
	handler := NewDataHandler(&mockFileServiceForHandler{}, &mockSheetServiceForHandler{}, zap.NewNop())

	sheetID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/data/sheets/"+sheetID.String()+"/query",
		bytes.NewBufferString("{not json"))
	req.SetPathValue("sheetId", sheetID.String())
	rec := httptest.NewRecorder()
	handler.QuerySheet(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuerySheetRejectsInvalidFilter(t *testing.T) {
	sheetService := &mockSheetServiceForHandler{queryErr: apperrors.ErrInvalidFilter}
	handler := NewDataHandler(&mockFileServiceForHandler{}, sheetService, zap.NewNop())

	body, err := json.Marshal(models.SheetQuery{
		Filters: []models.SheetFilter{{Column: "nope", Operator: "equals", Value: "x"}},
	})
	require.NoError(t, err)

	sheetID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/data/sheets/"+sheetID.String()+"/query",
		bytes.NewBuffer(body))
	req.SetPathValue("sheetId", sheetID.String())
	rec := httptest.NewRecorder()
	handler.QuerySheet(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response map[string]string
	decodeBody(t, rec, &response)
	assert.Equal(t, "invalid_filter", response["error"])
}

func TestQuerySheetPassesQueryThrough(t *testing.T) {
	sheetService := &mockSheetServiceForHandler{
		queryPage: &services.SheetQueryPage{FilteredRows: 1},
	}
	handler := NewDataHandler(&mockFileServiceForHandler{}, sheetService, zap.NewNop())

	body, err := json.Marshal(models.SheetQuery{
		Filters: []models.SheetFilter{{Column: "Company", Operator: "contains", Value: "ABC"}},
		SortBy:  "Company",
		Page:    3,
	})
	require.NoError(t, err)

	sheetID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/data/sheets/"+sheetID.String()+"/query",
		bytes.NewBuffer(body))
	req.SetPathValue("sheetId", sheetID.String())
	rec := httptest.NewRecorder()
	handler.QuerySheet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, sheetService.lastQuery.Page)
	assert.Equal(t, "Company", sheetService.lastQuery.SortBy)
	require.Len(t, sheetService.lastQuery.Filters, 1)
	assert.Equal(t, "contains", sheetService.lastQuery.Filters[0].Operator)
}
