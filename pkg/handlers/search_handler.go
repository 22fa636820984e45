package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/services"
)

// SheetRowsResponse for GET /api/data/sheet/{sheetName}
type SheetRowsResponse struct {
	SheetName string           `json:"sheet_name"`
	Total     int              `json:"total"`
	Rows      []models.RowData `json:"rows"`
}

// SearchHandler handles cross-sheet search, autocomplete, and index-sheet
// lookup HTTP requests.
type SearchHandler struct {
	searchService     services.SearchService
	suggestionService services.SuggestionService
	logger            *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(
	searchService services.SearchService,
	suggestionService services.SuggestionService,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		searchService:     searchService,
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/data/search", h.Search)
	mux.HandleFunc("GET /api/data/suggestions/companies", h.CompanySuggestions)
	mux.HandleFunc("GET /api/data/suggestions/products", h.ProductSuggestions)
	mux.HandleFunc("GET /api/data/rc-dates", h.ReferenceCodeDates)
	mux.HandleFunc("GET /api/data/sheet/{sheetName}", h.SheetRows)
}

// Search handles GET /api/data/search
// Query parameters: company, product, dateFrom, dateTo (ISO dates, YYYY-MM-DD).
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := models.SearchQuery{
		Company:  params.Get("company"),
		Product:  params.Get("product"),
		DateFrom: params.Get("dateFrom"),
		DateTo:   params.Get("dateTo"),
	}

	result, err := h.searchService.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidQuery) {
			h.writeError(w, http.StatusBadRequest, "invalid_query",
				"At least one of company, product, dateFrom, or dateTo is required")
			return
		}
		h.logger.Error("Search failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "search_failed", "Search failed")
		return
	}

	h.writeJSON(w, result)
}

// CompanySuggestions handles GET /api/data/suggestions/companies
func (h *SearchHandler) CompanySuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggest(w, r, models.SuggestCompany)
}

// ProductSuggestions handles GET /api/data/suggestions/products
func (h *SearchHandler) ProductSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggest(w, r, models.SuggestProduct)
}

// suggest responds with a bare JSON array; the autocomplete UI consumes
// it directly. The prefix comes from the q parameter.
func (h *SearchHandler) suggest(w http.ResponseWriter, r *http.Request, kind models.SuggestionKind) {
	prefix := r.URL.Query().Get("q")

	suggestions, err := h.suggestionService.Suggest(r.Context(), kind, prefix)
	if err != nil {
		h.logger.Error("Suggestion lookup failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "suggestions_failed", "Failed to load suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	h.writeJSON(w, suggestions)
}

// ReferenceCodeDates handles GET /api/data/rc-dates
func (h *SearchHandler) ReferenceCodeDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.searchService.ReferenceCodeDates(r.Context())
	if err != nil {
		h.logger.Error("Reference code date lookup failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "rc_dates_failed", "Failed to load reference code dates")
		return
	}
	if dates == nil {
		dates = map[string]string{}
	}

	h.writeJSON(w, map[string]any{"rc_dates": dates, "total": len(dates)})
}

// SheetRows handles GET /api/data/sheet/{sheetName}
// Query parameters: company, product, date (exact-column filters).
func (h *SearchHandler) SheetRows(w http.ResponseWriter, r *http.Request) {
	sheetName := r.PathValue("sheetName")
	params := r.URL.Query()

	rows, err := h.searchService.SheetRowsByName(r.Context(), sheetName,
		params.Get("company"), params.Get("product"), params.Get("date"))
	if err != nil {
		h.logger.Error("Sheet row lookup failed",
			zap.String("sheet_name", sheetName),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "sheet_rows_failed", "Failed to read sheet rows")
		return
	}

	data := make([]models.RowData, len(rows))
	for i, row := range rows {
		data[i] = row.Data
	}

	h.writeJSON(w, SheetRowsResponse{SheetName: sheetName, Total: len(data), Rows: data})
}

func (h *SearchHandler) writeJSON(w http.ResponseWriter, body any) {
	if err := WriteJSON(w, http.StatusOK, body); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SearchHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
