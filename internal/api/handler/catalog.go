package handler

import (
	"net/http"

	"github.com/mcoot/spendboard/internal/api/response"
	"github.com/mcoot/spendboard/internal/services/catalog"
)

// CatalogHandler serves store searches
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// Search handles GET /api/v1/catalog/search?q=&cc=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("q") == "" {
		WriteError(w, NewInvalidRequestError("q is required"))
		return
	}

	results, err := h.catalogService.Search(r.Context(), query.Get("q"), query.Get("cc"))
	if err != nil {
		WriteError(w, err)
		return
	}
	if results == nil {
		results = []catalog.Result{}
	}

	response.JSON(w, http.StatusOK, response.Search{Results: results})
}
