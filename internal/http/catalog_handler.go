package http

import (
	"net/http"

	"github.com/fjod/go_comics/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	items := h.catalog.Items()
	resp := CatalogResponse{Items: make([]CatalogItemDTO, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toCatalogItemDTO(item))
	}
	respondJSON(w, http.StatusOK, resp)
}
