package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgamesdev/zgames-backend/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := h.catalogService.ListAnimals(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"animals": animals}, nil)
}

func (h *CatalogHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalogService.ListGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil)
}

func (h *CatalogHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.catalogService.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}
