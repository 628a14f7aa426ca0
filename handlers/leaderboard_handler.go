package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgamesdev/zgames-backend/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetCurrent — лидерборд активного турнира. Если активного турнира нет,
// ответ 200 с null: фронтенд показывает пустое состояние.
func (h *LeaderboardHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	view, err := h.leaderboardService.GetTournamentLeaderboard(r.Context(), "")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": view}, nil)
}

func (h *LeaderboardHandler) GetByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	view, err := h.leaderboardService.GetTournamentLeaderboard(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": view}, nil)
}

func (h *LeaderboardHandler) GetByGame(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	gameID := chi.URLParam(r, "gameID")

	view, err := h.leaderboardService.GetGameLeaderboard(r.Context(), tournamentID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": view}, nil)
}
