package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/services"
)

type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

type recordScoresRequest struct {
	// Mode опционален: если не задан, определяется по составу записей.
	Mode      *models.ScoreMode     `json:"mode"`
	Scores    []services.ScoreInput `json:"scores"`
	RequestID *string               `json:"requestId"`
}

type scoresSummary struct {
	Entries int      `json:"entries"`
	Total   int      `json:"total"`
	Highest *int     `json:"highest,omitempty"`
	Lowest  *int     `json:"lowest,omitempty"`
	Average *float64 `json:"average,omitempty"`
}

// RecordScores — запись батча дельт очков для пары (турнир, игра).
func (h *ScoringHandler) RecordScores(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	gameID := chi.URLParam(r, "gameID")

	var req recordScoresRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	mode, err := resolveScoreMode(req)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := checkDuplicateEntries(mode, req.Scores); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scoringService.RecordGameScores(r.Context(), services.RecordScoresInput{
		TournamentID: tournamentID,
		GameID:       gameID,
		Mode:         mode,
		Scores:       req.Scores,
		RequestID:    req.RequestID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"requestId": result.RequestID,
		"replayed":  result.Replayed,
		"recorded":  result.Recorded,
		"summary":   buildScoresSummary(req.Scores),
	}, nil)
}

// resolveScoreMode определяет режим записи. Явный mode имеет приоритет;
// иначе режим выводится из того, какими идентификаторами заполнены записи.
func resolveScoreMode(req recordScoresRequest) (models.ScoreMode, error) {
	if req.Mode != nil {
		if !req.Mode.IsValid() {
			return "", services.ErrInvalidScoreMode
		}
		return *req.Mode, nil
	}

	hasTeam := false
	hasPlayer := false
	for _, entry := range req.Scores {
		if entry.PlayerID != nil && *entry.PlayerID != "" {
			hasPlayer = true
		} else if entry.TeamID != nil && *entry.TeamID != "" {
			hasTeam = true
		}
	}
	switch {
	case hasPlayer && !hasTeam:
		return models.ScoreModePlayer, nil
	case hasTeam && !hasPlayer:
		return models.ScoreModeTeam, nil
	default:
		return "", services.ErrInvalidScoreMode
	}
}

// checkDuplicateEntries отклоняет батчи, где одна команда или один игрок
// встречается дважды: такой запрос почти всегда ошибка клиента.
func checkDuplicateEntries(mode models.ScoreMode, scores []services.ScoreInput) error {
	seen := make(map[string]bool, len(scores))
	for i, entry := range scores {
		var id string
		switch mode {
		case models.ScoreModeTeam:
			if entry.TeamID != nil {
				id = *entry.TeamID
			}
		case models.ScoreModePlayer:
			if entry.PlayerID != nil {
				id = *entry.PlayerID
			}
		}
		if id == "" {
			continue
		}
		if seen[id] {
			return fmt.Errorf("%w: entry %d: duplicate id %s in batch", services.ErrScoreValidation, i, id)
		}
		seen[id] = true
	}
	return nil
}

func buildScoresSummary(scores []services.ScoreInput) scoresSummary {
	summary := scoresSummary{Entries: len(scores)}
	if len(scores) == 0 {
		return summary
	}

	var highest, lowest int
	first := true
	for _, entry := range scores {
		if entry.Score == nil {
			continue
		}
		v := *entry.Score
		summary.Total += v
		if first || v > highest {
			highest = v
		}
		if first || v < lowest {
			lowest = v
		}
		first = false
	}
	if !first {
		avg := float64(summary.Total) / float64(summary.Entries)
		summary.Highest = &highest
		summary.Lowest = &lowest
		summary.Average = &avg
	}
	return summary
}
