package models

import (
	"fmt"
	"strings"
	"time"
)

// ScoreMode определяет, какая таблица дельт используется при записи очков.
type ScoreMode string

const (
	ScoreModeTeam   ScoreMode = "team"
	ScoreModePlayer ScoreMode = "player"
)

func (m ScoreMode) IsValid() bool {
	return m == ScoreModeTeam || m == ScoreModePlayer
}

// TeamScore — неизменяемая дельта очков команды для пары (турнир, игра).
// Исправления оформляются новыми компенсирующими дельтами, строки никогда
// не редактируются. Итог команды по игре — сумма всех её дельт.
type TeamScore struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	GameID       string    `json:"game_id" db:"game_id"`
	TeamID       string    `json:"team_id" db:"team_id"`
	ScoreChange  int       `json:"score_change" db:"score_change"`
	Reason       string    `json:"reason" db:"reason"`
	RequestID    string    `json:"request_id" db:"request_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PlayerScore — неизменяемая дельта очков игрока. TeamID опционален:
// на момент записи игрок может выступать вне командного контекста.
type PlayerScore struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	GameID       string    `json:"game_id" db:"game_id"`
	PlayerID     string    `json:"player_id" db:"player_id"`
	TeamID       *string   `json:"team_id,omitempty" db:"team_id"`
	ScoreChange  int       `json:"score_change" db:"score_change"`
	Reason       string    `json:"reason" db:"reason"`
	RequestID    string    `json:"request_id" db:"request_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TagReason appends the idempotency marker to a free-text reason.
// The format " [RequestID:<id>]" is a wire contract: external consumers
// match it with LIKE lookups, so it must not be reformatted.
func TagReason(reason, requestID string) string {
	return strings.TrimSpace(fmt.Sprintf("%s [RequestID:%s]", reason, requestID))
}
