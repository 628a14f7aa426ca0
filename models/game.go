package models

import "time"

// Game — запись каталога игр. Каталог заполняется сидерами вне этого сервиса.
type Game struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Rules         *string   `json:"rules,omitempty" db:"rules"`
	WinPoints     int       `json:"win_points" db:"win_points"`
	BonusPoints   int       `json:"bonus_points" db:"bonus_points"`
	PenaltyPoints int       `json:"penalty_points" db:"penalty_points"`
	TimeLimit     *int      `json:"time_limit,omitempty" db:"time_limit"`
	MinPlayers    *int      `json:"min_players,omitempty" db:"min_players"`
	MaxPlayers    *int      `json:"max_players,omitempty" db:"max_players"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
