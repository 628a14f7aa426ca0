package models

import "time"

// Player состоит ровно в одной команде; tournament_id денормализован для выборок.
// Игрок может переходить между командами внутри одного турнира, накопленные
// очки при этом не мигрируют.
type Player struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TeamID       string    `json:"team_id" db:"team_id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	AnimalID     string    `json:"animal_id" db:"animal_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Animal *Animal `json:"animal,omitempty" db:"-"`
}
