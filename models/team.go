package models

import "time"

// Team принадлежит ровно одному турниру; имя уникально внутри турнира.
type Team struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Players []*Player `json:"players,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
