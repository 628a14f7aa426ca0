package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие значениям в БД.
type TournamentStatus string

const (
	StatusActive    TournamentStatus = "active"
	StatusInactive  TournamentStatus = "inactive"
	StatusPending   TournamentStatus = "pending"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// IsValid reports whether s is one of the known tournament statuses.
func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Tournament представляет турнир. Version — монотонный счётчик оптимистической
// блокировки: каждая успешная запись очков увеличивает его ровно на 1.
type Tournament struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Status      TournamentStatus `json:"status" db:"status"`
	Version     int              `json:"version" db:"version"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams         []*Team `json:"teams,omitempty" db:"-"`
	SelectedGames []Game  `json:"selected_games,omitempty" db:"-"`
}
