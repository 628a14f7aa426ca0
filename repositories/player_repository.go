package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zgamesdev/zgames-backend/models"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerInvalidTeam   = errors.New("invalid team reference for player")
	ErrPlayerInvalidAnimal = errors.New("invalid animal reference for player")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error)
	// ListByTournament возвращает игроков вместе с животным-аватаром.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `
		INSERT INTO players (id, name, team_id, tournament_id, animal_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		p.ID, p.Name, p.TeamID, p.TournamentID, p.AnimalID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.name, p.team_id, p.tournament_id, p.animal_id, p.created_at, p.updated_at,
		       a.id, a.name, a.species, a.emoji
		FROM players p
		LEFT JOIN animals a ON p.animal_id = a.id
		WHERE p.id = $1`

	p, err := scanPlayerWithAnimal(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.name, p.team_id, p.tournament_id, p.animal_id, p.created_at, p.updated_at,
		       a.id, a.name, a.species, a.emoji
		FROM players p
		LEFT JOIN animals a ON p.animal_id = a.id
		WHERE p.tournament_id = $1
		ORDER BY p.name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayerWithAnimal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func scanPlayerWithAnimal(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	var animalID, animalName, animalEmoji sql.NullString
	var animalSpecies sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.TeamID, &p.TournamentID, &p.AnimalID, &p.CreatedAt, &p.UpdatedAt,
		&animalID, &animalName, &animalSpecies, &animalEmoji,
	)
	if err != nil {
		return nil, err
	}
	if animalID.Valid {
		a := &models.Animal{ID: animalID.String, Name: animalName.String, Emoji: animalEmoji.String}
		if animalSpecies.Valid {
			a.Species = &animalSpecies.String
		}
		p.Animal = a
	}
	return p, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			name = $1,
			team_id = $2,
			animal_id = $3,
			updated_at = NOW()
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, p.Name, p.TeamID, p.AnimalID, p.ID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM players WHERE team_id = $1`, teamID)
	return err
}

func (r *postgresPlayerRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM players WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "players_team_id_fkey":
			return ErrPlayerInvalidTeam
		case "players_animal_id_fkey":
			return ErrPlayerInvalidAnimal
		}
	}
	return err
}
