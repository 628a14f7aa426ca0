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
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict in this tournament")
	ErrTeamInvalidTournament = errors.New("invalid tournament reference for team")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Team, error)
	ExistsByName(ctx context.Context, exec SQLExecutor, tournamentID, name, exceptID string) (bool, error)
	Rename(ctx context.Context, exec SQLExecutor, id, name string) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id string, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	query := `
		INSERT INTO teams (id, name, tournament_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, team.ID, team.Name, team.TournamentID).
		Scan(&team.CreatedAt, &team.UpdatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, tournament_id, logo_key, created_at, updated_at
		FROM teams
		WHERE id = $1`

	t := &models.Team{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.TournamentID, &t.LogoKey, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, tournament_id, logo_key, created_at, updated_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t := &models.Team{}
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.TournamentID, &t.LogoKey, &t.CreatedAt, &t.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// ExistsByName проверяет занятость имени внутри турнира; exceptID исключает
// саму команду при переименовании.
func (r *postgresTeamRepository) ExistsByName(ctx context.Context, exec SQLExecutor, tournamentID, name, exceptID string) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM teams WHERE tournament_id = $1 AND name = $2 AND id != $3)`
	var exists bool
	if err := executor.QueryRowContext(ctx, query, tournamentID, name, exceptID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresTeamRepository) Rename(ctx context.Context, exec SQLExecutor, id, name string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET name = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, name, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id string, logoKey *string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "teams_tournament_id_name_key" {
				return ErrTeamNameConflict
			}
		case "23503":
			if pqErr.Constraint == "teams_tournament_id_fkey" {
				return ErrTeamInvalidTournament
			}
		}
	}
	return err
}
