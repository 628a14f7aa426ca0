package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zgamesdev/zgames-backend/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentNameConflict    = errors.New("tournament name conflict")
	ErrTournamentVersionConflict = errors.New("tournament version conflict")
	ErrTournamentInvalidGame     = errors.New("invalid game reference")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	// GetByIDForUpdate читает строку турнира под `FOR UPDATE`: блокировка
	// сериализует все конкурентные транзакции записи очков по этому турниру.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	FindActive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	// DeactivateOthers переводит все прочие активные турниры в inactive —
	// системный инвариант "не более одного активного турнира".
	DeactivateOthers(ctx context.Context, exec SQLExecutor, exceptID string) (int64, error)
	// IncrementVersion — условный бамп версии (version fence). Возвращает
	// ErrTournamentVersionConflict, если версия успела измениться.
	IncrementVersion(ctx context.Context, exec SQLExecutor, id string, version int) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	AddSelectedGame(ctx context.Context, exec SQLExecutor, tournamentID, gameID string) error
	GameSelected(ctx context.Context, exec SQLExecutor, tournamentID, gameID string) (bool, error)
	ListSelectedGames(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Game, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	query := `
		INSERT INTO tournaments (id, name, description, status, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.Status, t.Version,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

const tournamentColumns = `id, name, description, status, version, created_at, updated_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) FindActive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = $1 LIMIT 1`
	return scanTournament(executor.QueryRowContext(ctx, query, models.StatusActive))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			updated_at = NOW()
		WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, t.Name, t.Description, t.ID)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) DeactivateOthers(ctx context.Context, exec SQLExecutor, exceptID string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id != $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, models.StatusInactive, exceptID, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate other tournaments: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresTournamentRepository) IncrementVersion(ctx context.Context, exec SQLExecutor, id string, version int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET version = version + 1, updated_at = NOW() WHERE id = $1 AND version = $2`
	result, err := executor.ExecContext(ctx, query, id, version)
	if err != nil {
		return fmt.Errorf("failed to increment tournament version: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentVersionConflict)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddSelectedGame(ctx context.Context, exec SQLExecutor, tournamentID, gameID string) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO tournament_selected_games (id, tournament_id, game_id) VALUES ($1, $2, $3)`
	_, err := executor.ExecContext(ctx, query, uuid.NewString(), tournamentID, gameID)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GameSelected(ctx context.Context, exec SQLExecutor, tournamentID, gameID string) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM tournament_selected_games WHERE tournament_id = $1 AND game_id = $2)`
	var exists bool
	if err := executor.QueryRowContext(ctx, query, tournamentID, gameID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresTournamentRepository) ListSelectedGames(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Game, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT g.id, g.name, g.description, g.rules, g.win_points, g.bonus_points, g.penalty_points,
		       g.time_limit, g.min_players, g.max_players, g.created_at
		FROM games g
		INNER JOIN tournament_selected_games tsg ON g.id = tsg.game_id
		WHERE tsg.tournament_id = $1
		ORDER BY g.name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if scanErr := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.Rules, &g.WinPoints, &g.BonusPoints, &g.PenaltyPoints,
			&g.TimeLimit, &g.MinPlayers, &g.MaxPlayers, &g.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "tournament_selected_games_game_id_fkey":
				return ErrTournamentInvalidGame
			case "tournament_selected_games_tournament_id_fkey":
				return ErrTournamentNotFound
			}
		}
	}
	return err
}
