package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zgamesdev/zgames-backend/models"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	List(ctx context.Context, exec SQLExecutor) ([]models.Game, error)
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, name, description, rules, win_points, bonus_points, penalty_points, time_limit, min_players, max_players, created_at`

func scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Rules, &g.WinPoints, &g.BonusPoints, &g.PenaltyPoints,
		&g.TimeLimit, &g.MinPlayers, &g.MaxPlayers, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Game, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY name`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		games = append(games, *g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(executor.QueryRowContext(ctx, query, id))
}
