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
	ErrScoreInvalidTournament = errors.New("invalid tournament reference for score")
	ErrScoreInvalidGame       = errors.New("invalid game reference for score")
	ErrScoreInvalidTeam       = errors.New("invalid team reference for score")
	ErrScoreInvalidPlayer     = errors.New("invalid player reference for score")
)

// ScoreRepository работает с журналами дельт. Обе таблицы append-only:
// строки никогда не обновляются и не удаляются поштучно, конкурентные
// вставки безопасны под блокировкой строки турнира.
type ScoreRepository interface {
	InsertTeamScore(ctx context.Context, exec SQLExecutor, score *models.TeamScore) error
	InsertPlayerScore(ctx context.Context, exec SQLExecutor, score *models.PlayerScore) error
	// RequestSeen — проверка защиты от повторов: была ли уже запись с этим
	// request_id для пары (турнир, игра) в любом из двух журналов. Повтор
	// в другом режиме — тоже повтор.
	RequestSeen(ctx context.Context, exec SQLExecutor, tournamentID, gameID, requestID string) (bool, error)
	// CountByRequest — пост-проверка, что вставки этого запроса реально легли.
	CountByRequest(ctx context.Context, exec SQLExecutor, mode models.ScoreMode, tournamentID, gameID, requestID string) (int, error)
	ListTeamScores(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.TeamScore, error)
	ListPlayerScores(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.PlayerScore, error)
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error
	DeletePlayerScoresByPlayers(ctx context.Context, exec SQLExecutor, playerIDs []string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) InsertTeamScore(ctx context.Context, exec SQLExecutor, s *models.TeamScore) error {
	executor := r.getExecutor(exec)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO team_scores (id, tournament_id, game_id, team_id, score_change, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		s.ID, s.TournamentID, s.GameID, s.TeamID, s.ScoreChange, s.Reason, s.RequestID,
	).Scan(&s.CreatedAt)
	return r.handleScoreError(err)
}

func (r *postgresScoreRepository) InsertPlayerScore(ctx context.Context, exec SQLExecutor, s *models.PlayerScore) error {
	executor := r.getExecutor(exec)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO player_scores (id, tournament_id, game_id, player_id, team_id, score_change, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		s.ID, s.TournamentID, s.GameID, s.PlayerID, s.TeamID, s.ScoreChange, s.Reason, s.RequestID,
	).Scan(&s.CreatedAt)
	return r.handleScoreError(err)
}

func scoreTableForMode(mode models.ScoreMode) (string, error) {
	switch mode {
	case models.ScoreModeTeam:
		return "team_scores", nil
	case models.ScoreModePlayer:
		return "player_scores", nil
	default:
		return "", fmt.Errorf("unknown score mode %q", mode)
	}
}

func (r *postgresScoreRepository) RequestSeen(ctx context.Context, exec SQLExecutor, tournamentID, gameID, requestID string) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT EXISTS (SELECT 1 FROM team_scores WHERE tournament_id = $1 AND game_id = $2 AND request_id = $3)
		    OR EXISTS (SELECT 1 FROM player_scores WHERE tournament_id = $1 AND game_id = $2 AND request_id = $3)`

	var seen bool
	if err := executor.QueryRowContext(ctx, query, tournamentID, gameID, requestID).Scan(&seen); err != nil {
		return false, err
	}
	return seen, nil
}

func (r *postgresScoreRepository) CountByRequest(ctx context.Context, exec SQLExecutor, mode models.ScoreMode, tournamentID, gameID, requestID string) (int, error) {
	executor := r.getExecutor(exec)
	table, err := scoreTableForMode(mode)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE tournament_id = $1 AND game_id = $2 AND request_id = $3`,
		table,
	)
	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID, gameID, requestID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresScoreRepository) ListTeamScores(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.TeamScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, game_id, team_id, score_change, reason, request_id, created_at
		FROM team_scores
		WHERE tournament_id = $1
		ORDER BY created_at, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.TeamScore, 0)
	for rows.Next() {
		s := &models.TeamScore{}
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.GameID, &s.TeamID, &s.ScoreChange, &s.Reason, &s.RequestID, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *postgresScoreRepository) ListPlayerScores(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.PlayerScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, game_id, player_id, team_id, score_change, reason, request_id, created_at
		FROM player_scores
		WHERE tournament_id = $1
		ORDER BY created_at, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.PlayerScore, 0)
	for rows.Next() {
		s := &models.PlayerScore{}
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.GameID, &s.PlayerID, &s.TeamID, &s.ScoreChange, &s.Reason, &s.RequestID, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *postgresScoreRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM team_scores WHERE team_id = $1`, teamID); err != nil {
		return err
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM player_scores WHERE team_id = $1`, teamID)
	return err
}

func (r *postgresScoreRepository) DeletePlayerScoresByPlayers(ctx context.Context, exec SQLExecutor, playerIDs []string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM player_scores WHERE player_id = ANY($1)`, pq.Array(playerIDs))
	return err
}

func (r *postgresScoreRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM team_scores WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM player_scores WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresScoreRepository) handleScoreError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "team_scores_tournament_id_fkey", "player_scores_tournament_id_fkey":
			return ErrScoreInvalidTournament
		case "team_scores_game_id_fkey", "player_scores_game_id_fkey":
			return ErrScoreInvalidGame
		case "team_scores_team_id_fkey", "player_scores_team_id_fkey":
			return ErrScoreInvalidTeam
		case "player_scores_player_id_fkey":
			return ErrScoreInvalidPlayer
		}
	}
	return err
}
