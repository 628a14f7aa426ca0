package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

type CreatePlayerInput struct {
	Name string `json:"name"`
	// Animal — имя животного или его emoji; пустое значение тоже допустимо,
	// тогда игрок получает аватара по умолчанию.
	Animal string `json:"animal"`
}

type CreateTeamInput struct {
	Name    string              `json:"name"`
	Players []CreatePlayerInput `json:"players"`
}

type CreateTournamentInput struct {
	Name        string                   `json:"name"`
	Description *string                  `json:"description"`
	Status      *models.TournamentStatus `json:"status"`
	GameIDs     []string                 `json:"gameIds"`
	Teams       []CreateTeamInput        `json:"teams"`
}

type UpdateTournamentInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	GetActive(ctx context.Context) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	animalRepo     repositories.AnimalRepository
	scoreRepo      repositories.ScoreRepository
	cache          LeaderboardCache
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	animalRepo repositories.AnimalRepository,
	scoreRepo repositories.ScoreRepository,
	cache LeaderboardCache,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		animalRepo:     animalRepo,
		scoreRepo:      scoreRepo,
		cache:          cache,
		logger:         logger,
	}
}

// Create создаёт турнир вместе с выбранными играми, командами и игроками в
// одной транзакции. Активация нового турнира деактивирует остальные: в
// системе не бывает двух активных турниров одновременно.
func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := normalizeName(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	status := models.StatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrTournamentInvalidStatus
		}
		status = *input.Status
	}

	tournament := &models.Tournament{
		Name:        name,
		Description: input.Description,
		Status:      status,
	}

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
			return mapTournamentRepoError(err)
		}

		if status == models.StatusActive {
			if _, err := s.tournamentRepo.DeactivateOthers(ctx, tx, tournament.ID); err != nil {
				return err
			}
		}

		for _, gameID := range input.GameIDs {
			if err := s.tournamentRepo.AddSelectedGame(ctx, tx, tournament.ID, gameID); err != nil {
				if errors.Is(err, repositories.ErrTournamentInvalidGame) {
					return ErrGameNotFound
				}
				return err
			}
		}

		for _, teamInput := range input.Teams {
			teamName := normalizeName(teamInput.Name)
			if teamName == "" {
				return ErrTeamNameRequired
			}
			team := &models.Team{Name: teamName, TournamentID: tournament.ID}
			if err := s.teamRepo.Create(ctx, tx, team); err != nil {
				if errors.Is(err, repositories.ErrTeamNameConflict) {
					return ErrTeamNameConflict
				}
				return err
			}
			tournament.Teams = append(tournament.Teams, team)

			for _, playerInput := range teamInput.Players {
				player, err := s.createPlayer(ctx, tx, tournament.ID, team.ID, playerInput)
				if err != nil {
					return err
				}
				team.Players = append(team.Players, player)
			}
		}

		games, err := s.tournamentRepo.ListSelectedGames(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		tournament.SelectedGames = games
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) createPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, teamID string, input CreatePlayerInput) (*models.Player, error) {
	playerName := normalizeName(input.Name)
	if playerName == "" {
		return nil, ErrPlayerNameRequired
	}

	animal, err := s.animalRepo.GetByName(ctx, exec, models.ResolveAnimalName(input.Animal))
	if err != nil {
		if errors.Is(err, repositories.ErrAnimalNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}

	player := &models.Player{
		Name:         playerName,
		TeamID:       teamID,
		TournamentID: tournamentID,
		AnimalID:     animal.ID,
		Animal:       animal,
	}
	if err := s.playerRepo.Create(ctx, exec, player); err != nil {
		return nil, err
	}
	return player, nil
}

// Get возвращает турнир с командами, игроками и выбранными играми.
func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if err := s.attachDetails(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetActive(ctx context.Context) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.FindActive(ctx, nil)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.attachDetails(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) attachDetails(ctx context.Context, tournament *models.Tournament) error {
	var teams []*models.Team
	var players []*models.Player

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gctx, nil, tournament.ID)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByTournament(gctx, nil, tournament.ID)
		return err
	})
	g.Go(func() error {
		games, err := s.tournamentRepo.ListSelectedGames(gctx, nil, tournament.ID)
		tournament.SelectedGames = games
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	byTeam := make(map[string][]*models.Player)
	for _, p := range players {
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}
	for _, t := range teams {
		t.Players = byTeam[t.ID]
		if t.Players == nil {
			t.Players = make([]*models.Player, 0)
		}
	}
	tournament.Teams = teams
	return nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	if input.Name != nil {
		name := normalizeName(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}

	if err := s.tournamentRepo.Update(ctx, nil, tournament); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return tournament, nil
}

// UpdateStatus меняет статус турнира. Активация эксклюзивна: остальные
// активные турниры деактивируются в той же транзакции.
func (s *tournamentService) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.IsValid() {
		return nil, ErrTournamentInvalidStatus
	}

	var tournament *models.Tournament
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return mapTournamentRepoError(err)
		}
		tournament = t

		if t.Status == status {
			// Статус уже такой — no-op.
			return nil
		}

		if status == models.StatusActive {
			deactivated, err := s.tournamentRepo.DeactivateOthers(ctx, tx, id)
			if err != nil {
				return err
			}
			if deactivated > 0 {
				s.logger.Info("deactivated other tournaments on activation",
					"tournament_id", id, "deactivated", deactivated)
			}
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, tx, id, status); err != nil {
			return mapTournamentRepoError(err)
		}
		tournament.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tournament, nil
}

// Delete удаляет турнир вместе со всеми его журналами очков, игроками и
// командами. Каскад выполняется явно и в одной транзакции.
func (s *tournamentService) Delete(ctx context.Context, id string) error {
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, id); err != nil {
			return mapTournamentRepoError(err)
		}
		if err := s.scoreRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		if err := s.playerRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		if err := s.teamRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		return s.tournamentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, id); cacheErr != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", "tournament_id", id, "error", cacheErr)
		}
	}
	return nil
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	default:
		return err
	}
}
