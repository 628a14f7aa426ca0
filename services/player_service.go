package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

type UpdatePlayerInput struct {
	Name   *string `json:"name"`
	TeamID *string `json:"teamId"`
	Animal *string `json:"animal"`
}

type PlayerService interface {
	AddPlayer(ctx context.Context, teamID string, input CreatePlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, playerID string, input UpdatePlayerInput) (*models.Player, error)
	RemovePlayer(ctx context.Context, playerID string) error
}

type playerService struct {
	db         *sql.DB
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	animalRepo repositories.AnimalRepository
	scoreRepo  repositories.ScoreRepository
	cache      LeaderboardCache
	logger     *slog.Logger
}

func NewPlayerService(
	db *sql.DB,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	animalRepo repositories.AnimalRepository,
	scoreRepo repositories.ScoreRepository,
	cache LeaderboardCache,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		db:         db,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		animalRepo: animalRepo,
		scoreRepo:  scoreRepo,
		cache:      cache,
		logger:     logger,
	}
}

func (s *playerService) AddPlayer(ctx context.Context, teamID string, input CreatePlayerInput) (*models.Player, error) {
	name := normalizeName(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	animal, err := s.animalRepo.GetByName(ctx, nil, models.ResolveAnimalName(input.Animal))
	if err != nil {
		if errors.Is(err, repositories.ErrAnimalNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}

	player := &models.Player{
		Name:         name,
		TeamID:       team.ID,
		TournamentID: team.TournamentID,
		AnimalID:     animal.ID,
		Animal:       animal,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	s.invalidateLeaderboard(ctx, team.TournamentID)
	return player, nil
}

// UpdatePlayer меняет имя, аватара и команду игрока. Перевод возможен только
// в команду того же турнира; накопленные дельты при переводе не мигрируют —
// они переатрибуцируются автоматически при следующей сборке лидерборда.
func (s *playerService) UpdatePlayer(ctx context.Context, playerID string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	if input.Name != nil {
		name := normalizeName(*input.Name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = name
	}

	if input.TeamID != nil && *input.TeamID != player.TeamID {
		team, err := s.teamRepo.GetByID(ctx, nil, *input.TeamID)
		if err != nil {
			return nil, mapTeamRepoError(err)
		}
		if team.TournamentID != player.TournamentID {
			return nil, ErrPlayerWrongTeam
		}
		player.TeamID = team.ID
	}

	if input.Animal != nil {
		animal, err := s.animalRepo.GetByName(ctx, nil, models.ResolveAnimalName(*input.Animal))
		if err != nil {
			if errors.Is(err, repositories.ErrAnimalNotFound) {
				return nil, ErrAnimalNotFound
			}
			return nil, err
		}
		player.AnimalID = animal.ID
		player.Animal = animal
	}

	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	s.invalidateLeaderboard(ctx, player.TournamentID)
	return player, nil
}

// RemovePlayer удаляет игрока вместе с его дельтами очков.
func (s *playerService) RemovePlayer(ctx context.Context, playerID string) error {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		return mapPlayerRepoError(err)
	}

	err = withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.scoreRepo.DeletePlayerScoresByPlayers(ctx, tx, []string{playerID}); err != nil {
			return err
		}
		return s.playerRepo.Delete(ctx, tx, playerID)
	})
	if err != nil {
		return mapPlayerRepoError(err)
	}
	s.invalidateLeaderboard(ctx, player.TournamentID)
	return nil
}

func (s *playerService) invalidateLeaderboard(ctx context.Context, tournamentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tournamentID); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", "tournament_id", tournamentID, "error", err)
	}
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidTeam):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidAnimal):
		return ErrAnimalNotFound
	default:
		return err
	}
}
