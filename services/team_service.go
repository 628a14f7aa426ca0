package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
	"github.com/zgamesdev/zgames-backend/storage"
)

type TeamService interface {
	AddTeam(ctx context.Context, tournamentID, name string) (*models.Team, error)
	RenameTeam(ctx context.Context, teamID, name string) (*models.Team, error)
	RemoveTeam(ctx context.Context, teamID string) error
	// UploadLogo кладёт файл в объектное хранилище и привязывает ключ к
	// команде. Старый логотип удаляется после успешной замены.
	UploadLogo(ctx context.Context, teamID, filename, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	db             *sql.DB
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	scoreRepo      repositories.ScoreRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	cache          LeaderboardCache
	logger         *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	scoreRepo repositories.ScoreRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	cache LeaderboardCache,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:             db,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		scoreRepo:      scoreRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		cache:          cache,
		logger:         logger,
	}
}

func (s *teamService) AddTeam(ctx context.Context, tournamentID, name string) (*models.Team, error) {
	teamName := normalizeName(name)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	team := &models.Team{Name: teamName, TournamentID: tournamentID}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	team.Players = make([]*models.Player, 0)
	return team, nil
}

func (s *teamService) RenameTeam(ctx context.Context, teamID, name string) (*models.Team, error) {
	teamName := normalizeName(name)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	taken, err := s.teamRepo.ExistsByName(ctx, nil, team.TournamentID, teamName, teamID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTeamNameConflict
	}

	if err := s.teamRepo.Rename(ctx, nil, teamID, teamName); err != nil {
		return nil, mapTeamRepoError(err)
	}
	team.Name = teamName
	return team, nil
}

// RemoveTeam удаляет команду вместе с её игроками и всеми дельтами очков.
func (s *teamService) RemoveTeam(ctx context.Context, teamID string) error {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return mapTeamRepoError(err)
	}

	err = withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.scoreRepo.DeleteByTeam(ctx, tx, teamID); err != nil {
			return err
		}
		if err := s.playerRepo.DeleteByTeam(ctx, tx, teamID); err != nil {
			return err
		}
		return s.teamRepo.Delete(ctx, tx, teamID)
	})
	if err != nil {
		return mapTeamRepoError(err)
	}

	if team.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *team.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete team logo from storage", "team_id", teamID, "error", delErr)
		}
	}
	s.invalidateLeaderboard(ctx, team.TournamentID)
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, filename, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("teams/%s/logo-%s%s", teamID, uuid.NewString(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, err
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, teamID, &key); err != nil {
		// Откатываем осиротевший объект, раз привязка не удалась.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned logo", "key", key, "error", delErr)
		}
		return nil, mapTeamRepoError(err)
	}

	if oldKey != nil {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous team logo", "key", *oldKey, "error", delErr)
		}
	}

	team.LogoKey = &key
	url := s.uploader.PublicURL(key)
	team.LogoURL = &url
	return team, nil
}

func (s *teamService) invalidateLeaderboard(ctx context.Context, tournamentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tournamentID); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", "tournament_id", tournamentID, "error", err)
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamInvalidTournament):
		return ErrTournamentNotFound
	default:
		return err
	}
}
