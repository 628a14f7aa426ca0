package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
	"github.com/zgamesdev/zgames-backend/storage"
)

type LeaderboardService interface {
	// GetTournamentLeaderboard собирает лидерборд турнира. Пустой
	// tournamentID означает "текущий активный турнир"; если активного нет,
	// возвращается (nil, nil) — это не ошибка.
	GetTournamentLeaderboard(ctx context.Context, tournamentID string) (*models.LeaderboardView, error)
	GetGameLeaderboard(ctx context.Context, tournamentID, gameID string) (*models.GameLeaderboardView, error)
}

type leaderboardService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	gameRepo       repositories.GameRepository
	scoreRepo      repositories.ScoreRepository
	uploader       storage.FileUploader
	cache          LeaderboardCache
	logger         *slog.Logger
}

func NewLeaderboardService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	gameRepo repositories.GameRepository,
	scoreRepo repositories.ScoreRepository,
	uploader storage.FileUploader,
	cache LeaderboardCache,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		gameRepo:       gameRepo,
		scoreRepo:      scoreRepo,
		uploader:       uploader,
		cache:          cache,
		logger:         logger,
	}
}

func (s *leaderboardService) resolveTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	if tournamentID == "" {
		t, err := s.tournamentRepo.FindActive(ctx, nil)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return t, nil
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

// tournamentData — всё, что нужно для одной сборки лидерборда.
type tournamentData struct {
	teams        []*models.Team
	players      []*models.Player
	games        []models.Game
	teamScores   []*models.TeamScore
	playerScores []*models.PlayerScore
}

func (s *leaderboardService) loadTournamentData(ctx context.Context, tournamentID string) (*tournamentData, error) {
	data := &tournamentData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gctx, nil, tournamentID)
		data.teams = teams
		return err
	})
	g.Go(func() error {
		players, err := s.playerRepo.ListByTournament(gctx, nil, tournamentID)
		data.players = players
		return err
	})
	g.Go(func() error {
		games, err := s.tournamentRepo.ListSelectedGames(gctx, nil, tournamentID)
		data.games = games
		return err
	})
	g.Go(func() error {
		scores, err := s.scoreRepo.ListTeamScores(gctx, nil, tournamentID)
		data.teamScores = scores
		return err
	})
	g.Go(func() error {
		scores, err := s.scoreRepo.ListPlayerScores(gctx, nil, tournamentID)
		data.playerScores = scores
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *leaderboardService) GetTournamentLeaderboard(ctx context.Context, tournamentID string) (*models.LeaderboardView, error) {
	tournament, err := s.resolveTournament(ctx, tournamentID)
	if err != nil || tournament == nil {
		return nil, err
	}

	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, tournament.ID)
		if cacheErr != nil {
			s.logger.Warn("leaderboard cache read failed", "tournament_id", tournament.ID, "error", cacheErr)
		} else if cached != nil && cached.Version == tournament.Version {
			return cached, nil
		}
	}

	data, err := s.loadTournamentData(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}

	view := s.buildLeaderboardView(tournament, data)

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, tournament.ID, view); cacheErr != nil {
			s.logger.Warn("leaderboard cache write failed", "tournament_id", tournament.ID, "error", cacheErr)
		}
	}
	return view, nil
}

func (s *leaderboardService) GetGameLeaderboard(ctx context.Context, tournamentID, gameID string) (*models.GameLeaderboardView, error) {
	tournament, err := s.resolveTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament == nil {
		return nil, nil
	}

	game, err := s.gameRepo.GetByID(ctx, nil, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	selected, err := s.tournamentRepo.GameSelected(ctx, nil, tournament.ID, gameID)
	if err != nil {
		return nil, err
	}
	if !selected {
		return nil, ErrGameNotInTournament
	}

	data, err := s.loadTournamentData(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}

	view := buildGameView(*game, data)
	view.Game = game
	return view, nil
}

// buildLeaderboardView — чистая свёртка журналов дельт в ранжированное
// представление. Итог команды по игре = её командные дельты плюс дельты её
// текущих игроков; командный бонус игрокам не наследуется.
func (s *leaderboardService) buildLeaderboardView(tournament *models.Tournament, data *tournamentData) *models.LeaderboardView {
	gameNames := make(map[string]string, len(data.games))
	for _, g := range data.games {
		gameNames[g.ID] = g.Name
	}

	teamByID := make(map[string]*models.Team, len(data.teams))
	for _, t := range data.teams {
		teamByID[t.ID] = t
	}
	playerByID := make(map[string]*models.Player, len(data.players))
	playersByTeam := make(map[string][]*models.Player)
	for _, p := range data.players {
		playerByID[p.ID] = p
		playersByTeam[p.TeamID] = append(playersByTeam[p.TeamID], p)
	}

	// teamID -> gameID -> сырые командные дельты
	teamEntries := make(map[string]map[string][]models.ScoreEntry)
	for _, sc := range data.teamScores {
		if _, ok := teamByID[sc.TeamID]; !ok {
			continue
		}
		if teamEntries[sc.TeamID] == nil {
			teamEntries[sc.TeamID] = make(map[string][]models.ScoreEntry)
		}
		teamEntries[sc.TeamID][sc.GameID] = append(teamEntries[sc.TeamID][sc.GameID],
			models.ScoreEntry{Score: sc.ScoreChange, Reason: sc.Reason, RecordedAt: sc.CreatedAt})
	}

	// playerID -> gameID -> сырые дельты игрока. Дельты удалённых игроков
	// игнорируются: привязка идёт по текущему составу.
	playerEntries := make(map[string]map[string][]models.ScoreEntry)
	for _, sc := range data.playerScores {
		if _, ok := playerByID[sc.PlayerID]; !ok {
			continue
		}
		if playerEntries[sc.PlayerID] == nil {
			playerEntries[sc.PlayerID] = make(map[string][]models.ScoreEntry)
		}
		playerEntries[sc.PlayerID][sc.GameID] = append(playerEntries[sc.PlayerID][sc.GameID],
			models.ScoreEntry{Score: sc.ScoreChange, Reason: sc.Reason, RecordedAt: sc.CreatedAt})
	}

	sumEntries := func(entries []models.ScoreEntry) int {
		total := 0
		for _, e := range entries {
			total += e.Score
		}
		return total
	}

	// Ранжирование игроков по всему турниру.
	playerRankings := make([]models.PlayerRanking, 0, len(data.players))
	playerTotals := make(map[string]int, len(data.players))
	for _, p := range data.players {
		total := 0
		gameScores := make([]models.EntityGameScore, 0)
		for _, g := range data.games {
			entries := playerEntries[p.ID][g.ID]
			if len(entries) == 0 {
				continue
			}
			score := sumEntries(entries)
			total += score
			gameScores = append(gameScores, models.EntityGameScore{
				GameID:     g.ID,
				GameName:   g.Name,
				TotalScore: score,
				Breakdown:  entries,
			})
		}
		playerTotals[p.ID] = total

		teamName := ""
		if team, ok := teamByID[p.TeamID]; ok {
			teamName = team.Name
		}
		playerRankings = append(playerRankings, models.PlayerRanking{
			PlayerID:   p.ID,
			Name:       p.Name,
			Animal:     p.Animal,
			TeamID:     p.TeamID,
			TeamName:   teamName,
			TotalScore: total,
			GameScores: gameScores,
		})
	}
	sort.SliceStable(playerRankings, func(i, j int) bool {
		return rankLess(playerRankings[i].TotalScore, playerRankings[j].TotalScore,
			playerRankings[i].Name, playerRankings[j].Name)
	})
	overallRankByPlayer := make(map[string]int, len(playerRankings))
	for i := range playerRankings {
		playerRankings[i].OverallRank = i + 1
		overallRankByPlayer[playerRankings[i].PlayerID] = i + 1
	}

	// Ранжирование команд.
	teamRankings := make([]models.TeamRanking, 0, len(data.teams))
	for _, t := range data.teams {
		teamBonus := 0
		totalScore := 0
		gameScores := make([]models.EntityGameScore, 0)

		for _, g := range data.games {
			combined := append([]models.ScoreEntry{}, teamEntries[t.ID][g.ID]...)
			for _, p := range playersByTeam[t.ID] {
				combined = append(combined, playerEntries[p.ID][g.ID]...)
			}
			if len(combined) == 0 {
				continue
			}
			sort.SliceStable(combined, func(i, j int) bool {
				return combined[i].RecordedAt.Before(combined[j].RecordedAt)
			})
			score := sumEntries(combined)
			totalScore += score
			teamBonus += sumEntries(teamEntries[t.ID][g.ID])
			gameScores = append(gameScores, models.EntityGameScore{
				GameID:     g.ID,
				GameName:   g.Name,
				TotalScore: score,
				Breakdown:  combined,
			})
		}

		members := make([]models.PlayerRanking, 0, len(playersByTeam[t.ID]))
		for _, pr := range playerRankings {
			if pr.TeamID == t.ID {
				members = append(members, pr)
			}
		}
		for i := range members {
			members[i].TeamRank = i + 1
		}

		teamRankings = append(teamRankings, models.TeamRanking{
			TeamID:     t.ID,
			Name:       t.Name,
			TotalScore: totalScore,
			TeamBonus:  teamBonus,
			LogoURL:    s.logoURL(t),
			Players:    members,
			GameScores: gameScores,
		})
	}
	sort.SliceStable(teamRankings, func(i, j int) bool {
		return rankLess(teamRankings[i].TotalScore, teamRankings[j].TotalScore,
			teamRankings[i].Name, teamRankings[j].Name)
	})
	for i := range teamRankings {
		teamRankings[i].Rank = i + 1
	}

	var highestTeam *models.TeamHighlight
	if len(teamRankings) > 0 {
		highestTeam = &models.TeamHighlight{
			TeamID: teamRankings[0].TeamID,
			Name:   teamRankings[0].Name,
			Score:  teamRankings[0].TotalScore,
		}
	}
	var highestPlayer *models.PlayerHighlight
	if len(playerRankings) > 0 {
		top := playerRankings[0]
		highestPlayer = &models.PlayerHighlight{
			PlayerID: top.PlayerID,
			Name:     top.Name,
			Score:    top.TotalScore,
			TeamID:   top.TeamID,
			TeamName: top.TeamName,
			Animal:   top.Animal,
		}
	}

	breakdown := make([]models.GameLeaderboardView, 0, len(data.games))
	for _, g := range data.games {
		breakdown = append(breakdown, *buildGameView(g, data))
	}

	return &models.LeaderboardView{
		TournamentID:          tournament.ID,
		TournamentName:        tournament.Name,
		TournamentDescription: tournament.Description,
		TournamentStatus:      tournament.Status,
		Version:               tournament.Version,
		TeamRankings:          teamRankings,
		TotalTeams:            len(data.teams),
		TotalPlayers:          len(data.players),
		HighestTeam:           highestTeam,
		HighestPlayer:         highestPlayer,
		GameBreakdown:         breakdown,
		SelectedGames:         data.games,
		GeneratedAt:           time.Now().UTC(),
	}
}

// buildGameView собирает срез по одной игре: участвовавшие команды и игроки
// с их дельтами именно этой игры.
func buildGameView(game models.Game, data *tournamentData) *models.GameLeaderboardView {
	teamByID := make(map[string]*models.Team, len(data.teams))
	for _, t := range data.teams {
		teamByID[t.ID] = t
	}
	playerByID := make(map[string]*models.Player, len(data.players))
	for _, p := range data.players {
		playerByID[p.ID] = p
	}

	teamOnly := make(map[string][]models.ScoreEntry)
	for _, sc := range data.teamScores {
		if sc.GameID != game.ID {
			continue
		}
		if _, ok := teamByID[sc.TeamID]; !ok {
			continue
		}
		teamOnly[sc.TeamID] = append(teamOnly[sc.TeamID],
			models.ScoreEntry{Score: sc.ScoreChange, Reason: sc.Reason, RecordedAt: sc.CreatedAt})
	}

	playerGame := make(map[string][]models.ScoreEntry)
	for _, sc := range data.playerScores {
		if sc.GameID != game.ID {
			continue
		}
		if _, ok := playerByID[sc.PlayerID]; !ok {
			continue
		}
		playerGame[sc.PlayerID] = append(playerGame[sc.PlayerID],
			models.ScoreEntry{Score: sc.ScoreChange, Reason: sc.Reason, RecordedAt: sc.CreatedAt})
	}

	sum := func(entries []models.ScoreEntry) int {
		total := 0
		for _, e := range entries {
			total += e.Score
		}
		return total
	}

	playerScores := make([]models.GamePlayerScore, 0)
	playerSumByTeam := make(map[string]int)
	teamHasPlayerEntries := make(map[string]bool)
	for _, p := range data.players {
		entries := playerGame[p.ID]
		if len(entries) == 0 {
			continue
		}
		score := sum(entries)
		playerSumByTeam[p.TeamID] += score
		teamHasPlayerEntries[p.TeamID] = true
		teamName := ""
		if team, ok := teamByID[p.TeamID]; ok {
			teamName = team.Name
		}
		playerScores = append(playerScores, models.GamePlayerScore{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TeamID:     p.TeamID,
			TeamName:   teamName,
			Score:      score,
			Breakdown:  entries,
		})
	}
	sort.SliceStable(playerScores, func(i, j int) bool {
		return rankLess(playerScores[i].Score, playerScores[j].Score,
			playerScores[i].PlayerName, playerScores[j].PlayerName)
	})

	teamScores := make([]models.GameTeamScore, 0)
	for _, t := range data.teams {
		teamOnlyScore := sum(teamOnly[t.ID])
		playerScore := playerSumByTeam[t.ID]
		if len(teamOnly[t.ID]) == 0 && !teamHasPlayerEntries[t.ID] {
			// Команда не участвовала в игре — в срез не попадает.
			continue
		}
		teamScores = append(teamScores, models.GameTeamScore{
			TeamID:        t.ID,
			TeamName:      t.Name,
			Score:         teamOnlyScore + playerScore,
			TeamOnlyScore: teamOnlyScore,
			PlayerScore:   playerScore,
			Breakdown:     teamOnly[t.ID],
		})
	}
	sort.SliceStable(teamScores, func(i, j int) bool {
		return rankLess(teamScores[i].Score, teamScores[j].Score,
			teamScores[i].TeamName, teamScores[j].TeamName)
	})

	return &models.GameLeaderboardView{
		GameID:       game.ID,
		GameName:     game.Name,
		TeamScores:   teamScores,
		PlayerScores: playerScores,
		TotalTeams:   len(teamScores),
		TotalPlayers: len(playerScores),
	}
}

// rankLess — общий порядок ранжирования: очки по убыванию, при равенстве
// имя по алфавиту без учёта регистра.
func rankLess(scoreI, scoreJ int, nameI, nameJ string) bool {
	if scoreI != scoreJ {
		return scoreI > scoreJ
	}
	return strings.ToLower(nameI) < strings.ToLower(nameJ)
}

func (s *leaderboardService) logoURL(team *models.Team) *string {
	if team.LogoKey == nil || s.uploader == nil {
		return nil
	}
	url := s.uploader.PublicURL(*team.LogoKey)
	return &url
}
