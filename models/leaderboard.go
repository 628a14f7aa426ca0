package models

import "time"

// LeaderboardView — результат агрегации всех дельт турнира на момент чтения.
// Строится заново при каждом запросе: материализованных таблиц лидерборда нет,
// источником истины остаётся журнал дельт.
type LeaderboardView struct {
	TournamentID          string                 `json:"tournament_id"`
	TournamentName        string                 `json:"tournament_name"`
	TournamentDescription *string                `json:"tournament_description,omitempty"`
	TournamentStatus      TournamentStatus       `json:"tournament_status"`
	Version               int                    `json:"version"`
	TeamRankings          []TeamRanking          `json:"team_rankings"`
	TotalTeams            int                    `json:"total_teams"`
	TotalPlayers          int                    `json:"total_players"`
	HighestTeam           *TeamHighlight         `json:"highest_team,omitempty"`
	HighestPlayer         *PlayerHighlight       `json:"highest_player,omitempty"`
	GameBreakdown         []GameLeaderboardView  `json:"game_breakdown"`
	SelectedGames         []Game                 `json:"selected_games"`
	GeneratedAt           time.Time              `json:"generated_at"`
}

// TeamRanking — позиция команды. TotalScore = собственные командные дельты
// плюс дельты её текущих игроков; TeamBonus изолирует командную составляющую.
type TeamRanking struct {
	TeamID     string            `json:"team_id"`
	Name       string            `json:"name"`
	Rank       int               `json:"rank"`
	TotalScore int               `json:"total_score"`
	TeamBonus  int               `json:"team_bonus"`
	LogoURL    *string           `json:"logo_url,omitempty"`
	Players    []PlayerRanking   `json:"players"`
	GameScores []EntityGameScore `json:"game_scores"`
}

// PlayerRanking — позиция игрока. Командные бонусы игрокам не наследуются.
type PlayerRanking struct {
	PlayerID    string            `json:"player_id"`
	Name        string            `json:"name"`
	Animal      *Animal           `json:"animal,omitempty"`
	TeamID      string            `json:"team_id"`
	TeamName    string            `json:"team_name"`
	TotalScore  int               `json:"total_score"`
	TeamRank    int               `json:"team_rank"`
	OverallRank int               `json:"overall_rank"`
	GameScores  []EntityGameScore `json:"game_scores"`
}

// EntityGameScore — очки одной сущности (команды или игрока) по одной игре
// вместе с сырыми дельтами, из которых сложился итог.
type EntityGameScore struct {
	GameID     string       `json:"game_id"`
	GameName   string       `json:"game_name"`
	TotalScore int          `json:"total_score"`
	Breakdown  []ScoreEntry `json:"breakdown"`
}

// ScoreEntry — одна сырая дельта для аудита/объяснимости итога.
type ScoreEntry struct {
	Score      int       `json:"score"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

// GameLeaderboardView — срез лидерборда по одной игре турнира.
type GameLeaderboardView struct {
	GameID       string            `json:"game_id"`
	GameName     string            `json:"game_name"`
	Game         *Game             `json:"game,omitempty"`
	TeamScores   []GameTeamScore   `json:"team_scores"`
	PlayerScores []GamePlayerScore `json:"player_scores"`
	TotalTeams   int               `json:"total_team_participants"`
	TotalPlayers int               `json:"total_player_participants"`
}

// GameTeamScore — очки команды по игре. Score = TeamOnlyScore + PlayerScore.
type GameTeamScore struct {
	TeamID        string       `json:"team_id"`
	TeamName      string       `json:"team_name"`
	Score         int          `json:"score"`
	TeamOnlyScore int          `json:"team_only_score"`
	PlayerScore   int          `json:"player_score"`
	Breakdown     []ScoreEntry `json:"breakdown"`
}

type GamePlayerScore struct {
	PlayerID   string       `json:"player_id"`
	PlayerName string       `json:"player_name"`
	TeamID     string       `json:"team_id"`
	TeamName   string       `json:"team_name"`
	Score      int          `json:"score"`
	Breakdown  []ScoreEntry `json:"breakdown"`
}

type TeamHighlight struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type PlayerHighlight struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	TeamID   string  `json:"team_id"`
	TeamName string  `json:"team_name"`
	Animal   *Animal `json:"animal,omitempty"`
}
