package services

import "errors"

// Сервисные ошибки. Хендлеры маппят их в HTTP-статусы, поэтому все
// ожидаемые отказы доменного слоя должны быть выражены этими сентинелами.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentNameConflict  = errors.New("tournament with this name already exists")
	ErrTournamentInvalidStatus = errors.New("invalid tournament status")

	ErrGameNotFound        = errors.New("game not found")
	ErrGameNotInTournament = errors.New("game is not selected for this tournament")

	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameConflict = errors.New("team with this name already exists in the tournament")

	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrPlayerWrongTeam    = errors.New("target team belongs to another tournament")

	ErrAnimalNotFound = errors.New("animal not found")

	ErrInvalidScoreMode = errors.New("score mode must be 'team' or 'player'")
	ErrScoreValidation  = errors.New("score entries validation failed")
	// ErrNoScoresInserted — пост-проверка транзакции не нашла вставленных
	// строк при непустом батче. Повторять такую транзакцию бессмысленно.
	ErrNoScoresInserted = errors.New("no score rows were inserted")
	ErrVersionConflict  = errors.New("tournament version conflict")
	// ErrScoreRecordingFailed оборачивает последнюю ошибку после исчерпания
	// всех попыток записи очков.
	ErrScoreRecordingFailed = errors.New("failed to record scores after retries")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email already registered")
)
