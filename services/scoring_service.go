package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

const (
	maxScoreRecordingAttempts = 3
	scoreRetryBaseDelay       = 100 * time.Millisecond
	scoreRetryMaxJitter       = 100 * time.Millisecond
)

// ScoreInput — одна дельта очков. Score сделан указателем, чтобы отличать
// отсутствующее значение от легального нуля.
type ScoreInput struct {
	TeamID   *string `json:"teamId,omitempty"`
	PlayerID *string `json:"playerId,omitempty"`
	Score    *int    `json:"score"`
	Reason   *string `json:"reason,omitempty"`
}

type RecordScoresInput struct {
	TournamentID string
	GameID       string
	Mode         models.ScoreMode
	Scores       []ScoreInput
	// RequestID клиента; при отсутствии сервис генерирует свой.
	RequestID *string
}

type RecordScoresResult struct {
	RequestID string `json:"requestId"`
	// Replayed — запрос с этим RequestID уже был записан ранее, новая
	// попытка завершилась no-op'ом.
	Replayed bool `json:"replayed"`
	Recorded int  `json:"recorded"`
}

// ScoreNotifier рассылает уведомление об изменении лидерборда. Вызывается
// после коммита; ошибки доставки на результат записи не влияют.
type ScoreNotifier interface {
	NotifyLeaderboardUpdated(tournamentID, gameID string, mode models.ScoreMode, requestID string)
}

type ScoringService interface {
	RecordGameScores(ctx context.Context, input RecordScoresInput) (*RecordScoresResult, error)
}

type scoringService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	scoreRepo      repositories.ScoreRepository
	notifier       ScoreNotifier
	cache          LeaderboardCache
	logger         *slog.Logger
	sleep          func(time.Duration) // подменяется в тестах
}

func NewScoringService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	scoreRepo repositories.ScoreRepository,
	notifier ScoreNotifier,
	cache LeaderboardCache,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		db:             db,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		scoreRepo:      scoreRepo,
		notifier:       notifier,
		cache:          cache,
		logger:         logger,
		sleep:          time.Sleep,
	}
}

// RecordGameScores записывает батч дельт очков с повторами. Повторяются
// только конфликт версии и неизвестные сбои хранилища; ошибки валидации,
// отсутствующий турнир и пустая пост-проверка отваливаются сразу.
func (s *scoringService) RecordGameScores(ctx context.Context, input RecordScoresInput) (*RecordScoresResult, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.gameRepo.GetByID(ctx, nil, input.GameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	selected, err := s.tournamentRepo.GameSelected(ctx, nil, input.TournamentID, input.GameID)
	if err != nil {
		return nil, err
	}
	if !selected {
		return nil, ErrGameNotInTournament
	}

	requestID := uuid.NewString()
	if input.RequestID != nil && *input.RequestID != "" {
		requestID = *input.RequestID
	}

	var lastErr error
	for attempt := 1; attempt <= maxScoreRecordingAttempts; attempt++ {
		result, err := s.recordOnce(ctx, input, requestID)
		if err == nil {
			if !result.Replayed && result.Recorded > 0 {
				s.afterCommit(ctx, input, requestID)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableScoreError(err) {
			return nil, err
		}

		if attempt < maxScoreRecordingAttempts {
			delay := scoreRetryBaseDelay * time.Duration(1<<(attempt-1))
			delay += time.Duration(rand.Int63n(int64(scoreRetryMaxJitter)))
			s.logger.Warn("score recording attempt failed, retrying",
				"tournament_id", input.TournamentID,
				"game_id", input.GameID,
				"request_id", requestID,
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
			s.sleep(delay)
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrScoreRecordingFailed, lastErr)
}

func (s *scoringService) validateInput(input RecordScoresInput) error {
	if input.TournamentID == "" {
		return fmt.Errorf("%w: tournament id is required", ErrScoreValidation)
	}
	if input.GameID == "" {
		return fmt.Errorf("%w: game id is required", ErrScoreValidation)
	}
	if !input.Mode.IsValid() {
		return ErrInvalidScoreMode
	}
	for i, entry := range input.Scores {
		if entry.Score == nil {
			return fmt.Errorf("%w: entry %d: score is required", ErrScoreValidation, i)
		}
		switch input.Mode {
		case models.ScoreModeTeam:
			if entry.TeamID == nil || *entry.TeamID == "" {
				return fmt.Errorf("%w: entry %d: team id is required in team mode", ErrScoreValidation, i)
			}
		case models.ScoreModePlayer:
			if entry.PlayerID == nil || *entry.PlayerID == "" {
				return fmt.Errorf("%w: entry %d: player id is required in player mode", ErrScoreValidation, i)
			}
		}
	}
	return nil
}

// recordOnce — одна транзакционная попытка: блокировка строки турнира,
// проверка на повтор запроса, вставка дельт, пост-проверка и условный
// бамп версии.
func (s *scoringService) recordOnce(ctx context.Context, input RecordScoresInput, requestID string) (*RecordScoresResult, error) {
	result := &RecordScoresResult{RequestID: requestID}

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, input.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		seen, err := s.scoreRepo.RequestSeen(ctx, tx, input.TournamentID, input.GameID, requestID)
		if err != nil {
			return err
		}
		if seen {
			// Повтор: коммитим пустую транзакцию и возвращаем тот же
			// request id, версию не трогаем.
			result.Replayed = true
			return nil
		}

		for _, entry := range input.Scores {
			reason := ""
			if entry.Reason != nil {
				reason = *entry.Reason
			}
			tagged := models.TagReason(reason, requestID)

			switch input.Mode {
			case models.ScoreModeTeam:
				score := &models.TeamScore{
					TournamentID: input.TournamentID,
					GameID:       input.GameID,
					TeamID:       *entry.TeamID,
					ScoreChange:  *entry.Score,
					Reason:       tagged,
					RequestID:    requestID,
				}
				if err := s.scoreRepo.InsertTeamScore(ctx, tx, score); err != nil {
					return err
				}
			case models.ScoreModePlayer:
				score := &models.PlayerScore{
					TournamentID: input.TournamentID,
					GameID:       input.GameID,
					PlayerID:     *entry.PlayerID,
					TeamID:       entry.TeamID,
					ScoreChange:  *entry.Score,
					Reason:       tagged,
					RequestID:    requestID,
				}
				if err := s.scoreRepo.InsertPlayerScore(ctx, tx, score); err != nil {
					return err
				}
			}
		}

		if len(input.Scores) == 0 {
			// Пустой батч — легальный no-op: версия не меняется.
			return nil
		}

		count, err := s.scoreRepo.CountByRequest(ctx, tx, input.Mode, input.TournamentID, input.GameID, requestID)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoScoresInserted
		}
		result.Recorded = count

		if err := s.tournamentRepo.IncrementVersion(ctx, tx, tournament.ID, tournament.Version); err != nil {
			if errors.Is(err, repositories.ErrTournamentVersionConflict) {
				return ErrVersionConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// afterCommit — пост-коммитные эффекты. Любой их сбой логируется и
// никогда не отменяет уже записанные очки.
func (s *scoringService) afterCommit(ctx context.Context, input RecordScoresInput, requestID string) {
	if s.notifier != nil {
		s.notifier.NotifyLeaderboardUpdated(input.TournamentID, input.GameID, input.Mode, requestID)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, input.TournamentID); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache",
				"tournament_id", input.TournamentID,
				"error", err,
			)
		}
	}
}

func isRetryableScoreError(err error) bool {
	switch {
	case errors.Is(err, ErrVersionConflict):
		return true
	case errors.Is(err, ErrTournamentNotFound),
		errors.Is(err, ErrScoreValidation),
		errors.Is(err, ErrInvalidScoreMode),
		errors.Is(err, ErrNoScoresInserted),
		errors.Is(err, ErrGameNotInTournament),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		// Неопознанный сбой хранилища: считаем транзиентным.
		return true
	}
}
