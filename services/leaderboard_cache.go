package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/zgamesdev/zgames-backend/models"
)

// LeaderboardCache хранит собранный лидерборд между запросами. Промах
// возвращается как (nil, nil), чтобы вызывающий код не разбирал ошибки.
type LeaderboardCache interface {
	Get(ctx context.Context, tournamentID string) (*models.LeaderboardView, error)
	Set(ctx context.Context, tournamentID string, view *models.LeaderboardView) error
	Invalidate(ctx context.Context, tournamentID string) error
}

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	return &redisLeaderboardCache{client: client, ttl: ttl}
}

func leaderboardCacheKey(tournamentID string) string {
	return fmt.Sprintf("leaderboard:%s", tournamentID)
}

func (c *redisLeaderboardCache) Get(ctx context.Context, tournamentID string) (*models.LeaderboardView, error) {
	payload, err := c.client.Get(ctx, leaderboardCacheKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	view := &models.LeaderboardView{}
	if err := json.Unmarshal(payload, view); err != nil {
		// Битую запись выбрасываем и ведём себя как при промахе.
		_ = c.client.Del(ctx, leaderboardCacheKey(tournamentID)).Err()
		return nil, nil
	}
	return view, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, tournamentID string, view *models.LeaderboardView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardCacheKey(tournamentID), payload, c.ttl).Err()
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context, tournamentID string) error {
	return c.client.Del(ctx, leaderboardCacheKey(tournamentID)).Err()
}
