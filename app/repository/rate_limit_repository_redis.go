package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leaddesk/leaddesk/app/models"
)

// redisRateLimitRepository implements RateLimitRepository on Redis. It keeps
// the same read-then-write semantics as the database implementation, so the
// documented check/increment race behaves identically across backends.
type redisRateLimitRepository struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisRateLimitRepository creates a redis-backed rate limit repository
func NewRedisRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &redisRateLimitRepository{client: client, ctx: context.Background()}
}

// Keys outlive the sliding hour so the limiter sees an expired-but-present
// window the same way it does with the database implementation.
const redisCounterTTL = 2 * time.Hour

type redisCounter struct {
	WindowStart time.Time `json:"windowStart"`
	Count       int       `json:"count"`
}

func counterKey(userID, action string) string {
	return fmt.Sprintf("ratelimit:%s:%s", userID, action)
}

// GetCurrent retrieves the stored counter for (user, action).
// Returns nil when absent.
func (r *redisRateLimitRepository) GetCurrent(userID, action string) (*models.RateLimit, error) {
	raw, err := r.client.Get(r.ctx, counterKey(userID, action)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var c redisCounter
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	return &models.RateLimit{
		UserID:      userID,
		Action:      action,
		WindowStart: c.WindowStart,
		Count:       c.Count,
	}, nil
}

// Start opens a fresh window at count 1
func (r *redisRateLimitRepository) Start(userID, action string, windowStart time.Time) error {
	return r.set(userID, action, redisCounter{WindowStart: windowStart, Count: 1})
}

// Increment bumps an existing counter by one
func (r *redisRateLimitRepository) Increment(counter *models.RateLimit) error {
	return r.set(counter.UserID, counter.Action, redisCounter{
		WindowStart: counter.WindowStart,
		Count:       counter.Count + 1,
	})
}

func (r *redisRateLimitRepository) set(userID, action string, c redisCounter) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, counterKey(userID, action), raw, redisCounterTTL).Err()
}
