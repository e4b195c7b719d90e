package adjust

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clubdash/pkg/club"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings of the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis keeps each session's adjustments in one hash whose fields are month
// keys ("8-2025"). The hash expires TTL after the last write.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: rdb, ttl: cfg.TTL, prefix: "clubdash:adjustments:"}, nil
}

func (s *Redis) Close() error { return s.client.Close() }

func (s *Redis) key(sessionID string) string { return s.prefix + sessionID }

func (s *Redis) Get(ctx context.Context, sessionID string) (club.Adjustments, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load adjustments: %w", err)
	}
	out := make(club.Adjustments, len(fields))
	for field, raw := range fields {
		k, err := club.ParseMonthKey(field)
		if err != nil {
			continue
		}
		var a club.Adjustment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode adjustment %s: %w", field, err)
		}
		out[k] = a
	}
	return out, nil
}

func (s *Redis) Set(ctx context.Context, sessionID string, key club.MonthKey, a club.Adjustment) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	k := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, key.String(), raw)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store adjustment %s: %w", key, err)
	}
	return nil
}

func (s *Redis) Reset(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("reset adjustments: %w", err)
	}
	return nil
}
