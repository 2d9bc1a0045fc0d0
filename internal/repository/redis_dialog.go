package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/set-night/vpnshop/internal/domain"
)

const dialogKeyPrefix = "vpnshop:admin_dialog:"

// RedisDialogStore keeps admin dialogues in Redis so they survive restarts.
type RedisDialogStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisDialogStore(client *redis.Client, ttl time.Duration) *RedisDialogStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisDialogStore{client: client, ttl: ttl}
}

func dialogKey(adminID int64) string {
	return dialogKeyPrefix + strconv.FormatInt(adminID, 10)
}

func (s *RedisDialogStore) Get(ctx context.Context, adminID int64) (*domain.AdminDialog, error) {
	data, err := s.client.Get(ctx, dialogKey(adminID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDialogNotFound
		}
		return nil, fmt.Errorf("get dialog: %w", err)
	}

	var d domain.AdminDialog
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dialog: %w", err)
	}
	return &d, nil
}

func (s *RedisDialogStore) Set(ctx context.Context, adminID int64, d domain.AdminDialog) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dialog: %w", err)
	}
	if err := s.client.Set(ctx, dialogKey(adminID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set dialog: %w", err)
	}
	return nil
}

func (s *RedisDialogStore) Delete(ctx context.Context, adminID int64) error {
	if err := s.client.Del(ctx, dialogKey(adminID)).Err(); err != nil {
		return fmt.Errorf("delete dialog: %w", err)
	}
	return nil
}
