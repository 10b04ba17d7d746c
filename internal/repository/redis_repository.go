package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"text-adventure/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKeyPrefix namespaces save records in a shared Redis.
const DefaultRedisKeyPrefix = "text_adventure:save:"

const redisScanCount = 100

var _ PlayerStateRepository = (*RedisRepository)(nil)

// RedisRepository keeps each player as a JSON string under <prefix><name>.
type RedisRepository struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

func NewRedisRepository(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *RedisRepository {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisRepository{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.Named("RedisRepo"),
	}
}

func (r *RedisRepository) key(playerName string) string {
	return r.keyPrefix + playerName
}

func (r *RedisRepository) Save(ctx context.Context, state *model.PlayerState) error {
	data, err := EncodeRecord(state)
	if err != nil {
		return err
	}
	if strings.TrimSpace(state.PlayerName) == "" {
		return fmt.Errorf("%w: player name is empty", model.ErrInvalidInput)
	}
	key := r.key(state.PlayerName)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save player state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("Player state saved", zap.String("key", key))
	return nil
}

func (r *RedisRepository) Load(ctx context.Context, playerName string) (*model.PlayerState, error) {
	key := r.key(playerName)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no save for '%s'", model.ErrNotFound, playerName)
		}
		r.logger.Error("Failed to load player state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	state, err := DecodeRecord(data)
	if err != nil {
		r.logger.Warn("Stored record is unusable", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return state, nil
}

func (r *RedisRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.keyPrefix+"*", redisScanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range keys {
			if name := strings.TrimPrefix(k, r.keyPrefix); name != "" {
				names = append(names, name)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(names)
	// SCAN may return the same key more than once
	return slices.Compact(names), nil
}
