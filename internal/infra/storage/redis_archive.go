// File: internal/infra/storage/redis_archive.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"brainz-training/internal/config"
	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/repository"
)

var _ repository.ChatArchive = (*RedisArchive)(nil)

// RedisArchive keeps the serialized chat collection in a single string key.
// No TTL: the document lives until explicitly overwritten.
type RedisArchive struct {
	cli   *redis.Client
	codec *Codec
	log   *zerolog.Logger
}

func NewRedisArchive(ctx context.Context, cfg *config.RedisConfig, codec *Codec, logger *zerolog.Logger) (*RedisArchive, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisArchive{cli: cli, codec: codec, log: logger}, nil
}

func (a *RedisArchive) Close() error { return a.cli.Close() }

func (a *RedisArchive) Save(ctx context.Context, chats []*model.Chat) error {
	payload, err := a.codec.Encode(chats)
	if err != nil {
		return err
	}
	if err := a.cli.Set(ctx, StorageKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("write document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (a *RedisArchive) Load(ctx context.Context) ([]*model.Chat, error) {
	data, err := a.cli.Get(ctx, StorageKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*model.Chat{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	chats, err := a.codec.Decode(data)
	if err != nil {
		a.log.Warn().Err(err).Msg("stored chats unreadable, starting empty")
		return []*model.Chat{}, nil
	}
	return chats, nil
}
