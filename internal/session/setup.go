package session

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"volcanoweb/internal/config"
)

// Setup builds the store named by cfg.Backend.
//   - dev=true with the redis backend: starts an in-process miniredis.
//   - otherwise: connects to cfg.Redis and pings it.
//
// The returned Store's Close releases everything Setup started.
func Setup(ctx context.Context, cfg config.SessionConfig, dev bool) (Store, error) {
	if cfg.Backend != "redis" {
		log.Info().Dur("ttl", cfg.TTL).Msg("session: memory store")
		return NewMemoryStore(cfg.TTL), nil
	}

	if dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("session: miniredis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		log.Info().Str("redis", mr.Addr()).Msg("dev: in-process miniredis started")
		return &devStore{RedisStore: NewRedisStore(rdb, cfg.TTL), mr: mr}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("session: redis %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("redis", cfg.Redis.Addr).Dur("ttl", cfg.TTL).Msg("session: redis store")
	return NewRedisStore(rdb, cfg.TTL), nil
}

// devStore owns the miniredis it talks to.
type devStore struct {
	*RedisStore
	mr *miniredis.Miniredis
}

func (s *devStore) Close() error {
	err := s.RedisStore.Close()
	s.mr.Close()
	return err
}
