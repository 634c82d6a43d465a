package client

import (
	"context"
	"fmt"
	"time"

	"studio-storefront/internal/config"

	"github.com/redis/go-redis/v9"
)

func InitRedisClient(ctx context.Context, redisCfg *config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", redisCfg.Addr, err)
	}
	return rdb, nil
}
