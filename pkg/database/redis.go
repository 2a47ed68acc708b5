package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/lesson-api/internal/config"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// redisPingTimeout ограничивает проверку подключения при старте
const redisPingTimeout = 5 * time.Second

// RedisConfigured сообщает, задан ли хотя бы один адрес Redis
func RedisConfigured(cfg config.RedisConfig) bool {
	return len(cfg.Addrs) > 0 || cfg.Addr != ""
}

// RedisOptions строит опции универсального клиента и возвращает нормализованный режим.
// Поддерживает режимы single, sentinel, cluster.
func RedisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	addresses := cfg.Addrs
	if len(addresses) == 0 {
		if cfg.Addr == "" {
			return nil, "", fmt.Errorf("redis configuration error: Addrs or Addr must be provided")
		}
		addresses = []string{cfg.Addr}
	}

	options := &redis.UniversalOptions{
		Addrs:    addresses,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.MaxRetries != 0 {
		options.MaxRetries = cfg.MaxRetries
	}
	if cfg.MinRetryBackoff != 0 {
		options.MinRetryBackoff = time.Duration(cfg.MinRetryBackoff) * time.Millisecond
	}
	if cfg.MaxRetryBackoff != 0 {
		options.MaxRetryBackoff = time.Duration(cfg.MaxRetryBackoff) * time.Millisecond
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "single"
	}
	switch mode {
	case "sentinel":
		if cfg.MasterName == "" {
			return nil, "", fmt.Errorf("redis sentinel mode requires MasterName")
		}
		// NewUniversalClient выбирает FailoverClient по MasterName
		options.MasterName = cfg.MasterName
	case "cluster":
	case "single":
		// несколько адресов NewUniversalClient трактует как cluster
		options.Addrs = addresses[:1]
	default:
		return nil, "", fmt.Errorf("unsupported redis mode: %s", mode)
	}
	return options, mode, nil
}

// NewUniversalRedisClient создает клиент Redis и проверяет подключение в пределах redisPingTimeout
func NewUniversalRedisClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (redis.UniversalClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	options, mode, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	if mode == "cluster" {
		// с одним seed-адресом NewUniversalClient создал бы обычный клиент
		client = redis.NewClusterClient(options.Cluster())
	} else {
		client = redis.NewUniversalClient(options)
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (mode: %s, addrs: %v): %w", mode, options.Addrs, err)
	}

	log.Info("Connected to Redis", "mode", mode, "addrs", options.Addrs)
	return client, nil
}
