package app

import (
	"context"

	"passport-login/internal/config"
	"passport-login/internal/db"
	"passport-login/internal/logger"
	"passport-login/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.RunBootstrapMigration(ctx, database); err != nil {
		return nil, err
	}

	log.Info("database ready")

	infra := &Infra{DB: database}

	// sessions fall back to the in-memory store when redis is not
	// configured
	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		infra.Redis = redisClient
		log.Info("redis ready")
	}

	return infra, nil
}
