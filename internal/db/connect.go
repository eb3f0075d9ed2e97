package db

import (
	"context"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

func Connect(dsn string) *pgxpool.Pool {
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}

// ConnectRedis поднимает клиент к общему хранилищу дуэлей.
// В отличие от лимитера здесь недоступный Redis фатален: без него
// нет синхронизации сессий.
func ConnectRedis(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping redis", "addr", addr, "error", err)
	}

	logger.Info("redis connected", "addr", addr)
	return client
}
