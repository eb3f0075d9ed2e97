package workers

import (
	"context"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

const (
	resolvedInviteTTL = 24 * time.Hour
	staleStateAge     = 90 * 24 * time.Hour
)

// StartMaintenance запускает фоновые уборки: решённые приглашения в
// Redis и давно брошенные снапшоты в Postgres. Сессии дуэлей не трогаем,
// их история и так заархивирована в duel_history.
func StartMaintenance(db *pgxpool.Pool, rdb *redis.Client) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() { pruneResolvedInvites(rdb) }),
	); err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() { pruneStaleStates(db) }),
	); err != nil {
		return nil, err
	}

	sched.Start()
	logger.Info("maintenance scheduler started")
	return sched, nil
}

// Решённые приглашения никому больше не нужны; даём суткам на то,
// чтобы клиенты успели показать исход, и ставим TTL.
func pruneResolvedInvites(rdb *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var cursor uint64
	pruned := 0
	for {
		keys, next, err := rdb.Scan(ctx, cursor, "invite:*", 200).Result()
		if err != nil {
			logger.Warn("invite prune: scan failed", "error", err)
			return
		}

		for _, key := range keys {
			status, err := rdb.HGet(ctx, key, "status").Result()
			if err != nil {
				continue
			}
			if status == "PENDING" {
				continue
			}
			ttl, err := rdb.TTL(ctx, key).Result()
			if err != nil || ttl > 0 {
				continue
			}
			if err := rdb.Expire(ctx, key, resolvedInviteTTL).Err(); err == nil {
				pruned++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if pruned > 0 {
		logger.Info("invite prune: ttl set", "count", pruned)
	}
}

func pruneStaleStates(db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tag, err := db.Exec(ctx,
		`DELETE FROM game_states WHERE updated_at < now() - make_interval(secs => $1)`,
		staleStateAge.Seconds(),
	)
	if err != nil {
		logger.Warn("state prune failed", "error", err)
		return
	}
	if tag.RowsAffected() > 0 {
		logger.Info("state prune: removed stale snapshots", "count", tag.RowsAffected())
	}
}
