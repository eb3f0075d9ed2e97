package repository

import (
	"context"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, level, xp, COALESCE(unlocked_keys, '{}'), guild_id,
		        COALESCE(achievements, '{}'), created_at, last_active_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, level, xp, COALESCE(unlocked_keys, '{}'), guild_id,
		        COALESCE(achievements, '{}'), created_at, last_active_at
		 FROM users
		 WHERE username = $1`,
		username,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Level,
		&u.XP,
		&u.UnlockedKeys,
		&u.GuildID,
		&u.Achievements,
		&u.CreatedAt,
		&u.LastActiveAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	// Новый игрок стартует с первого уровня без опыта
	if u.Level == 0 {
		u.Level = 1
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO users (username, level, xp)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, last_active_at`,
		u.Username,
		u.Level,
		u.XP,
	).Scan(&u.ID, &u.CreatedAt, &u.LastActiveAt)
}

// SaveProgress пишет накопительные поля прогрессии. Уровень, опыт и
// ключи обновляются одним стейтментом, чтобы не разъезжались между собой.
func (r *UserRepository) SaveProgress(ctx context.Context, u *domain.User) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users
		 SET level = $1, xp = $2, unlocked_keys = $3, achievements = $4,
		     last_active_at = now()
		 WHERE id = $5`,
		u.Level, u.XP, u.UnlockedKeys, u.Achievements, u.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetGuild(ctx context.Context, userID int64, guildID *int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET guild_id = $1 WHERE id = $2`,
		guildID, userID,
	)
	return err
}

func (r *UserRepository) TouchLastActive(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_active_at = now() WHERE id = $1`,
		userID,
	)
	return err
}

// TopXPEntry represents a user in the XP leaderboard
type TopXPEntry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int64  `json:"xp"`
}

// GetTopByXP returns users ordered by (level, xp) desc
func (r *UserRepository) GetTopByXP(ctx context.Context, limit int) ([]TopXPEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, username, level, xp
		 FROM users
		 ORDER BY level DESC, xp DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TopXPEntry
	rank := 1
	for rows.Next() {
		var e TopXPEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Level, &e.XP); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}
