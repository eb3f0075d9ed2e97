package repository

import (
	"context"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGuildNotFound = errors.New("guild not found")

type GuildRepository struct {
	db *pgxpool.Pool
}

func NewGuildRepository(db *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) GetByID(ctx context.Context, id int64) (*domain.Guild, error) {
	var g domain.Guild
	err := r.db.QueryRow(ctx,
		`SELECT id, name, leader_id, total_score, created_at
		 FROM guilds
		 WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.LeaderID, &g.TotalScore, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGuildNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GuildRepository) Create(ctx context.Context, g *domain.Guild) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO guilds (name, leader_id)
		 VALUES ($1, $2)
		 RETURNING id, total_score, created_at`,
		g.Name, g.LeaderID,
	).Scan(&g.ID, &g.TotalScore, &g.CreatedAt)
}

// AddScore зачисляет долю очков участника в копилку гильдии
func (r *GuildRepository) AddScore(ctx context.Context, guildID int64, delta int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE guilds SET total_score = total_score + $1 WHERE id = $2`,
		delta, guildID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrGuildNotFound
	}
	return nil
}

// GuildEntry represents a guild in the leaderboard
type GuildEntry struct {
	Rank       int    `json:"rank"`
	GuildID    int64  `json:"guild_id"`
	Name       string `json:"name"`
	TotalScore int64  `json:"total_score"`
	Members    int64  `json:"members"`
}

func (r *GuildRepository) Leaderboard(ctx context.Context, limit int) ([]GuildEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT g.id, g.name, g.total_score, COUNT(u.id) AS members
		 FROM guilds g
		 LEFT JOIN users u ON u.guild_id = g.id
		 GROUP BY g.id
		 ORDER BY g.total_score DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []GuildEntry
	rank := 1
	for rows.Next() {
		var e GuildEntry
		if err := rows.Scan(&e.GuildID, &e.Name, &e.TotalScore, &e.Members); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}
