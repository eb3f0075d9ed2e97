package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Level        int       `db:"level" json:"level"`
	XP           int64     `db:"xp" json:"xp"`
	UnlockedKeys []string  `db:"unlocked_keys" json:"unlocked_keys"`
	GuildID      *int64    `db:"guild_id" json:"guild_id,omitempty"`
	Achievements []string  `db:"achievements" json:"achievements,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActiveAt time.Time `db:"last_active_at" json:"last_active_at"`
}

// Guild - гильдия, копит долю очков участников
type Guild struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	LeaderID   *int64    `db:"leader_id" json:"leader_id,omitempty"`
	TotalScore int64     `db:"total_score" json:"total_score"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
