package repository

import (
	"context"

	"github.com/yalcindeniztr/tarihseli/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DuelHistoryRepository struct {
	db *pgxpool.Pool
}

func NewDuelHistoryRepository(db *pgxpool.Pool) *DuelHistoryRepository {
	return &DuelHistoryRepository{db: db}
}

// RecordFinished архивирует завершённую сессию: по строке на каждого
// игрока, чтобы история читалась одним индексом по user_id.
func (r *DuelHistoryRepository) RecordFinished(ctx context.Context, s *domain.DuelSession) error {
	draw := s.WinnerID == 0

	batch := []struct {
		player   domain.DuelPlayer
		opponent domain.DuelPlayer
	}{
		{s.Player1, s.Player2},
		{s.Player2, s.Player1},
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, b := range batch {
		moveCount := 0
		for _, m := range s.Moves {
			if m.UserID == b.player.ID {
				moveCount++
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO duel_history
				(user_id, session_id, opponent_id, category, wager, score, won, draw, move_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (user_id, session_id) DO NOTHING`,
			b.player.ID,
			s.ID,
			b.opponent.ID,
			s.Category,
			s.WagerAmount,
			b.player.Score,
			!draw && s.WinnerID == b.player.ID,
			draw,
			moveCount,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByUser возвращает историю дуэлей пользователя
func (r *DuelHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.DuelHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, session_id, opponent_id, category, wager, score, won, draw, move_count, created_at
		 FROM duel_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.DuelHistory
	for rows.Next() {
		var h domain.DuelHistory
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.SessionID, &h.OpponentID, &h.Category,
			&h.Wager, &h.Score, &h.Won, &h.Draw, &h.MoveCount, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, &h)
	}
	return res, rows.Err()
}
