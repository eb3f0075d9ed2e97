package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStateNotFound = errors.New("game state not found")

// GameStateRepository хранит снапшот локального состояния игрока одной
// JSONB-строкой на пользователя. Перезаписывается целиком: состояние
// маленькое, а частичные апдейты только плодят расхождения.
type GameStateRepository struct {
	db *pgxpool.Pool
}

func NewGameStateRepository(db *pgxpool.Pool) *GameStateRepository {
	return &GameStateRepository{db: db}
}

func (r *GameStateRepository) Load(ctx context.Context, userID int64) (*domain.GameState, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM game_states WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}

	var state domain.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	state.UserID = userID
	return &state, nil
}

func (r *GameStateRepository) Save(ctx context.Context, state *domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO game_states (user_id, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = now()`,
		state.UserID, raw,
	)
	return err
}

func (r *GameStateRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM game_states WHERE user_id = $1`,
		userID,
	)
	return err
}
