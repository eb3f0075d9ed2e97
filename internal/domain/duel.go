package domain

import "time"

// DuelStatus - состояние сессии дуэли. Переход ACTIVE -> FINISHED
// одноразовый и необратимый.
type DuelStatus string

const (
	DuelActive   DuelStatus = "ACTIVE"
	DuelFinished DuelStatus = "FINISHED"
)

// InviteStatus - состояние приглашения на дуэль
type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteRejected InviteStatus = "REJECTED"
)

// DuelPlayer - срез профиля игрока внутри сессии
type DuelPlayer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// DuelMove - одна запись в append-only журнале ходов
type DuelMove struct {
	UserID    int64  `json:"user_id"`
	NodeID    string `json:"node_id"`
	Timestamp int64  `json:"timestamp"` // unix ms
}

// DuelSession - общий документ дуэли в удалённом хранилище.
// Version монотонно растёт при каждой принятой записи; устаревшие
// уведомления отбрасываются по нему при сверке.
type DuelSession struct {
	ID                string     `json:"id"`
	Player1           DuelPlayer `json:"player1"`
	Player2           DuelPlayer `json:"player2"`
	CurrentTurnUserID int64      `json:"current_turn_user_id"`
	Category          string     `json:"category"`
	WagerAmount       int64      `json:"wager_amount"`
	Status            DuelStatus `json:"status"`
	WinnerID          int64      `json:"winner_id,omitempty"`
	Moves             []DuelMove `json:"moves"`
	Version           int64      `json:"version"`
	CreatedAt         int64      `json:"created_at"`   // unix ms
	LastMoveAt        int64      `json:"last_move_at"` // unix ms
}

// PlayerByID returns the player summary for a stable id, or nil.
func (s *DuelSession) PlayerByID(userID int64) *DuelPlayer {
	switch userID {
	case s.Player1.ID:
		return &s.Player1
	case s.Player2.ID:
		return &s.Player2
	}
	return nil
}

// OpponentOf returns the other player's id, or 0 if userID is not in the session.
func (s *DuelSession) OpponentOf(userID int64) int64 {
	switch userID {
	case s.Player1.ID:
		return s.Player2.ID
	case s.Player2.ID:
		return s.Player1.ID
	}
	return 0
}

// Invite - ожидающий вызов на дуэль. Терминальное состояние ровно одно:
// ACCEPTED или REJECTED.
type Invite struct {
	ID        string       `json:"id"`
	FromID    int64        `json:"from_id"`
	FromName  string       `json:"from_name"`
	ToID      int64        `json:"to_id"`
	Status    InviteStatus `json:"status"`
	Timestamp int64        `json:"timestamp"` // unix ms
}

// DuelHistory - архивная запись завершённой дуэли (по одной на игрока)
type DuelHistory struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	SessionID  string     `db:"session_id" json:"session_id"`
	OpponentID int64      `db:"opponent_id" json:"opponent_id"`
	Category   string     `db:"category" json:"category"`
	Wager      int64      `db:"wager" json:"wager"`
	Score      int64      `db:"score" json:"score"`
	Won        bool       `db:"won" json:"won"`
	Draw       bool       `db:"draw" json:"draw"`
	MoveCount  int        `db:"move_count" json:"move_count"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
