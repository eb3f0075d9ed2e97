package duel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
	"github.com/yalcindeniztr/tarihseli/internal/progression"
)

// UserStore - профили игроков для расчёта ставки
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SaveProgress(ctx context.Context, u *domain.User) error
}

// HistoryStore - архив завершённых дуэлей
type HistoryStore interface {
	RecordFinished(ctx context.Context, s *domain.DuelSession) error
}

// Coordinator ведёт сессию дуэли: арбитраж очереди ходов, журнал ходов,
// сверка счёта и расчёт ставки при завершении.
type Coordinator struct {
	gateway Gateway
	ledger  *progression.Ledger
	users   UserStore
	history HistoryStore
}

func NewCoordinator(gateway Gateway, ledger *progression.Ledger, users UserStore, history HistoryStore) *Coordinator {
	return &Coordinator{gateway: gateway, ledger: ledger, users: users, history: history}
}

// CreateSession создаёт ACTIVE сессию по принятому приглашению.
// Первый ход всегда у вызвавшего (challenger): без жеребьёвки.
func (c *Coordinator) CreateSession(ctx context.Context, inv *domain.Invite, recipient *domain.User, categoryID string, wager int64) (*domain.DuelSession, error) {
	now := time.Now().UnixMilli()
	session := &domain.DuelSession{
		ID:                uuid.NewString(),
		Player1:           domain.DuelPlayer{ID: inv.FromID, Name: inv.FromName},
		Player2:           domain.DuelPlayer{ID: recipient.ID, Name: recipient.Username},
		CurrentTurnUserID: inv.FromID,
		Category:          categoryID,
		WagerAmount:       wager,
		Status:            domain.DuelActive,
		Moves:             []domain.DuelMove{},
		Version:           0,
		CreatedAt:         now,
		LastMoveAt:        now,
	}

	if err := c.gateway.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("duel session created",
		"session_id", session.ID,
		"challenger", inv.FromID,
		"recipient", recipient.ID,
		"wager", wager,
	)
	return session, nil
}

// SubmitMove применяет ход действующего игрока одной атомарной условной
// записью: append хода + счёт + передача хода. Локальная проверка очереди
// выполняется до записи; удалённый CAS по version/turn ловит гонки, которые
// клиентская дисциплина поймать не может.
func (c *Coordinator) SubmitMove(ctx context.Context, session *domain.DuelSession, actingUserID int64, nodeID string, points int64) (*domain.DuelSession, error) {
	if session.Status != domain.DuelActive {
		return nil, ErrSessionFinished
	}
	if actingUserID != session.CurrentTurnUserID {
		OffTurnTotal.Inc()
		return nil, ErrOffTurn
	}
	if session.PlayerByID(actingUserID) == nil {
		return nil, ErrOffTurn
	}

	move := domain.DuelMove{
		UserID:    actingUserID,
		NodeID:    nodeID,
		Timestamp: time.Now().UnixMilli(),
	}

	updated, err := c.gateway.ApplyMove(ctx, session.ID, session.Version, move, points)
	if err != nil {
		if errors.Is(err, ErrOffTurn) {
			OffTurnTotal.Inc()
		}
		return nil, err
	}

	MovesTotal.Inc()
	return updated, nil
}

// CheckCompletion завершает сессию, когда журнал ходов покрыл все узлы
// категории. Идемпотентность: переход ACTIVE -> FINISHED атомарен в
// хранилище, ставку рассчитывает только тот вызов, который его выполнил -
// дублированные уведомления не платят второй раз.
func (c *Coordinator) CheckCompletion(ctx context.Context, session *domain.DuelSession, totalNodesInCategory int) (bool, error) {
	if session.Status != domain.DuelActive {
		return false, nil
	}
	if totalNodesInCategory <= 0 || len(session.Moves) < totalNodesInCategory {
		return false, nil
	}

	var winnerID int64
	switch {
	case session.Player1.Score > session.Player2.Score:
		winnerID = session.Player1.ID
	case session.Player2.Score > session.Player1.Score:
		winnerID = session.Player2.ID
	}

	won, err := c.gateway.FinishSession(ctx, session.ID, winnerID)
	if err != nil {
		return false, err
	}
	if !won {
		// кто-то уже завершил; счёт расплачен там
		session.Status = domain.DuelFinished
		session.WinnerID = winnerID
		return false, nil
	}

	session.Status = domain.DuelFinished
	session.WinnerID = winnerID

	if winnerID != 0 {
		if err := c.settleWager(ctx, session, winnerID); err != nil {
			return true, err
		}
	}

	SettlementsTotal.Inc()
	logger.Info("duel settled",
		"session_id", session.ID,
		"winner", winnerID,
		"p1_score", session.Player1.Score,
		"p2_score", session.Player2.Score,
	)

	if c.history != nil {
		s := *session
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.history.RecordFinished(ctx, &s); err != nil {
				logger.Warn("duel history archive failed", "session_id", s.ID, "error", err)
			}
		}()
	}

	return true, nil
}

func (c *Coordinator) settleWager(ctx context.Context, session *domain.DuelSession, winnerID int64) error {
	loserID := session.OpponentOf(winnerID)

	winner, err := c.users.GetByID(ctx, winnerID)
	if err != nil {
		return err
	}
	loser, err := c.users.GetByID(ctx, loserID)
	if err != nil {
		return err
	}

	c.ledger.SettleWager(winner, loser, session.WagerAmount)

	if err := c.users.SaveProgress(ctx, winner); err != nil {
		return err
	}
	return c.users.SaveProgress(ctx, loser)
}

// ApplyRemote - редьюсер сверки: накладывает удалённый снимок сессии на
// локальное состояние игрока. Сопоставление команд только по стабильному
// id игрока. Устаревшие и дублированные уведомления отбрасываются по
// монотонному version.
func ApplyRemote(state *domain.GameState, remote *domain.DuelSession) bool {
	if state.ActiveDuelID == "" || state.ActiveDuelID != remote.ID {
		return false
	}
	if remote.Version <= state.DuelVersion && remote.Status == domain.DuelActive {
		return false
	}

	for _, p := range []domain.DuelPlayer{remote.Player1, remote.Player2} {
		if team := state.TeamByUserID(p.ID); team != nil {
			if p.Score > team.Score {
				team.Score = p.Score
			}
		}
	}
	state.DuelVersion = remote.Version

	if remote.Status == domain.DuelFinished {
		state.LeaveDuel()
	}
	return true
}
