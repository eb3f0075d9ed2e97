package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
)

var (
	ErrWagerTooLow      = errors.New("wager below minimum")
	ErrWagerTooHigh     = errors.New("wager exceeds maximum")
	ErrInvalidWager     = errors.New("invalid wager amount")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrOpponentNotFound = errors.New("opponent not found")
	ErrNotYourInvite    = errors.New("invite addressed to another user")
)

// Типы серверных push-сообщений. Живут рядом с Pusher: отправитель
// здесь, ws-слой только доставляет конверт.
const (
	MsgDuelInvite   = "duel_invite"
	MsgDuelStarted  = "duel_started"
	MsgDuelUpdate   = "duel_update"
	MsgDuelFinished = "duel_finished"
)

// Pusher доставляет серверные уведомления подключённому клиенту.
// Реализуется ws-хабом; nil означает "без пушей" (тесты, smoke-утилиты).
type Pusher interface {
	SendToUser(userID int64, msgType string, payload any)
}

// WagerLimits holds duel wager limits configuration
type WagerLimits struct {
	MinWager int64
	MaxWager int64
}

// DuelService - оркестрация дуэлей поверх общего хранилища: приглашения,
// создание сессий, трансляция чужих ходов в локальные снапшоты игроков.
type DuelService struct {
	gateway     duel.Gateway
	coordinator *duel.Coordinator
	invites     *duel.Invites
	users       *repository.UserRepository
	states      *repository.GameStateRepository
	content     *repository.ContentRepository
	history     *repository.DuelHistoryRepository
	pusher      Pusher
	limits      WagerLimits

	mu          sync.Mutex
	sessionSubs map[string]func()
	inviteSubs  map[int64]func()
}

func NewDuelService(
	gateway duel.Gateway,
	coordinator *duel.Coordinator,
	invites *duel.Invites,
	users *repository.UserRepository,
	states *repository.GameStateRepository,
	content *repository.ContentRepository,
	history *repository.DuelHistoryRepository,
	pusher Pusher,
	limits WagerLimits,
) *DuelService {
	return &DuelService{
		gateway:     gateway,
		coordinator: coordinator,
		invites:     invites,
		users:       users,
		states:      states,
		content:     content,
		history:     history,
		pusher:      pusher,
		limits:      limits,
		sessionSubs: make(map[string]func()),
		inviteSubs:  make(map[int64]func()),
	}
}

// ValidateWager checks if wager is within allowed limits
func (s *DuelService) ValidateWager(wager int64) error {
	if wager <= 0 {
		return ErrInvalidWager
	}
	if wager < s.limits.MinWager {
		return ErrWagerTooLow
	}
	if wager > s.limits.MaxWager {
		return ErrWagerTooHigh
	}
	return nil
}

// Invite бросает вызов другому игроку по имени
func (s *DuelService) Invite(ctx context.Context, fromID int64, toUsername string) (*domain.Invite, error) {
	from, err := s.users.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}

	to, err := s.users.GetByUsername(ctx, toUsername)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrOpponentNotFound
		}
		return nil, err
	}
	if to.ID == fromID {
		return nil, ErrSelfInvite
	}

	return s.invites.Create(ctx, from, to.ID)
}

// Pending возвращает входящие нерешённые приглашения
func (s *DuelService) Pending(ctx context.Context, userID int64) ([]*domain.Invite, error) {
	return s.gateway.PendingInvites(ctx, userID)
}

// Accept принимает приглашение: создаёт сессию, строит дуэльные снапшоты
// обоим игрокам и подписывается на изменения сессии.
func (s *DuelService) Accept(ctx context.Context, userID int64, inviteID, categoryID string, wager int64) (*domain.DuelSession, error) {
	if err := s.ValidateWager(wager); err != nil {
		return nil, err
	}

	inv, err := s.gateway.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.ToID != userID {
		return nil, ErrNotYourInvite
	}

	recipient, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// категория проверяется до перевода приглашения в терминальный
	// статус: ACCEPTED без сессии - тупик для обоих игроков
	if _, err := s.content.Graph(ctx, categoryID, ""); err != nil {
		return nil, err
	}

	session, err := s.invites.Accept(ctx, inviteID, recipient, categoryID, wager)
	if err != nil {
		return nil, err
	}

	if err := s.setupDuelStates(ctx, session); err != nil {
		return nil, err
	}

	s.WatchSession(session)

	s.push(session.Player1.ID, MsgDuelStarted, session)
	s.push(session.Player2.ID, MsgDuelStarted, session)
	return session, nil
}

// Reject отклоняет приглашение
func (s *DuelService) Reject(ctx context.Context, userID int64, inviteID string) error {
	inv, err := s.gateway.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.ToID != userID {
		return ErrNotYourInvite
	}
	return s.invites.Reject(ctx, inviteID)
}

// Session возвращает свежий снимок сессии из общего хранилища
func (s *DuelService) Session(ctx context.Context, sessionID string) (*domain.DuelSession, error) {
	return s.gateway.GetSession(ctx, sessionID)
}

// History возвращает архив завершённых дуэлей игрока
func (s *DuelService) History(ctx context.Context, userID int64, limit int) ([]*domain.DuelHistory, error) {
	return s.history.GetByUser(ctx, userID, limit)
}

// EnsureTurn проверяет до любых локальных мутаций, что сессия активна и
// ход за игроком. Попытка хода вне очереди не должна оставить следа ни в
// профиле, ни в снапшоте.
func (s *DuelService) EnsureTurn(ctx context.Context, state *domain.GameState, userID int64) error {
	session, err := s.gateway.GetSession(ctx, state.ActiveDuelID)
	if err != nil {
		return err
	}
	if session.Status != domain.DuelActive {
		return duel.ErrSessionFinished
	}
	if session.CurrentTurnUserID != userID {
		return duel.ErrOffTurn
	}
	return nil
}

// SubmitMove записывает засчитанный узел ходом в общую сессию и сразу
// проверяет завершение. Локальный снапшот обновляется тут же, не дожидаясь
// собственного уведомления.
func (s *DuelService) SubmitMove(ctx context.Context, state *domain.GameState, userID int64, nodeID string, points int64) error {
	session, err := s.gateway.GetSession(ctx, state.ActiveDuelID)
	if err != nil {
		return err
	}

	updated, err := s.coordinator.SubmitMove(ctx, session, userID, nodeID, points)
	if err != nil {
		return err
	}
	duel.ApplyRemote(state, updated)

	total, err := s.content.NodeCount(ctx, updated.Category)
	if err != nil {
		return err
	}
	if _, err := s.coordinator.CheckCompletion(ctx, updated, total); err != nil {
		return err
	}
	if updated.Status == domain.DuelFinished {
		duel.ApplyRemote(state, updated)
	}
	return nil
}

// setupDuelStates перезаписывает снапшоты обоих игроков под дуэль: общий
// граф категории и две команды в фиксированном порядке player1, player2.
func (s *DuelService) setupDuelStates(ctx context.Context, session *domain.DuelSession) error {
	for _, p := range []domain.DuelPlayer{session.Player1, session.Player2} {
		graph, err := s.content.Graph(ctx, session.Category, "")
		if err != nil {
			return err
		}

		state := &domain.GameState{
			UserID:           p.ID,
			Mode:             domain.ModeDuel,
			Graphs:           []*domain.QuestGraph{graph},
			ActiveCategoryID: session.Category,
			Teams: []*domain.TeamProgress{
				{UserID: session.Player1.ID, Name: session.Player1.Name},
				{UserID: session.Player2.ID, Name: session.Player2.Name},
			},
			ActiveDuelID:  session.ID,
			ActiveWager:   session.WagerAmount,
			SetupComplete: true,
			GameStarted:   true,
		}
		if p.ID == session.Player2.ID {
			state.ActiveTeamIndex = 1
		}

		if err := s.states.Save(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// WatchSession подписывается на уведомления сессии и раздаёт каждое
// изменение обоим игрокам: сверка снапшота + пуш в сокет.
func (s *DuelService) WatchSession(session *domain.DuelSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessionSubs[session.ID]; ok {
		return
	}

	unsubscribe, err := s.gateway.Subscribe(context.Background(), session.ID, s.onSessionChange)
	if err != nil {
		logger.Error("duel subscribe failed", "session_id", session.ID, "error", err)
		return
	}
	s.sessionSubs[session.ID] = unsubscribe
}

func (s *DuelService) onSessionChange(remote *domain.DuelSession) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, p := range []domain.DuelPlayer{remote.Player1, remote.Player2} {
		state, err := s.states.Load(ctx, p.ID)
		if err != nil {
			logger.Warn("duel sync: state load failed", "user_id", p.ID, "error", err)
			continue
		}

		if !duel.ApplyRemote(state, remote) {
			continue
		}
		if err := s.states.Save(ctx, state); err != nil {
			logger.Warn("duel sync: state save failed", "user_id", p.ID, "error", err)
			continue
		}

		if remote.Status == domain.DuelFinished {
			s.push(p.ID, MsgDuelFinished, remote)
		} else {
			s.push(p.ID, MsgDuelUpdate, remote)
		}
	}

	if remote.Status == domain.DuelFinished {
		s.dropSessionWatch(remote.ID)
		return
	}

	// другой инстанс мог уйти; финал обязан случиться и у нас
	total, err := s.content.NodeCount(ctx, remote.Category)
	if err != nil {
		logger.Warn("duel sync: node count failed", "category", remote.Category, "error", err)
		return
	}
	if _, err := s.coordinator.CheckCompletion(ctx, remote, total); err != nil {
		logger.Warn("duel sync: completion check failed", "session_id", remote.ID, "error", err)
	}
}

func (s *DuelService) dropSessionWatch(sessionID string) {
	s.mu.Lock()
	unsubscribe := s.sessionSubs[sessionID]
	delete(s.sessionSubs, sessionID)
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// WatchInvites включает доставку входящих приглашений подключившемуся
// игроку. Вызывается при открытии сокета.
func (s *DuelService) WatchInvites(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inviteSubs[userID]; ok {
		return
	}

	unsubscribe, err := s.gateway.SubscribeInvites(context.Background(), userID, func(inv *domain.Invite) {
		s.push(userID, MsgDuelInvite, inv)
	})
	if err != nil {
		logger.Error("invite subscribe failed", "user_id", userID, "error", err)
		return
	}
	s.inviteSubs[userID] = unsubscribe
}

// UnwatchInvites вызывается при закрытии сокета
func (s *DuelService) UnwatchInvites(userID int64) {
	s.mu.Lock()
	unsubscribe := s.inviteSubs[userID]
	delete(s.inviteSubs, userID)
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Close снимает все подписки
func (s *DuelService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, unsubscribe := range s.sessionSubs {
		unsubscribe()
		delete(s.sessionSubs, id)
	}
	for id, unsubscribe := range s.inviteSubs {
		unsubscribe()
		delete(s.inviteSubs, id)
	}
}

func (s *DuelService) push(userID int64, msgType string, payload any) {
	if s.pusher == nil {
		return
	}
	s.pusher.SendToUser(userID, msgType, payload)
}
