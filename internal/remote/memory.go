package remote

import (
	"context"
	"sync"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
)

// MemoryGateway - локальный in-memory вариант удалённого хранилища.
// Используется в тестах и как dev-fallback, когда Redis не настроен
// (сервер остаётся рабочим, но без межпроцессной синхронизации).
type MemoryGateway struct {
	mu          sync.Mutex
	sessions    map[string]*domain.DuelSession
	invites     map[string]*domain.Invite
	sessionSubs map[string][]func(*domain.DuelSession)
	inviteSubs  map[int64][]func(*domain.Invite)
}

var _ duel.Gateway = (*MemoryGateway)(nil)

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		sessions:    make(map[string]*domain.DuelSession),
		invites:     make(map[string]*domain.Invite),
		sessionSubs: make(map[string][]func(*domain.DuelSession)),
		inviteSubs:  make(map[int64][]func(*domain.Invite)),
	}
}

func cloneSession(s *domain.DuelSession) *domain.DuelSession {
	out := *s
	out.Moves = make([]domain.DuelMove, len(s.Moves))
	copy(out.Moves, s.Moves)
	return &out
}

func (g *MemoryGateway) CreateSession(_ context.Context, s *domain.DuelSession) error {
	g.mu.Lock()
	g.sessions[s.ID] = cloneSession(s)
	subs := g.subscribersLocked(s.ID)
	snapshot := cloneSession(s)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(cloneSession(snapshot))
	}
	return nil
}

func (g *MemoryGateway) GetSession(_ context.Context, sessionID string) (*domain.DuelSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, duel.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (g *MemoryGateway) Subscribe(_ context.Context, sessionID string, onChange func(*domain.DuelSession)) (func(), error) {
	g.mu.Lock()
	g.sessionSubs[sessionID] = append(g.sessionSubs[sessionID], onChange)
	idx := len(g.sessionSubs[sessionID]) - 1
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		subs := g.sessionSubs[sessionID]
		if idx < len(subs) {
			subs[idx] = nil
		}
	}, nil
}

func (g *MemoryGateway) subscribersLocked(sessionID string) []func(*domain.DuelSession) {
	var out []func(*domain.DuelSession)
	for _, fn := range g.sessionSubs[sessionID] {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (g *MemoryGateway) ApplyMove(_ context.Context, sessionID string, expectedVersion int64, move domain.DuelMove, points int64) (*domain.DuelSession, error) {
	g.mu.Lock()
	s, ok := g.sessions[sessionID]
	if !ok {
		g.mu.Unlock()
		return nil, duel.ErrSessionNotFound
	}
	if s.Status != domain.DuelActive {
		g.mu.Unlock()
		return nil, duel.ErrSessionFinished
	}
	if s.Version != expectedVersion {
		g.mu.Unlock()
		return nil, duel.ErrVersionConflict
	}
	if s.CurrentTurnUserID != move.UserID {
		g.mu.Unlock()
		return nil, duel.ErrOffTurn
	}

	s.Moves = append(s.Moves, move)
	if p := s.PlayerByID(move.UserID); p != nil {
		p.Score += points
	}
	s.CurrentTurnUserID = s.OpponentOf(move.UserID)
	s.LastMoveAt = move.Timestamp
	s.Version++

	snapshot := cloneSession(s)
	subs := g.subscribersLocked(sessionID)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(cloneSession(snapshot))
	}
	return snapshot, nil
}

func (g *MemoryGateway) FinishSession(_ context.Context, sessionID string, winnerID int64) (bool, error) {
	g.mu.Lock()
	s, ok := g.sessions[sessionID]
	if !ok {
		g.mu.Unlock()
		return false, duel.ErrSessionNotFound
	}
	if s.Status != domain.DuelActive {
		g.mu.Unlock()
		return false, nil
	}

	s.Status = domain.DuelFinished
	s.WinnerID = winnerID
	s.Version++

	snapshot := cloneSession(s)
	subs := g.subscribersLocked(sessionID)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(cloneSession(snapshot))
	}
	return true, nil
}

func (g *MemoryGateway) CreateInvite(_ context.Context, inv *domain.Invite) error {
	g.mu.Lock()
	cp := *inv
	g.invites[inv.ID] = &cp
	var subs []func(*domain.Invite)
	for _, fn := range g.inviteSubs[inv.ToID] {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	g.mu.Unlock()

	for _, fn := range subs {
		cp := *inv
		fn(&cp)
	}
	return nil
}

func (g *MemoryGateway) GetInvite(_ context.Context, inviteID string) (*domain.Invite, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invites[inviteID]
	if !ok {
		return nil, duel.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (g *MemoryGateway) PendingInvites(_ context.Context, userID int64) ([]*domain.Invite, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*domain.Invite
	for _, inv := range g.invites {
		if inv.ToID == userID && inv.Status == domain.InvitePending {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (g *MemoryGateway) ResolveInvite(_ context.Context, inviteID string, status domain.InviteStatus) (*domain.Invite, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invites[inviteID]
	if !ok {
		return nil, duel.ErrInviteNotFound
	}
	if inv.Status != domain.InvitePending {
		return nil, duel.ErrInviteAlreadyResolved
	}
	inv.Status = status
	cp := *inv
	return &cp, nil
}

func (g *MemoryGateway) SubscribeInvites(_ context.Context, userID int64, onIncoming func(*domain.Invite)) (func(), error) {
	g.mu.Lock()
	g.inviteSubs[userID] = append(g.inviteSubs[userID], onIncoming)
	idx := len(g.inviteSubs[userID]) - 1
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		subs := g.inviteSubs[userID]
		if idx < len(subs) {
			subs[idx] = nil
		}
	}, nil
}
