package duel_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/progression"
	"github.com/yalcindeniztr/tarihseli/internal/remote"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[int64]*domain.User
	saves int
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SaveProgress(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	s.saves++
	return nil
}

func (s *fakeUserStore) user(id int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.users[id]
	return &cp
}

type fakeHistory struct {
	mu      sync.Mutex
	records int
}

func (h *fakeHistory) RecordFinished(_ context.Context, _ *domain.DuelSession) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records++
	return nil
}

func newTestCoordinator(users *fakeUserStore) (*duel.Coordinator, *remote.MemoryGateway) {
	gw := remote.NewMemoryGateway()
	ledger := progression.NewLedger(nil)
	return duel.NewCoordinator(gw, ledger, users, nil), gw
}

func startSession(t *testing.T, c *duel.Coordinator, wager int64) *domain.DuelSession {
	t.Helper()
	inv := &domain.Invite{
		ID:       "inv-1",
		FromID:   1,
		FromName: "Tarkan",
		ToID:     2,
		Status:   domain.InviteAccepted,
	}
	recipient := &domain.User{ID: 2, Username: "Aybüke", Level: 1}
	session, err := c.CreateSession(context.Background(), inv, recipient, "cat-ottoman", wager)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func TestCreateSessionChallengerMovesFirst(t *testing.T) {
	users := newFakeUserStore()
	c, _ := newTestCoordinator(users)

	session := startSession(t, c, 100)

	if session.Status != domain.DuelActive {
		t.Fatalf("status = %s; want ACTIVE", session.Status)
	}
	if session.CurrentTurnUserID != 1 {
		t.Fatalf("first turn = %d; want challenger (1)", session.CurrentTurnUserID)
	}
	if len(session.Moves) != 0 {
		t.Fatalf("new session has %d moves", len(session.Moves))
	}
	if session.Player1.ID != 1 || session.Player2.ID != 2 {
		t.Fatalf("players = %d/%d; want 1/2", session.Player1.ID, session.Player2.ID)
	}
}

func TestSubmitMoveAlternatesTurns(t *testing.T) {
	users := newFakeUserStore()
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	ctx := context.Background()

	// после N принятых ходов очередь у player1 при чётном N, player2 при нечётном
	moves := []struct {
		actor    int64
		wantNext int64
	}{
		{1, 2},
		{2, 1},
		{1, 2},
	}

	for i, m := range moves {
		updated, err := c.SubmitMove(ctx, session, m.actor, fmt.Sprintf("n%d", i), 150)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if updated.CurrentTurnUserID != m.wantNext {
			t.Fatalf("after move %d: turn = %d; want %d", i+1, updated.CurrentTurnUserID, m.wantNext)
		}
		if len(updated.Moves) != i+1 {
			t.Fatalf("after move %d: moves = %d", i+1, len(updated.Moves))
		}
		if updated.Version != int64(i+1) {
			t.Fatalf("after move %d: version = %d", i+1, updated.Version)
		}
		session = updated
	}
}

func TestSubmitMoveOffTurn(t *testing.T) {
	users := newFakeUserStore()
	c, gw := newTestCoordinator(users)
	session := startSession(t, c, 100)

	// ход player2 при очереди player1
	_, err := c.SubmitMove(context.Background(), session, 2, "n0", 150)
	if !errors.Is(err, duel.ErrOffTurn) {
		t.Fatalf("err = %v; want ErrOffTurn", err)
	}

	// без мутаций
	stored, err := gw.GetSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(stored.Moves) != 0 || stored.Player1.Score != 0 || stored.Player2.Score != 0 {
		t.Fatalf("off-turn move mutated session: %+v", stored)
	}
}

func TestSubmitMoveStaleVersion(t *testing.T) {
	users := newFakeUserStore()
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	ctx := context.Background()
	updated, err := c.SubmitMove(ctx, session, 1, "n0", 150)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	// повтор со старым снимком: CAS по версии отклоняет
	_, err = c.SubmitMove(ctx, session, 1, "n0", 150)
	if !errors.Is(err, duel.ErrVersionConflict) {
		t.Fatalf("err = %v; want ErrVersionConflict", err)
	}

	if updated.Player1.Score != 150 {
		t.Fatalf("score = %d; want 150", updated.Player1.Score)
	}
}

func TestScoresMonotonic(t *testing.T) {
	users := newFakeUserStore()
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	ctx := context.Background()
	var prev1, prev2 int64
	actors := []int64{1, 2, 1, 2}
	for i, actor := range actors {
		updated, err := c.SubmitMove(ctx, session, actor, "n", 150)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if updated.Player1.Score < prev1 || updated.Player2.Score < prev2 {
			t.Fatalf("score decreased: %d/%d after %d/%d",
				updated.Player1.Score, updated.Player2.Score, prev1, prev2)
		}
		prev1, prev2 = updated.Player1.Score, updated.Player2.Score
		session = updated
	}
}

// Scenario: wager 100, category of 3 nodes, A outscores B.
func TestCheckCompletionSettlesOnce(t *testing.T) {
	userA := &domain.User{ID: 1, Username: "A", Level: 2, XP: 300}
	userB := &domain.User{ID: 2, Username: "B", Level: 2, XP: 50}
	users := newFakeUserStore(userA, userB)

	gw := remote.NewMemoryGateway()
	history := &fakeHistory{}
	c := duel.NewCoordinator(gw, progression.NewLedger(nil), users, history)
	session := startSession(t, c, 100)

	ctx := context.Background()
	var err error
	session, err = c.SubmitMove(ctx, session, 1, "n0", 150)
	if err != nil {
		t.Fatal(err)
	}
	session, err = c.SubmitMove(ctx, session, 2, "n0", 300)
	if err != nil {
		t.Fatal(err)
	}
	session, err = c.SubmitMove(ctx, session, 1, "n1", 300)
	if err != nil {
		t.Fatal(err)
	}

	// 3 хода >= 3 узлов: A 450 > B 300
	settled, err := c.CheckCompletion(ctx, session, 3)
	if err != nil {
		t.Fatalf("CheckCompletion: %v", err)
	}
	if !settled {
		t.Fatal("expected settlement")
	}
	if session.Status != domain.DuelFinished {
		t.Fatalf("status = %s; want FINISHED", session.Status)
	}

	if got := users.user(1).XP; got != 400 {
		t.Fatalf("winner xp = %d; want 400", got)
	}
	// проигравший клампится на нуле
	if got := users.user(2).XP; got != 0 {
		t.Fatalf("loser xp = %d; want 0", got)
	}

	// повторные вызовы (дубликаты уведомлений) ничего не платят
	for i := 0; i < 3; i++ {
		settled, err := c.CheckCompletion(ctx, session, 3)
		if err != nil {
			t.Fatalf("repeat CheckCompletion: %v", err)
		}
		if settled {
			t.Fatal("settled twice")
		}
	}
	if got := users.user(1).XP; got != 400 {
		t.Fatalf("winner xp after repeats = %d; want 400", got)
	}
	if got := users.user(2).XP; got != 0 {
		t.Fatalf("loser xp after repeats = %d; want 0", got)
	}
}

func TestCheckCompletionConcurrentCallersSettleOnce(t *testing.T) {
	userA := &domain.User{ID: 1, Level: 1, XP: 0}
	userB := &domain.User{ID: 2, Level: 1, XP: 500}
	users := newFakeUserStore(userA, userB)

	gw := remote.NewMemoryGateway()
	c1 := duel.NewCoordinator(gw, progression.NewLedger(nil), users, nil)
	c2 := duel.NewCoordinator(gw, progression.NewLedger(nil), users, nil)

	session := startSession(t, c1, 200)

	ctx := context.Background()
	var err error
	session, err = c1.SubmitMove(ctx, session, 1, "n0", 150)
	if err != nil {
		t.Fatal(err)
	}
	session, err = c1.SubmitMove(ctx, session, 2, "n0", 450)
	if err != nil {
		t.Fatal(err)
	}

	// оба клиента видят завершающий снимок и проверяют одновременно
	snapshot1, _ := gw.GetSession(ctx, session.ID)
	snapshot2, _ := gw.GetSession(ctx, session.ID)

	var wg sync.WaitGroup
	settledCount := 0
	var mu sync.Mutex
	wg.Add(2)
	go func() {
		defer wg.Done()
		if ok, _ := c1.CheckCompletion(ctx, snapshot1, 2); ok {
			mu.Lock()
			settledCount++
			mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		if ok, _ := c2.CheckCompletion(ctx, snapshot2, 2); ok {
			mu.Lock()
			settledCount++
			mu.Unlock()
		}
	}()
	wg.Wait()

	if settledCount != 1 {
		t.Fatalf("settlements = %d; want exactly 1", settledCount)
	}
	// единственная выплата: B выиграл 200
	if got := users.user(2).XP; got != 700 {
		t.Fatalf("winner xp = %d; want 700", got)
	}
	if got := users.user(1).XP; got != 0 {
		t.Fatalf("loser xp = %d; want 0", got)
	}
}

func TestCheckCompletionDrawNoPayout(t *testing.T) {
	userA := &domain.User{ID: 1, Level: 1, XP: 100}
	userB := &domain.User{ID: 2, Level: 1, XP: 100}
	users := newFakeUserStore(userA, userB)
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	ctx := context.Background()
	var err error
	session, err = c.SubmitMove(ctx, session, 1, "n0", 150)
	if err != nil {
		t.Fatal(err)
	}
	session, err = c.SubmitMove(ctx, session, 2, "n0", 150)
	if err != nil {
		t.Fatal(err)
	}

	settled, err := c.CheckCompletion(ctx, session, 2)
	if err != nil {
		t.Fatalf("CheckCompletion: %v", err)
	}
	if !settled {
		t.Fatal("expected session to finish")
	}
	if users.user(1).XP != 100 || users.user(2).XP != 100 {
		t.Fatal("draw changed xp")
	}
}

func TestCheckCompletionNotEnoughMoves(t *testing.T) {
	users := newFakeUserStore()
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	settled, err := c.CheckCompletion(context.Background(), session, 3)
	if err != nil {
		t.Fatalf("CheckCompletion: %v", err)
	}
	if settled || session.Status != domain.DuelActive {
		t.Fatal("session finished early")
	}
}

func TestSubmitMoveAfterFinish(t *testing.T) {
	userA := &domain.User{ID: 1, Level: 1}
	userB := &domain.User{ID: 2, Level: 1}
	users := newFakeUserStore(userA, userB)
	c, _ := newTestCoordinator(users)
	session := startSession(t, c, 100)

	ctx := context.Background()
	session, err := c.SubmitMove(ctx, session, 1, "n0", 150)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CheckCompletion(ctx, session, 1); err != nil {
		t.Fatal(err)
	}

	_, err = c.SubmitMove(ctx, session, 2, "n1", 150)
	if !errors.Is(err, duel.ErrSessionFinished) {
		t.Fatalf("err = %v; want ErrSessionFinished", err)
	}
}

func TestSubscribeDeliversMoves(t *testing.T) {
	users := newFakeUserStore()
	c, gw := newTestCoordinator(users)
	session := startSession(t, c, 100)

	updates := make(chan *domain.DuelSession, 4)
	unsubscribe, err := gw.Subscribe(context.Background(), session.ID, func(s *domain.DuelSession) {
		updates <- s
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsubscribe()

	if _, err := c.SubmitMove(context.Background(), session, 1, "n0", 150); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-updates:
		if got.Version != 1 || len(got.Moves) != 1 {
			t.Fatalf("notification version=%d moves=%d", got.Version, len(got.Moves))
		}
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
}
