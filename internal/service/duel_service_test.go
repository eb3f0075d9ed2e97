package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/remote"
	"github.com/yalcindeniztr/tarihseli/internal/service"
)

func newTurnFixture(t *testing.T) (*service.DuelService, duel.Gateway, *domain.GameState) {
	t.Helper()
	gw := remote.NewMemoryGateway()

	now := time.Now().UnixMilli()
	session := &domain.DuelSession{
		ID:                "s-1",
		Player1:           domain.DuelPlayer{ID: 1, Name: "Tarkan"},
		Player2:           domain.DuelPlayer{ID: 2, Name: "Aybüke"},
		CurrentTurnUserID: 1,
		Category:          "cat-ottoman-conquest",
		WagerAmount:       100,
		Status:            domain.DuelActive,
		CreatedAt:         now,
		LastMoveAt:        now,
	}
	if err := gw.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	svc := service.NewDuelService(gw, nil, nil, nil, nil, nil, nil, nil,
		service.WagerLimits{MinWager: 100, MaxWager: 1000})
	state := &domain.GameState{
		UserID:       2,
		Mode:         domain.ModeDuel,
		ActiveDuelID: "s-1",
	}
	return svc, gw, state
}

// Проверка очереди обязана сработать до каких-либо мутаций: по ней
// строится отказ чужого хода в CompleteNode.
func TestEnsureTurnRejectsOffTurn(t *testing.T) {
	svc, _, state := newTurnFixture(t)
	ctx := context.Background()

	if err := svc.EnsureTurn(ctx, state, 2); !errors.Is(err, duel.ErrOffTurn) {
		t.Fatalf("off-turn err = %v; want ErrOffTurn", err)
	}
	if err := svc.EnsureTurn(ctx, state, 1); err != nil {
		t.Fatalf("current player rejected: %v", err)
	}
}

func TestEnsureTurnRejectsFinishedSession(t *testing.T) {
	svc, gw, state := newTurnFixture(t)
	ctx := context.Background()

	if _, err := gw.FinishSession(ctx, "s-1", 1); err != nil {
		t.Fatalf("finish session: %v", err)
	}
	if err := svc.EnsureTurn(ctx, state, 1); !errors.Is(err, duel.ErrSessionFinished) {
		t.Fatalf("finished err = %v; want ErrSessionFinished", err)
	}
}

func TestEnsureTurnUnknownSession(t *testing.T) {
	svc, _, state := newTurnFixture(t)
	state.ActiveDuelID = "s-missing"

	if err := svc.EnsureTurn(context.Background(), state, 1); !errors.Is(err, duel.ErrSessionNotFound) {
		t.Fatalf("unknown session err = %v; want ErrSessionNotFound", err)
	}
}

func TestValidateWager(t *testing.T) {
	svc, _, _ := newTurnFixture(t)

	cases := []struct {
		wager int64
		want  error
	}{
		{0, service.ErrInvalidWager},
		{-50, service.ErrInvalidWager},
		{99, service.ErrWagerTooLow},
		{100, nil},
		{1000, nil},
		{1001, service.ErrWagerTooHigh},
	}
	for _, c := range cases {
		if got := svc.ValidateWager(c.wager); !errors.Is(got, c.want) {
			t.Fatalf("ValidateWager(%d) = %v; want %v", c.wager, got, c.want)
		}
	}
}
