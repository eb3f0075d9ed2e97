package duel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
)

// Invites - жизненный цикл приглашений: PENDING -> ACCEPTED | REJECTED.
// Принятие порождает ровно одну сессию дуэли.
type Invites struct {
	gateway     Gateway
	coordinator *Coordinator
}

func NewInvites(gateway Gateway, coordinator *Coordinator) *Invites {
	return &Invites{gateway: gateway, coordinator: coordinator}
}

// Create публикует новое PENDING приглашение от challenger к toID.
func (i *Invites) Create(ctx context.Context, from *domain.User, toID int64) (*domain.Invite, error) {
	inv := &domain.Invite{
		ID:        uuid.NewString(),
		FromID:    from.ID,
		FromName:  from.Username,
		ToID:      toID,
		Status:    domain.InvitePending,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := i.gateway.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	logger.Info("duel invite created", "invite_id", inv.ID, "from", from.ID, "to", toID)
	return inv, nil
}

// Accept переводит приглашение в ACCEPTED и создаёт сессию с выбранной
// ставкой. Повторный ответ на закрытое приглашение -
// ErrInviteAlreadyResolved, без мутаций.
func (i *Invites) Accept(ctx context.Context, inviteID string, recipient *domain.User, categoryID string, wager int64) (*domain.DuelSession, error) {
	inv, err := i.gateway.ResolveInvite(ctx, inviteID, domain.InviteAccepted)
	if err != nil {
		return nil, err
	}
	return i.coordinator.CreateSession(ctx, inv, recipient, categoryID, wager)
}

// Reject переводит приглашение в REJECTED.
func (i *Invites) Reject(ctx context.Context, inviteID string) error {
	_, err := i.gateway.ResolveInvite(ctx, inviteID, domain.InviteRejected)
	return err
}
