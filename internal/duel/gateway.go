package duel

import (
	"context"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
)

var (
	// ErrSessionNotFound - сессия отсутствует в удалённом хранилище
	ErrSessionNotFound = errors.New("duel session not found")
	// ErrSessionFinished - запись в уже завершённую сессию
	ErrSessionFinished = errors.New("duel session already finished")
	// ErrVersionConflict - условная запись не прошла: документ ушёл вперёд
	ErrVersionConflict = errors.New("duel session version conflict")
	// ErrOffTurn - ход не того игрока; без мутаций, без ретраев
	ErrOffTurn = errors.New("not your turn")
	// ErrInviteNotFound - приглашение отсутствует
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteAlreadyResolved - ответ на уже закрытое приглашение
	ErrInviteAlreadyResolved = errors.New("invite already resolved")
)

// Gateway - абстракция общего документа дуэли в удалённом хранилище.
// Единственный общий изменяемый ресурс между двумя клиентами.
//
// ApplyMove объединяет append хода, инкремент счёта и передачу хода в одну
// условную запись (compare-and-swap по version и currentTurnUserId):
// раздельные appendMove/incrementScore оставляют окно для рассинхрона.
// FinishSession так же атомарно переводит ACTIVE -> FINISHED и возвращает,
// выиграл ли вызывающий этот переход - расчёт ставки делает только он.
type Gateway interface {
	CreateSession(ctx context.Context, s *domain.DuelSession) error
	GetSession(ctx context.Context, sessionID string) (*domain.DuelSession, error)
	// Subscribe доставляет каждое изменение сессии; порядок - порядок
	// доставки хранилища. Возвращает функцию отписки.
	Subscribe(ctx context.Context, sessionID string, onChange func(*domain.DuelSession)) (func(), error)
	// ApplyMove: условная запись. Ошибки: ErrVersionConflict, ErrOffTurn,
	// ErrSessionFinished, ErrSessionNotFound.
	ApplyMove(ctx context.Context, sessionID string, expectedVersion int64, move domain.DuelMove, points int64) (*domain.DuelSession, error)
	// FinishSession возвращает true, если переход выполнил именно этот вызов.
	FinishSession(ctx context.Context, sessionID string, winnerID int64) (bool, error)

	CreateInvite(ctx context.Context, inv *domain.Invite) error
	GetInvite(ctx context.Context, inviteID string) (*domain.Invite, error)
	PendingInvites(ctx context.Context, userID int64) ([]*domain.Invite, error)
	// ResolveInvite: условный переход PENDING -> status; иначе
	// ErrInviteAlreadyResolved.
	ResolveInvite(ctx context.Context, inviteID string, status domain.InviteStatus) (*domain.Invite, error)
	SubscribeInvites(ctx context.Context, userID int64, onIncoming func(*domain.Invite)) (func(), error)
}
