package remote

import (
	"context"
	"encoding/json"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
)

// RedisGateway хранит документ дуэли как hash + список ходов и рассылает
// уведомления через pub/sub. Все перекрёстные записи - условные Lua-скрипты:
// нет серверных транзакций, поэтому CAS по version/turn делается на стороне
// хранилища.
type RedisGateway struct {
	rdb *redis.Client
}

var _ duel.Gateway = (*RedisGateway)(nil)

func NewRedisGateway(rdb *redis.Client) *RedisGateway {
	return &RedisGateway{rdb: rdb}
}

func sessionKey(id string) string  { return "duel:" + id }
func movesKey(id string) string    { return "duel:" + id + ":moves" }
func sessionCh(id string) string   { return "duel:ch:" + id }
func inviteKey(id string) string   { return "invite:" + id }
func pendingKey(uid int64) string  { return "invites:pending:" + strconv.FormatInt(uid, 10) }
func inviteCh(uid int64) string    { return "invite:ch:" + strconv.FormatInt(uid, 10) }

// applyMoveScript: одна атомарная запись - проверка статуса, версии и
// очереди хода, затем append хода, инкремент счёта, передача хода,
// version+1 и publish.
var applyMoveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 'not_found' end
if redis.call('HGET', KEYS[1], 'status') ~= 'ACTIVE' then return 'finished' end
if redis.call('HGET', KEYS[1], 'version') ~= ARGV[1] then return 'conflict' end
local turn = redis.call('HGET', KEYS[1], 'turn')
if turn ~= ARGV[2] then return 'off_turn' end
redis.call('RPUSH', KEYS[2], ARGV[3])
local p1 = redis.call('HGET', KEYS[1], 'p1_id')
local p2 = redis.call('HGET', KEYS[1], 'p2_id')
local field = 'p2_score'
local next = p1
if turn == p1 then field = 'p1_score'; next = p2 end
redis.call('HINCRBY', KEYS[1], field, ARGV[4])
redis.call('HSET', KEYS[1], 'turn', next, 'last_move_at', ARGV[5])
redis.call('HINCRBY', KEYS[1], 'version', 1)
redis.call('PUBLISH', KEYS[3], ARGV[6])
return 'ok'
`)

// finishScript: переход ACTIVE -> FINISHED срабатывает ровно один раз.
var finishScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 'not_found' end
if redis.call('HGET', KEYS[1], 'status') ~= 'ACTIVE' then return 'noop' end
redis.call('HSET', KEYS[1], 'status', 'FINISHED', 'winner', ARGV[1])
redis.call('HINCRBY', KEYS[1], 'version', 1)
redis.call('PUBLISH', KEYS[2], ARGV[2])
return 'ok'
`)

// resolveInviteScript: условный переход PENDING -> terminal.
var resolveInviteScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 'not_found' end
if redis.call('HGET', KEYS[1], 'status') ~= 'PENDING' then return 'resolved' end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
redis.call('SREM', KEYS[2], ARGV[2])
return 'ok'
`)

func (g *RedisGateway) CreateSession(ctx context.Context, s *domain.DuelSession) error {
	pipe := g.rdb.TxPipeline()
	pipe.HSet(ctx, sessionKey(s.ID), map[string]interface{}{
		"id":           s.ID,
		"p1_id":        s.Player1.ID,
		"p1_name":      s.Player1.Name,
		"p1_score":     s.Player1.Score,
		"p2_id":        s.Player2.ID,
		"p2_name":      s.Player2.Name,
		"p2_score":     s.Player2.Score,
		"turn":         s.CurrentTurnUserID,
		"category":     s.Category,
		"wager":        s.WagerAmount,
		"status":       string(s.Status),
		"winner":       s.WinnerID,
		"version":      s.Version,
		"created_at":   s.CreatedAt,
		"last_move_at": s.LastMoveAt,
	})
	pipe.Publish(ctx, sessionCh(s.ID), s.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (g *RedisGateway) GetSession(ctx context.Context, sessionID string) (*domain.DuelSession, error) {
	fields, err := g.rdb.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, duel.ErrSessionNotFound
	}

	s := &domain.DuelSession{
		ID:       fields["id"],
		Category: fields["category"],
		Status:   domain.DuelStatus(fields["status"]),
	}
	s.Player1.ID, _ = strconv.ParseInt(fields["p1_id"], 10, 64)
	s.Player1.Name = fields["p1_name"]
	s.Player1.Score, _ = strconv.ParseInt(fields["p1_score"], 10, 64)
	s.Player2.ID, _ = strconv.ParseInt(fields["p2_id"], 10, 64)
	s.Player2.Name = fields["p2_name"]
	s.Player2.Score, _ = strconv.ParseInt(fields["p2_score"], 10, 64)
	s.CurrentTurnUserID, _ = strconv.ParseInt(fields["turn"], 10, 64)
	s.WagerAmount, _ = strconv.ParseInt(fields["wager"], 10, 64)
	s.WinnerID, _ = strconv.ParseInt(fields["winner"], 10, 64)
	s.Version, _ = strconv.ParseInt(fields["version"], 10, 64)
	s.CreatedAt, _ = strconv.ParseInt(fields["created_at"], 10, 64)
	s.LastMoveAt, _ = strconv.ParseInt(fields["last_move_at"], 10, 64)

	raw, err := g.rdb.LRange(ctx, movesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	s.Moves = make([]domain.DuelMove, 0, len(raw))
	for _, item := range raw {
		var m domain.DuelMove
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			logger.Warn("bad move entry in session", "session_id", sessionID, "error", err)
			continue
		}
		s.Moves = append(s.Moves, m)
	}
	return s, nil
}

// Subscribe слушает канал сессии; на каждое уведомление перечитывает
// документ и отдаёт его колбэку. Порядок - порядок доставки pub/sub.
func (g *RedisGateway) Subscribe(ctx context.Context, sessionID string, onChange func(*domain.DuelSession)) (func(), error) {
	pubsub := g.rdb.Subscribe(ctx, sessionCh(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for range pubsub.Channel() {
			s, err := g.GetSession(context.Background(), sessionID)
			if err != nil {
				logger.Warn("session refetch after notify failed", "session_id", sessionID, "error", err)
				continue
			}
			onChange(s)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}

func (g *RedisGateway) ApplyMove(ctx context.Context, sessionID string, expectedVersion int64, move domain.DuelMove, points int64) (*domain.DuelSession, error) {
	payload, err := json.Marshal(move)
	if err != nil {
		return nil, err
	}

	res, err := applyMoveScript.Run(ctx, g.rdb,
		[]string{sessionKey(sessionID), movesKey(sessionID), sessionCh(sessionID)},
		strconv.FormatInt(expectedVersion, 10),
		strconv.FormatInt(move.UserID, 10),
		string(payload),
		points,
		move.Timestamp,
		sessionID,
	).Text()
	if err != nil {
		return nil, err
	}

	switch res {
	case "ok":
		return g.GetSession(ctx, sessionID)
	case "not_found":
		return nil, duel.ErrSessionNotFound
	case "finished":
		return nil, duel.ErrSessionFinished
	case "conflict":
		return nil, duel.ErrVersionConflict
	case "off_turn":
		return nil, duel.ErrOffTurn
	}
	return nil, duel.ErrVersionConflict
}

func (g *RedisGateway) FinishSession(ctx context.Context, sessionID string, winnerID int64) (bool, error) {
	res, err := finishScript.Run(ctx, g.rdb,
		[]string{sessionKey(sessionID), sessionCh(sessionID)},
		winnerID,
		sessionID,
	).Text()
	if err != nil {
		return false, err
	}

	switch res {
	case "ok":
		return true, nil
	case "noop":
		return false, nil
	}
	return false, duel.ErrSessionNotFound
}

func (g *RedisGateway) CreateInvite(ctx context.Context, inv *domain.Invite) error {
	pipe := g.rdb.TxPipeline()
	pipe.HSet(ctx, inviteKey(inv.ID), map[string]interface{}{
		"id":        inv.ID,
		"from_id":   inv.FromID,
		"from_name": inv.FromName,
		"to_id":     inv.ToID,
		"status":    string(inv.Status),
		"ts":        inv.Timestamp,
	})
	pipe.SAdd(ctx, pendingKey(inv.ToID), inv.ID)
	pipe.Publish(ctx, inviteCh(inv.ToID), inv.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (g *RedisGateway) GetInvite(ctx context.Context, inviteID string) (*domain.Invite, error) {
	fields, err := g.rdb.HGetAll(ctx, inviteKey(inviteID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, duel.ErrInviteNotFound
	}

	inv := &domain.Invite{
		ID:       fields["id"],
		FromName: fields["from_name"],
		Status:   domain.InviteStatus(fields["status"]),
	}
	inv.FromID, _ = strconv.ParseInt(fields["from_id"], 10, 64)
	inv.ToID, _ = strconv.ParseInt(fields["to_id"], 10, 64)
	inv.Timestamp, _ = strconv.ParseInt(fields["ts"], 10, 64)
	return inv, nil
}

func (g *RedisGateway) PendingInvites(ctx context.Context, userID int64) ([]*domain.Invite, error) {
	ids, err := g.rdb.SMembers(ctx, pendingKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var out []*domain.Invite
	for _, id := range ids {
		inv, err := g.GetInvite(ctx, id)
		if err != nil {
			continue
		}
		if inv.Status == domain.InvitePending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (g *RedisGateway) ResolveInvite(ctx context.Context, inviteID string, status domain.InviteStatus) (*domain.Invite, error) {
	inv, err := g.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	res, err := resolveInviteScript.Run(ctx, g.rdb,
		[]string{inviteKey(inviteID), pendingKey(inv.ToID)},
		string(status),
		inviteID,
	).Text()
	if err != nil {
		return nil, err
	}

	switch res {
	case "ok":
		inv.Status = status
		return inv, nil
	case "resolved":
		return nil, duel.ErrInviteAlreadyResolved
	}
	return nil, duel.ErrInviteNotFound
}

func (g *RedisGateway) SubscribeInvites(ctx context.Context, userID int64, onIncoming func(*domain.Invite)) (func(), error) {
	pubsub := g.rdb.Subscribe(ctx, inviteCh(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			inv, err := g.GetInvite(context.Background(), msg.Payload)
			if err != nil {
				logger.Warn("invite refetch after notify failed", "invite_id", msg.Payload, "error", err)
				continue
			}
			onIncoming(inv)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}
