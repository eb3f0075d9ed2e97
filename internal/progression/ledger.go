package progression

import (
	"context"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
)

const (
	// LevelUpBase: порог следующего уровня = level * LevelUpBase
	LevelUpBase int64 = 1000
	// GuildShareDivisor: в гильдию уходит 1/5 заработанных очков
	GuildShareDivisor int64 = 5
)

// GuildStore - внешний счёт гильдий. Начисление fire-and-forget.
type GuildStore interface {
	AddScore(ctx context.Context, guildID int64, delta int64) error
}

// Ledger отвечает за XP, уровни и гильдейские очки.
type Ledger struct {
	guilds GuildStore
}

func NewLedger(guilds GuildStore) *Ledger {
	return &Ledger{guilds: guilds}
}

// GrantXP начисляет XP и делает ОДНУ проверку уровня: если xp >= level*1000,
// уровень +1 и xp сбрасывается в 0. Проверка не циклическая - большой грант
// на низком уровне даст максимум один уровень за вызов.
func (l *Ledger) GrantXP(user *domain.User, amount int64) bool {
	user.XP += amount
	if user.XP >= int64(user.Level)*LevelUpBase {
		user.Level++
		user.XP = 0
		return true
	}
	return false
}

// SettleWager переводит ставку от проигравшего к победителю. XP проигравшего
// не уходит ниже нуля. Проверка уровня здесь не выполняется: ставка двигает
// только сырой XP.
func (l *Ledger) SettleWager(winner, loser *domain.User, wager int64) {
	winner.XP += wager
	loser.XP -= wager
	if loser.XP < 0 {
		loser.XP = 0
	}
}

// ContributeToGuild отправляет долю очков в гильдию пользователя.
// Побочный эффект: никогда не проваливает вызывающую операцию, ошибки
// только логируются.
func (l *Ledger) ContributeToGuild(user *domain.User, pointsEarned int64) {
	if user.GuildID == nil || l.guilds == nil {
		return
	}

	share := pointsEarned / GuildShareDivisor
	if share <= 0 {
		return
	}

	guildID := *user.GuildID
	userID := user.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.guilds.AddScore(ctx, guildID, share); err != nil {
			logger.Warn("guild contribution failed", "guild_id", guildID, "user_id", userID, "error", err)
		}
	}()
}
