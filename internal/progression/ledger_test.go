package progression

import (
	"testing"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
)

func TestGrantXPLevelUp(t *testing.T) {
	ledger := NewLedger(nil)

	// level 1 at 800 xp, +250 -> 1050 >= 1000 -> level 2, xp 0
	user := &domain.User{Level: 1, XP: 800}
	if !ledger.GrantXP(user, 250) {
		t.Fatal("expected level-up")
	}
	if user.Level != 2 || user.XP != 0 {
		t.Fatalf("level=%d xp=%d; want level=2 xp=0", user.Level, user.XP)
	}
}

func TestGrantXPNoLevelUp(t *testing.T) {
	ledger := NewLedger(nil)

	user := &domain.User{Level: 2, XP: 100}
	if ledger.GrantXP(user, 250) {
		t.Fatal("unexpected level-up")
	}
	if user.Level != 2 || user.XP != 350 {
		t.Fatalf("level=%d xp=%d; want level=2 xp=350", user.Level, user.XP)
	}
}

func TestGrantXPSingleStepOnly(t *testing.T) {
	ledger := NewLedger(nil)

	// огромный грант даёт ровно один уровень за вызов
	user := &domain.User{Level: 1, XP: 0}
	if !ledger.GrantXP(user, 10000) {
		t.Fatal("expected level-up")
	}
	if user.Level != 2 || user.XP != 0 {
		t.Fatalf("level=%d xp=%d; want level=2 xp=0", user.Level, user.XP)
	}
}

func TestSettleWager(t *testing.T) {
	ledger := NewLedger(nil)

	winner := &domain.User{Level: 3, XP: 500}
	loser := &domain.User{Level: 2, XP: 40}
	ledger.SettleWager(winner, loser, 100)

	if winner.XP != 600 {
		t.Fatalf("winner xp = %d; want 600", winner.XP)
	}
	// проигравший не уходит в минус
	if loser.XP != 0 {
		t.Fatalf("loser xp = %d; want 0", loser.XP)
	}
}

func TestContributeToGuildWithoutGuild(t *testing.T) {
	guilds := &fakeGuildStore{}
	ledger := NewLedger(guilds)

	ledger.ContributeToGuild(&domain.User{ID: 1}, 150)

	if len(guilds.deltas()) != 0 {
		t.Fatal("contribution made for guildless user")
	}
}
