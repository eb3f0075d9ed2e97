package progression

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
)

type fakeGuildStore struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeGuildStore) AddScore(_ context.Context, guildID int64, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, delta)
	return nil
}

func (f *fakeGuildStore) deltas() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, len(f.calls))
	copy(out, f.calls)
	return out
}

func testGraph() *domain.QuestGraph {
	return &domain.QuestGraph{
		CategoryID: "cat-ottoman",
		Nodes: []*domain.Node{
			{ID: "n0", Order: 0, Status: domain.NodeAvailable, RewardKeyID: "KEY-0"},
			{ID: "n1", Order: 1, Status: domain.NodeLocked, RewardKeyID: "KEY-1"},
			{ID: "n2", Order: 2, Status: domain.NodeLocked, RewardKeyID: "KEY-2"},
		},
	}
}

func TestCompleteNodeUnlocksNext(t *testing.T) {
	engine := NewEngine(NewLedger(nil))
	graph := testGraph()
	team := &domain.TeamProgress{UserID: 1, Name: "Muhafızlar"}
	user := &domain.User{ID: 1, Level: 1}

	res, err := engine.CompleteNode(graph, "n0", team, user)
	if err != nil {
		t.Fatalf("CompleteNode: %v", err)
	}

	if graph.Nodes[0].Status != domain.NodeCompleted {
		t.Fatalf("node 0 status = %s; want COMPLETED", graph.Nodes[0].Status)
	}
	if graph.Nodes[1].Status != domain.NodeAvailable {
		t.Fatalf("node 1 status = %s; want AVAILABLE", graph.Nodes[1].Status)
	}
	if graph.Nodes[2].Status != domain.NodeLocked {
		t.Fatalf("node 2 status = %s; want LOCKED", graph.Nodes[2].Status)
	}

	if team.Score != 150 {
		t.Fatalf("team score = %d; want 150", team.Score)
	}
	if team.CurrentStage != 1 {
		t.Fatalf("team stage = %d; want 1", team.CurrentStage)
	}
	if user.XP != 250 {
		t.Fatalf("user xp = %d; want 250", user.XP)
	}
	if res.RewardKeyID != "KEY-0" || res.NextNodeID != "n1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !reflect.DeepEqual(team.UnlockedKeys, []string{"KEY-0"}) {
		t.Fatalf("team keys = %v", team.UnlockedKeys)
	}
	if !reflect.DeepEqual(user.UnlockedKeys, []string{"KEY-0"}) {
		t.Fatalf("user keys = %v", user.UnlockedKeys)
	}
}

func TestCompleteNodeSingleAvailableInvariant(t *testing.T) {
	engine := NewEngine(NewLedger(nil))
	graph := testGraph()
	team := &domain.TeamProgress{UserID: 1}
	user := &domain.User{ID: 1, Level: 1}

	for _, id := range []string{"n0", "n1", "n2"} {
		if got := graph.AvailableCount(); got != 1 {
			t.Fatalf("before completing %s: available count = %d; want 1", id, got)
		}
		if _, err := engine.CompleteNode(graph, id, team, user); err != nil {
			t.Fatalf("CompleteNode(%s): %v", id, err)
		}
	}

	if got := graph.AvailableCount(); got != 0 {
		t.Fatalf("after finishing graph: available count = %d; want 0", got)
	}
}

func TestCompleteNodeIdempotent(t *testing.T) {
	engine := NewEngine(NewLedger(nil))
	graph := testGraph()
	team := &domain.TeamProgress{UserID: 1}
	user := &domain.User{ID: 1, Level: 1}

	if _, err := engine.CompleteNode(graph, "n0", team, user); err != nil {
		t.Fatalf("first CompleteNode: %v", err)
	}

	res, err := engine.CompleteNode(graph, "n0", team, user)
	if err != nil {
		t.Fatalf("second CompleteNode: %v", err)
	}
	if !res.AlreadyCompleted {
		t.Fatal("expected AlreadyCompleted result")
	}

	// повтор не должен платить второй раз
	if team.Score != 150 || team.CurrentStage != 1 || user.XP != 250 {
		t.Fatalf("duplicate completion mutated state: score=%d stage=%d xp=%d",
			team.Score, team.CurrentStage, user.XP)
	}
	if len(team.UnlockedKeys) != 1 || len(user.UnlockedKeys) != 1 {
		t.Fatalf("duplicate completion appended keys: team=%v user=%v",
			team.UnlockedKeys, user.UnlockedKeys)
	}
	if graph.Nodes[2].Status != domain.NodeLocked {
		t.Fatal("duplicate completion unlocked an extra node")
	}
}

func TestCompleteNodeLockedFails(t *testing.T) {
	engine := NewEngine(NewLedger(nil))
	graph := testGraph()
	team := &domain.TeamProgress{UserID: 1}
	user := &domain.User{ID: 1, Level: 1}

	_, err := engine.CompleteNode(graph, "n2", team, user)
	if !errors.Is(err, ErrInvalidNodeState) {
		t.Fatalf("err = %v; want ErrInvalidNodeState", err)
	}

	// отказ без мутаций
	if team.Score != 0 || user.XP != 0 || graph.Nodes[2].Status != domain.NodeLocked {
		t.Fatal("failed completion mutated state")
	}
}

func TestCompleteNodeUnknownFails(t *testing.T) {
	engine := NewEngine(NewLedger(nil))
	graph := testGraph()

	_, err := engine.CompleteNode(graph, "missing", &domain.TeamProgress{}, &domain.User{Level: 1})
	if !errors.Is(err, ErrInvalidNodeState) {
		t.Fatalf("err = %v; want ErrInvalidNodeState", err)
	}
}

func TestCompleteNodeGuildContribution(t *testing.T) {
	guilds := &fakeGuildStore{}
	engine := NewEngine(NewLedger(guilds))
	graph := testGraph()
	guildID := int64(7)
	user := &domain.User{ID: 1, Level: 1, GuildID: &guildID}

	if _, err := engine.CompleteNode(graph, "n0", &domain.TeamProgress{UserID: 1}, user); err != nil {
		t.Fatalf("CompleteNode: %v", err)
	}

	// контрибуция асинхронная
	deadline := time.Now().Add(time.Second)
	for {
		deltas := guilds.deltas()
		if len(deltas) == 1 {
			if deltas[0] != 30 { // floor(150 * 0.2)
				t.Fatalf("guild delta = %d; want 30", deltas[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("guild contribution never arrived")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
