package progression

import (
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
)

// ErrInvalidNodeState - узел не найден или ещё LOCKED. Состояние не меняется.
var ErrInvalidNodeState = errors.New("node is not available")

const (
	// NodeScoreReward - очки команды за один пройденный узел
	NodeScoreReward int64 = 150
	// NodeXPReward - XP пользователя за один пройденный узел
	NodeXPReward int64 = 250
)

// Result описывает эффект CompleteNode.
type Result struct {
	AlreadyCompleted bool   `json:"already_completed"`
	RewardKeyID      string `json:"reward_key_id,omitempty"`
	NextNodeID       string `json:"next_node_id,omitempty"`
	PointsEarned     int64  `json:"points_earned"`
	XPEarned         int64  `json:"xp_earned"`
	LeveledUp        bool   `json:"leveled_up"`
}

// Engine реализует линейную прогрессию по цепочке узлов.
type Engine struct {
	ledger *Ledger
}

func NewEngine(ledger *Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// CompleteNode помечает AVAILABLE узел как COMPLETED, открывает следующий
// LOCKED узел и начисляет награды ровно один раз.
//
// Повторный вызов для уже COMPLETED узла - идемпотентный no-op: повторы
// от UI или дублированных уведомлений не должны платить дважды.
func (e *Engine) CompleteNode(graph *domain.QuestGraph, nodeID string, team *domain.TeamProgress, user *domain.User) (*Result, error) {
	node, idx := graph.NodeByID(nodeID)
	if node == nil {
		return nil, ErrInvalidNodeState
	}

	switch node.Status {
	case domain.NodeCompleted:
		return &Result{AlreadyCompleted: true}, nil
	case domain.NodeLocked:
		return nil, ErrInvalidNodeState
	}

	node.Status = domain.NodeCompleted

	// строго линейная разблокировка: открывается только первый LOCKED
	// узел после текущего
	res := &Result{
		RewardKeyID:  node.RewardKeyID,
		PointsEarned: NodeScoreReward,
		XPEarned:     NodeXPReward,
	}
	for i := idx + 1; i < len(graph.Nodes); i++ {
		if graph.Nodes[i].Status == domain.NodeLocked {
			graph.Nodes[i].Status = domain.NodeAvailable
			res.NextNodeID = graph.Nodes[i].ID
			break
		}
	}

	team.UnlockedKeys = append(team.UnlockedKeys, node.RewardKeyID)
	team.CurrentStage++
	team.Score += NodeScoreReward

	user.UnlockedKeys = append(user.UnlockedKeys, node.RewardKeyID)
	res.LeveledUp = e.ledger.GrantXP(user, NodeXPReward)
	e.ledger.ContributeToGuild(user, NodeScoreReward)

	return res, nil
}
