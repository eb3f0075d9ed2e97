package service

import (
	"context"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
	"github.com/yalcindeniztr/tarihseli/internal/progression"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
	"github.com/yalcindeniztr/tarihseli/internal/riddle"
)

var (
	ErrWrongAnswer = errors.New("wrong answer")
	ErrWrongUnlock = errors.New("wrong unlock solution")
	ErrNoActiveRun = errors.New("no active run")
)

// ProgressService - сценарии соло-прохождения: старт категории, ответ на
// загадку, начисление наград. В режиме дуэли каждый засчитанный узел
// дополнительно уходит ходом в общую сессию.
type ProgressService struct {
	engine  *progression.Engine
	users   *repository.UserRepository
	states  *repository.GameStateRepository
	content *repository.ContentRepository
	duels   *DuelService
}

func NewProgressService(
	engine *progression.Engine,
	users *repository.UserRepository,
	states *repository.GameStateRepository,
	content *repository.ContentRepository,
	duels *DuelService,
) *ProgressService {
	return &ProgressService{
		engine:  engine,
		users:   users,
		states:  states,
		content: content,
		duels:   duels,
	}
}

// State возвращает текущий снапшот игрока
func (s *ProgressService) State(ctx context.Context, userID int64) (*domain.GameState, error) {
	return s.states.Load(ctx, userID)
}

// StartRun начинает соло-прохождение категории: собирает свежий граф
// (первый узел AVAILABLE) и перезаписывает снапшот игрока.
func (s *ProgressService) StartRun(ctx context.Context, userID int64, categoryID, periodID string) (*domain.GameState, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	graph, err := s.content.Graph(ctx, categoryID, periodID)
	if err != nil {
		return nil, err
	}

	state := &domain.GameState{
		UserID:           userID,
		Mode:             domain.ModeSolo,
		Graphs:           []*domain.QuestGraph{graph},
		ActiveCategoryID: categoryID,
		ActivePeriodID:   periodID,
		Teams: []*domain.TeamProgress{
			{UserID: userID, Name: user.Username, UnlockedKeys: append([]string(nil), user.UnlockedKeys...)},
		},
		ActiveTeamIndex: 0,
		SetupComplete:   true,
		GameStarted:     true,
	}

	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}
	logger.Info("run started", "user_id", userID, "category", categoryID)
	return state, nil
}

// CompleteResult - итог засчитанного узла для клиента
type CompleteResult struct {
	AlreadyCompleted bool              `json:"already_completed"`
	PointsEarned     int64             `json:"points_earned"`
	XPEarned         int64             `json:"xp_earned"`
	LeveledUp        bool              `json:"leveled_up"`
	RewardKeyID      string            `json:"reward_key_id,omitempty"`
	NextNodeID       string            `json:"next_node_id,omitempty"`
	State            *domain.GameState `json:"state"`
	User             *domain.User      `json:"user"`
}

// CompleteNode проверяет ответ и логику разблокировки, двигает цепочку и
// сохраняет пользователя вместе со снапшотом. Повторная сдача уже
// закрытого узла безвредна и наград не даёт.
func (s *ProgressService) CompleteNode(ctx context.Context, userID int64, nodeID, answer, unlockAnswer string) (*CompleteResult, error) {
	state, err := s.states.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			return nil, ErrNoActiveRun
		}
		return nil, err
	}
	if !state.GameStarted {
		return nil, ErrNoActiveRun
	}

	graph := state.ActiveGraph()
	if graph == nil {
		return nil, ErrNoActiveRun
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	team := state.TeamByUserID(userID)
	if team == nil {
		return nil, ErrNoActiveRun
	}

	node, _ := graph.NodeByID(nodeID)
	if node == nil {
		return nil, progression.ErrInvalidNodeState
	}

	// валидация только для ещё не закрытых узлов: повтор идемпотентен
	if node.Status != domain.NodeCompleted {
		if !riddle.ValidateAnswer(node, answer) {
			return nil, ErrWrongAnswer
		}
		if !riddle.ValidateUnlock(node, unlockAnswer) {
			return nil, ErrWrongUnlock
		}

		// в дуэли очередь проверяется ДО начисления наград: отказ по
		// очереди обязан ничего не мутировать, иначе закрытие того же
		// узла в свой ход заплатит второй раз
		if state.Mode == domain.ModeDuel && s.duels != nil {
			if err := s.duels.EnsureTurn(ctx, state, userID); err != nil {
				return nil, err
			}
		}
	}

	result, err := s.engine.CompleteNode(graph, nodeID, team, user)
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		if err := s.users.SaveProgress(ctx, user); err != nil {
			return nil, err
		}

		if state.Mode == domain.ModeDuel && s.duels != nil {
			if err := s.duels.SubmitMove(ctx, state, userID, nodeID, result.PointsEarned); err != nil {
				return nil, err
			}
		}
	}

	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}

	return &CompleteResult{
		AlreadyCompleted: result.AlreadyCompleted,
		PointsEarned:     result.PointsEarned,
		XPEarned:         result.XPEarned,
		LeveledUp:        result.LeveledUp,
		RewardKeyID:      result.RewardKeyID,
		NextNodeID:       result.NextNodeID,
		State:            state,
		User:             user,
	}, nil
}
