package domain

// NodeStatus - состояние узла в цепочке загадок
type NodeStatus string

const (
	NodeLocked    NodeStatus = "LOCKED"
	NodeAvailable NodeStatus = "AVAILABLE"
	NodeCompleted NodeStatus = "COMPLETED"
)

// QuestionType - тип исторического вопроса
type QuestionType string

const (
	QuestionYear           QuestionType = "YEAR"
	QuestionText           QuestionType = "TEXT"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// UnlockType - тип задачи разблокировки ключа
type UnlockType string

const (
	UnlockMath           UnlockType = "MATH"
	UnlockText           UnlockType = "TEXT"
	UnlockMultipleChoice UnlockType = "MULTIPLE_CHOICE"
)

// TargetZone - зона на карте, где спрятан ключ
type TargetZone struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
}

// Node - одна загадка в цепочке. Ответ и логика разблокировки хранятся
// как данные; ядро прогрессии их не интерпретирует.
type Node struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Order  int        `json:"order"`
	Status NodeStatus `json:"status"`

	QuestionType  QuestionType `json:"question_type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	CorrectYear   int          `json:"correct_year,omitempty"`

	UnlockType    UnlockType `json:"unlock_type"`
	UnlockLogic   string     `json:"unlock_logic,omitempty"`
	UnlockOptions []string   `json:"unlock_options,omitempty"`
	UnlockAnswer  string     `json:"unlock_answer,omitempty"`

	MapImageURL  string     `json:"map_image_url,omitempty"`
	TargetZone   TargetZone `json:"target_zone"`
	LocationHint string     `json:"location_hint,omitempty"`
	RewardKeyID  string     `json:"reward_key_id"`
}

// QuestGraph - упорядоченная цепочка узлов категории (или периода).
// Разблокировка строго линейная: в любой момент доступен максимум один узел.
type QuestGraph struct {
	CategoryID string  `json:"category_id"`
	PeriodID   string  `json:"period_id,omitempty"`
	Nodes      []*Node `json:"nodes"`
}

// NodeByID returns the node and its index, or (nil, -1) if absent.
func (g *QuestGraph) NodeByID(id string) (*Node, int) {
	for i, n := range g.Nodes {
		if n.ID == id {
			return n, i
		}
	}
	return nil, -1
}

// FirstAvailable returns the currently available node, or nil.
func (g *QuestGraph) FirstAvailable() *Node {
	for _, n := range g.Nodes {
		if n.Status == NodeAvailable {
			return n
		}
	}
	return nil
}

// AvailableCount counts nodes in AVAILABLE status.
func (g *QuestGraph) AvailableCount() int {
	count := 0
	for _, n := range g.Nodes {
		if n.Status == NodeAvailable {
			count++
		}
	}
	return count
}

// CompletedCount counts nodes in COMPLETED status.
func (g *QuestGraph) CompletedCount() int {
	count := 0
	for _, n := range g.Nodes {
		if n.Status == NodeCompleted {
			count++
		}
	}
	return count
}

// TotalNodes returns the length of the node chain.
func (g *QuestGraph) TotalNodes() int {
	return len(g.Nodes)
}

// ResetStatuses puts a freshly selected graph into its starting shape:
// первый узел AVAILABLE, остальные LOCKED.
func (g *QuestGraph) ResetStatuses() {
	for i, n := range g.Nodes {
		if i == 0 {
			n.Status = NodeAvailable
		} else {
			n.Status = NodeLocked
		}
	}
}
