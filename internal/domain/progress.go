package domain

// GameMode - режим игры
type GameMode string

const (
	ModeSolo GameMode = "SOLO"
	ModeDuel GameMode = "DUEL"
)

// TeamProgress - прогресс одной стороны (solo игрок или участник дуэли).
// score и currentStage только растут, unlockedKeys - append-only.
type TeamProgress struct {
	UserID       int64    `json:"user_id"`
	Name         string   `json:"name"`
	CurrentStage int      `json:"current_stage"`
	UnlockedKeys []string `json:"unlocked_keys"`
	Score        int64    `json:"score"`
}

// GameState - снимок всего состояния игры одного пользователя.
// Сохраняется целиком для офлайн-резюма; во время дуэли счёт в
// удалённой сессии имеет приоритет над локальным зеркалом.
type GameState struct {
	UserID           int64         `json:"user_id"`
	Mode             GameMode      `json:"mode"`
	Graphs           []*QuestGraph `json:"graphs"`
	ActiveCategoryID string        `json:"active_category_id,omitempty"`
	ActivePeriodID   string        `json:"active_period_id,omitempty"`
	Teams            []*TeamProgress `json:"teams"`
	ActiveTeamIndex  int           `json:"active_team_index"`
	ActiveDuelID     string        `json:"active_duel_id,omitempty"`
	ActiveWager      int64         `json:"active_wager,omitempty"`
	DuelVersion      int64         `json:"duel_version,omitempty"`
	SetupComplete    bool          `json:"setup_complete"`
	GameStarted      bool          `json:"game_started"`
}

// ActiveGraph returns the graph for the currently selected category/period.
func (s *GameState) ActiveGraph() *QuestGraph {
	for _, g := range s.Graphs {
		if g.CategoryID == s.ActiveCategoryID && g.PeriodID == s.ActivePeriodID {
			return g
		}
	}
	return nil
}

// ActiveTeam returns the team whose turn it is locally.
func (s *GameState) ActiveTeam() *TeamProgress {
	if s.ActiveTeamIndex < 0 || s.ActiveTeamIndex >= len(s.Teams) {
		return nil
	}
	return s.Teams[s.ActiveTeamIndex]
}

// TeamByUserID matches a team by stable user id. Matching by display name
// is a correctness hazard when names collide.
func (s *GameState) TeamByUserID(userID int64) *TeamProgress {
	for _, t := range s.Teams {
		if t.UserID == userID {
			return t
		}
	}
	return nil
}

// LeaveDuel resets the local mode back to SOLO and clears duel bindings.
func (s *GameState) LeaveDuel() {
	s.Mode = ModeSolo
	s.ActiveDuelID = ""
	s.ActiveWager = 0
	s.DuelVersion = 0
}
