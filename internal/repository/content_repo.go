package repository

import (
	"context"
	"errors"

	"github.com/yalcindeniztr/tarihseli/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCategoryNotFound = errors.New("category not found")

// ContentRepository читает справочник загадок: категории, периоды и узлы.
// Контент только для чтения; статусы узлов живут в game_states, не здесь.
type ContentRepository struct {
	db *pgxpool.Pool
}

func NewContentRepository(db *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Categories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(icon_url, ''), sort_order
		 FROM categories
		 ORDER BY sort_order`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IconURL, &c.SortOrder); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *ContentRepository) Periods(ctx context.Context, categoryID string) ([]*domain.Period, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category_id, name, sort_order
		 FROM periods
		 WHERE category_id = $1
		 ORDER BY sort_order`,
		categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Period
	for rows.Next() {
		var p domain.Period
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.SortOrder); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

// Graph собирает свежую цепочку узлов категории: первый AVAILABLE,
// остальные LOCKED.
func (r *ContentRepository) Graph(ctx context.Context, categoryID, periodID string) (*domain.QuestGraph, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, node_order, question_type, question,
		        COALESCE(options, '{}'), COALESCE(correct_answer, ''), COALESCE(correct_year, 0),
		        unlock_type, COALESCE(unlock_logic, ''), COALESCE(unlock_options, '{}'),
		        COALESCE(unlock_answer, ''), COALESCE(map_image_url, ''),
		        target_x, target_y, target_radius,
		        COALESCE(location_hint, ''), reward_key_id
		 FROM nodes
		 WHERE category_id = $1 AND ($2 = '' OR period_id = $2)
		 ORDER BY node_order`,
		categoryID, periodID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	g := &domain.QuestGraph{CategoryID: categoryID, PeriodID: periodID}
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Order, &n.QuestionType, &n.Question,
			&n.Options, &n.CorrectAnswer, &n.CorrectYear,
			&n.UnlockType, &n.UnlockLogic, &n.UnlockOptions,
			&n.UnlockAnswer, &n.MapImageURL,
			&n.TargetZone.X, &n.TargetZone.Y, &n.TargetZone.Radius,
			&n.LocationHint, &n.RewardKeyID,
		); err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return nil, ErrCategoryNotFound
	}

	g.ResetStatuses()
	return g, nil
}

// NodeCount нужен проверке завершения дуэли
func (r *ContentRepository) NodeCount(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM nodes WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCategoryNotFound
		}
		return 0, err
	}
	return count, nil
}
