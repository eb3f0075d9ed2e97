package domain

// Category - историческая эпоха верхнего уровня (Hun, Göktürk, Selçuklu...)
type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	IconURL     string `db:"icon_url" json:"icon_url,omitempty"`
	SortOrder   int    `db:"sort_order" json:"sort_order"`
}

// Period - подпериод внутри категории, со своей цепочкой узлов
type Period struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
	SortOrder  int    `db:"sort_order" json:"sort_order"`
}
