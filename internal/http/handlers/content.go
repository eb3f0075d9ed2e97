package handlers

import (
	"errors"
	"net/http"

	"github.com/yalcindeniztr/tarihseli/internal/repository"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.Content.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) CategoryPeriods(c *gin.Context) {
	periods, err := h.Content.Periods(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load periods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

// CategoryNodes отдаёт цепочку узлов категории в стартовом состоянии.
// Ответы и логика разблокировки остаются на сервере и наружу не уходят.
func (h *Handler) CategoryNodes(c *gin.Context) {
	graph, err := h.Content.Graph(c.Request.Context(), c.Param("id"), c.Query("period"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load nodes"})
		return
	}

	type nodeView struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		Order        int      `json:"order"`
		Status       string   `json:"status"`
		QuestionType string   `json:"question_type"`
		Question     string   `json:"question"`
		Options      []string `json:"options,omitempty"`
		UnlockType   string   `json:"unlock_type"`
		LocationHint string   `json:"location_hint,omitempty"`
	}

	views := make([]nodeView, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		views = append(views, nodeView{
			ID:           n.ID,
			Title:        n.Title,
			Order:        n.Order,
			Status:       string(n.Status),
			QuestionType: string(n.QuestionType),
			Question:     n.Question,
			Options:      n.Options,
			UnlockType:   string(n.UnlockType),
			LocationHint: n.LocationHint,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"category_id": graph.CategoryID,
		"nodes":       views,
	})
}
