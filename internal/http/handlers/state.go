package handlers

import (
	"errors"
	"net/http"

	"github.com/yalcindeniztr/tarihseli/internal/repository"

	"github.com/gin-gonic/gin"
)

// State отдаёт сохранённый снапшот для офлайн-резюма
func (h *Handler) State(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, err := h.ProgressService.State(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no saved state"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

type StartRunRequest struct {
	CategoryID string `json:"category_id"`
	PeriodID   string `json:"period_id"`
}

// StartRun начинает соло-прохождение выбранной категории
func (h *Handler) StartRun(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req StartRunRequest
	if err := c.BindJSON(&req); err != nil || req.CategoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id required"})
		return
	}

	state, err := h.ProgressService.StartRun(c.Request.Context(), userID, req.CategoryID, req.PeriodID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}
