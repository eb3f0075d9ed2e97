package handlers

import (
	"errors"
	"net/http"

	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/progression"
	"github.com/yalcindeniztr/tarihseli/internal/service"

	"github.com/gin-gonic/gin"
)

type CompleteNodeRequest struct {
	NodeID       string `json:"node_id"`
	Answer       string `json:"answer"`
	UnlockAnswer string `json:"unlock_answer"`
}

// CompleteNode принимает ответ на загадку. В дуэли тот же вызов
// записывает ход в общую сессию.
func (h *Handler) CompleteNode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CompleteNodeRequest
	if err := c.BindJSON(&req); err != nil || req.NodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node_id required"})
		return
	}

	result, err := h.ProgressService.CompleteNode(c.Request.Context(), userID, req.NodeID, req.Answer, req.UnlockAnswer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongAnswer):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "wrong answer"})
		case errors.Is(err, service.ErrWrongUnlock):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "wrong unlock solution"})
		case errors.Is(err, service.ErrNoActiveRun):
			c.JSON(http.StatusConflict, gin.H{"error": "no active run"})
		case errors.Is(err, progression.ErrInvalidNodeState):
			c.JSON(http.StatusConflict, gin.H{"error": "node is not available"})
		case errors.Is(err, duel.ErrOffTurn):
			c.JSON(http.StatusConflict, gin.H{"error": "not your turn"})
		case errors.Is(err, duel.ErrSessionFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "duel already finished"})
		case errors.Is(err, duel.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "duel state changed, retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete node"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
