package handlers

import (
	"errors"
	"net/http"

	"github.com/yalcindeniztr/tarihseli/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	Username string `json:"username"`
}

// Auth находит или создаёт игрока по имени и выдаёт токен
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, token, err := h.AuthService.Login(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auth failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
