package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"level":         user.Level,
		"xp":            user.XP,
		"unlocked_keys": user.UnlockedKeys,
		"guild_id":      user.GuildID,
		"achievements":  user.Achievements,
		"created_at":    user.CreatedAt,
	})
}

// TopUsers - общий рейтинг по уровню и опыту
func (h *Handler) TopUsers(c *gin.Context) {
	top, err := h.Users.GetTopByXP(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}
