package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/repository"

	"github.com/gin-gonic/gin"
)

// GuildLeaderboard - рейтинг гильдий по накопленным очкам
func (h *Handler) GuildLeaderboard(c *gin.Context) {
	board, err := h.Guilds.Leaderboard(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

type CreateGuildRequest struct {
	Name string `json:"name"`
}

// CreateGuild создаёт гильдию и сразу вступает в неё
func (h *Handler) CreateGuild(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateGuildRequest
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	guild := &domain.Guild{Name: req.Name, LeaderID: &userID}
	ctx := c.Request.Context()
	if err := h.Guilds.Create(ctx, guild); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create guild"})
		return
	}
	if err := h.Users.SetGuild(ctx, userID, &guild.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join guild"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guild": guild})
}

// JoinGuild вступает в существующую гильдию
func (h *Handler) JoinGuild(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return
	}

	ctx := c.Request.Context()
	guild, err := h.Guilds.GetByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrGuildNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guild"})
		return
	}

	if err := h.Users.SetGuild(ctx, userID, &guild.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join guild"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guild": guild})
}
