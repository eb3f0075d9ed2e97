package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
	"github.com/yalcindeniztr/tarihseli/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteRequest struct {
	Username string `json:"username"`
}

// DuelInvite бросает вызов другому игроку
func (h *Handler) DuelInvite(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req InviteRequest
	if err := c.BindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}

	inv, err := h.DuelService.Invite(c.Request.Context(), userID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOpponentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "opponent not found"})
		case errors.Is(err, service.ErrSelfInvite):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot invite yourself"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"invite": inv})
}

// DuelInvites - входящие нерешённые приглашения
func (h *Handler) DuelInvites(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invites, err := h.DuelService.Pending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

type AcceptInviteRequest struct {
	CategoryID string `json:"category_id"`
	Wager      int64  `json:"wager"`
}

// DuelAccept принимает приглашение и открывает сессию
func (h *Handler) DuelAccept(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AcceptInviteRequest
	if err := c.BindJSON(&req); err != nil || req.CategoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id required"})
		return
	}

	session, err := h.DuelService.Accept(c.Request.Context(), userID, c.Param("id"), req.CategoryID, req.Wager)
	if err != nil {
		duelErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DuelReject отклоняет приглашение
func (h *Handler) DuelReject(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.DuelService.Reject(c.Request.Context(), userID, c.Param("id")); err != nil {
		duelErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// DuelSession - свежий снимок сессии (поллинг-запасной путь к ws)
func (h *Handler) DuelSession(c *gin.Context) {
	session, err := h.DuelService.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, duel.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DuelHistory - архив завершённых дуэлей игрока
func (h *Handler) DuelHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	history, err := h.DuelService.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func duelErrorJSON(c *gin.Context, err error) {
	switch {
	case errors.Is(err, duel.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	case errors.Is(err, duel.ErrInviteAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "invite already resolved"})
	case errors.Is(err, service.ErrNotYourInvite):
		c.JSON(http.StatusForbidden, gin.H{"error": "invite addressed to another user"})
	case errors.Is(err, service.ErrWagerTooLow), errors.Is(err, service.ErrWagerTooHigh), errors.Is(err, service.ErrInvalidWager):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "duel operation failed"})
	}
}
