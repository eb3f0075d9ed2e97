package handlers

import (
	"github.com/yalcindeniztr/tarihseli/internal/repository"
	"github.com/yalcindeniztr/tarihseli/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB *pgxpool.Pool

	AuthService     *service.AuthService
	ProgressService *service.ProgressService
	DuelService     *service.DuelService

	Users   *repository.UserRepository
	Content *repository.ContentRepository
	Guilds  *repository.GuildRepository
}

func NewHandler(
	db *pgxpool.Pool,
	auth *service.AuthService,
	progress *service.ProgressService,
	duels *service.DuelService,
	users *repository.UserRepository,
	content *repository.ContentRepository,
	guilds *repository.GuildRepository,
) *Handler {
	return &Handler{
		DB:              db,
		AuthService:     auth,
		ProgressService: progress,
		DuelService:     duels,
		Users:           users,
		Content:         content,
		Guilds:          guilds,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
