package http

import (
	"time"

	"github.com/yalcindeniztr/tarihseli/internal/config"
	"github.com/yalcindeniztr/tarihseli/internal/duel"
	"github.com/yalcindeniztr/tarihseli/internal/http/handlers"
	"github.com/yalcindeniztr/tarihseli/internal/http/middleware"
	"github.com/yalcindeniztr/tarihseli/internal/progression"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
	"github.com/yalcindeniztr/tarihseli/internal/service"
	"github.com/yalcindeniztr/tarihseli/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// App связывает хранилища, сервисы и сокеты. Возвращается из
// RegisterRoutes, чтобы main мог корректно всё погасить.
type App struct {
	Hub         *ws.Hub
	DuelService *service.DuelService
}

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, gateway duel.Gateway, cfg *config.Config, version string) *App {
	users := repository.NewUserRepository(db)
	content := repository.NewContentRepository(db)
	states := repository.NewGameStateRepository(db)
	guilds := repository.NewGuildRepository(db)
	duelHistory := repository.NewDuelHistoryRepository(db)

	ledger := progression.NewLedger(guilds)
	engine := progression.NewEngine(ledger)
	coordinator := duel.NewCoordinator(gateway, ledger, users, duelHistory)
	invites := duel.NewInvites(gateway, coordinator)

	hub := ws.NewHub()
	duelService := service.NewDuelService(
		gateway, coordinator, invites,
		users, states, content, duelHistory,
		hub,
		service.WagerLimits{MinWager: cfg.MinWager, MaxWager: cfg.MaxWager},
	)
	hub.OnFirstConnect = duelService.WatchInvites
	hub.OnLastClose = duelService.UnwatchInvites

	authService := service.NewAuthService(users)
	progressService := service.NewProgressService(engine, users, states, content, duelService)

	h := handlers.NewHandler(db, authService, progressService, duelService, users, content, guilds)
	healthHandler := handlers.NewHealthHandler(db, rdb, version)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	authRateWindow := time.Minute

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	playRL := middleware.PlayRateLimit(cfg.PlayRateLimit, time.Duration(cfg.PlayRateWindow)*time.Second)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))
	{
		// Auth
		v1.POST("/auth", middleware.RedisRateLimit(cfg.AuthRateLimit, authRateWindow), h.Auth)

		// User profile
		v1.GET("/me", middleware.JWT(), h.Me)
		v1.GET("/leaderboard", h.TopUsers)

		// Content
		v1.GET("/content/categories", h.Categories)
		v1.GET("/content/categories/:id/periods", h.CategoryPeriods)
		v1.GET("/content/categories/:id/nodes", h.CategoryNodes)

		// Game state
		v1.GET("/state", middleware.JWT(), h.State)
		v1.POST("/state/start", middleware.JWT(), h.StartRun)

		// Riddle submissions (per-user rate limit)
		v1.POST("/play/complete", middleware.JWT(), playRL, h.CompleteNode)

		// Duels
		v1.POST("/duel/invite", middleware.JWT(), h.DuelInvite)
		v1.GET("/duel/invites", middleware.JWT(), h.DuelInvites)
		v1.POST("/duel/invites/:id/accept", middleware.JWT(), h.DuelAccept)
		v1.POST("/duel/invites/:id/reject", middleware.JWT(), h.DuelReject)
		v1.GET("/duel/session/:id", middleware.JWT(), h.DuelSession)
		v1.GET("/duel/history", middleware.JWT(), h.DuelHistory)

		// Guilds
		v1.GET("/guilds/leaderboard", h.GuildLeaderboard)
		v1.POST("/guilds", middleware.JWT(), h.CreateGuild)
		v1.POST("/guilds/:id/join", middleware.JWT(), h.JoinGuild)
	}

	// WebSocket: серверные уведомления (приглашения, ходы соперника)
	r.GET("/ws", ws.HandleWS(hub))

	return &App{Hub: hub, DuelService: duelService}
}
