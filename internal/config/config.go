package config

import (
	"os"
	"strconv"

	"github.com/yalcindeniztr/tarihseli/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Duel limits
	MinWager int64
	MaxWager int64

	// Rate limits
	APIRateLimit   int
	APIRateWindow  int
	AuthRateLimit  int
	PlayRateLimit  int
	PlayRateWindow int
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		logger.Fatal("REDIS_ADDR is not set")
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	// Duel limits (по умолчанию)
	minWager := int64(100)
	if v := os.Getenv("MIN_WAGER"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			minWager = n
		}
	}

	maxWager := int64(1000)
	if v := os.Getenv("MAX_WAGER"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxWager = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := 60
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = n
		}
	}

	authRateLimit := 5 // логин дёргают редко, душим перебор имён
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			authRateLimit = n
		}
	}

	playRateLimit := 60 // макс ответов за ->
	if v := os.Getenv("PLAY_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			playRateLimit = n
		}
	}

	playRateWindow := 60 // -> 60 секунд
	if v := os.Getenv("PLAY_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			playRateWindow = n
		}
	}

	return &Config{
		AppPort:        port,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		RedisAddr:      redisAddr,
		RedisPassword:  redisPassword,
		RedisDB:        redisDB,
		MinWager:       minWager,
		MaxWager:       maxWager,
		APIRateLimit:   apiRateLimit,
		APIRateWindow:  apiRateWindow,
		AuthRateLimit:  authRateLimit,
		PlayRateLimit:  playRateLimit,
		PlayRateWindow: playRateWindow,
	}
}
