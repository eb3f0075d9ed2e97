package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %s; want 8080", cfg.AppPort)
	}
	if cfg.MinWager != 100 || cfg.MaxWager != 1000 {
		t.Fatalf("wager limits = %d..%d; want 100..1000", cfg.MinWager, cfg.MaxWager)
	}
	if cfg.APIRateLimit != 60 || cfg.APIRateWindow != 60 {
		t.Fatalf("api rate = %d/%ds; want 60/60s", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.AuthRateLimit != 5 {
		t.Fatalf("auth rate = %d; want 5", cfg.AuthRateLimit)
	}
	if cfg.PlayRateLimit != 60 || cfg.PlayRateWindow != 60 {
		t.Fatalf("play rate = %d/%ds; want 60/60s", cfg.PlayRateLimit, cfg.PlayRateWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MIN_WAGER", "50")
	t.Setenv("MAX_WAGER", "5000")
	t.Setenv("API_RATE_LIMIT", "120")
	t.Setenv("API_RATE_WINDOW_SECONDS", "30")
	t.Setenv("AUTH_RATE_LIMIT", "10")
	t.Setenv("PLAY_RATE_LIMIT", "200")
	t.Setenv("PLAY_RATE_WINDOW", "10")

	cfg := Load()

	if cfg.AppPort != "9090" {
		t.Fatalf("AppPort = %s", cfg.AppPort)
	}
	if cfg.MinWager != 50 || cfg.MaxWager != 5000 {
		t.Fatalf("wager limits = %d..%d", cfg.MinWager, cfg.MaxWager)
	}
	if cfg.APIRateLimit != 120 || cfg.APIRateWindow != 30 {
		t.Fatalf("api rate = %d/%ds", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.AuthRateLimit != 10 {
		t.Fatalf("auth rate = %d", cfg.AuthRateLimit)
	}
	if cfg.PlayRateLimit != 200 || cfg.PlayRateWindow != 10 {
		t.Fatalf("play rate = %d/%ds", cfg.PlayRateLimit, cfg.PlayRateWindow)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("MIN_WAGER", "-10")
	t.Setenv("API_RATE_LIMIT", "abc")

	cfg := Load()

	if cfg.MinWager != 100 {
		t.Fatalf("MinWager = %d; want default 100", cfg.MinWager)
	}
	if cfg.APIRateLimit != 60 {
		t.Fatalf("APIRateLimit = %d; want default 60", cfg.APIRateLimit)
	}
}
