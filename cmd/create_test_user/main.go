package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/yalcindeniztr/tarihseli/internal/db"
	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
	"github.com/yalcindeniztr/tarihseli/internal/service"
)

func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	username := os.Getenv("TEST_USERNAME")
	if username == "" {
		username = "testuser"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	u, err := repo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		u = &domain.User{Username: username}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d\n", u.ID)
	} else if err != nil {
		log.Fatalf("get by username failed: %v", err)
	} else {
		log.Printf("user already exists id=%d\n", u.ID)
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("user id=%d username=%s level=%d xp=%d\n", u.ID, u.Username, u.Level, u.XP)
	log.Printf("token=%s\n", token)
}
