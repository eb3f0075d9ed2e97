package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
	"github.com/yalcindeniztr/tarihseli/internal/logger"
	"github.com/yalcindeniztr/tarihseli/internal/repository"
)

var ErrInvalidUsername = errors.New("invalid username")

// AuthService выдаёт токен по имени игрока. Логина с паролем нет:
// имя - единственный идентификатор, новые игроки создаются на лету.
type AuthService struct {
	users *repository.UserRepository
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Login находит или создаёт пользователя и возвращает JWT
func (s *AuthService) Login(ctx context.Context, username string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 2 || n > 32 {
		return nil, "", ErrInvalidUsername
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &domain.User{Username: username}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
		logger.Info("user created", "user_id", user.ID, "username", username)
	} else if err != nil {
		return nil, "", err
	} else {
		_ = s.users.TouchLastActive(ctx, user.ID)
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
