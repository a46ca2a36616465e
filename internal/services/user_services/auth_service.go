// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/citizenslab/citizens-chat/internal/auth"
	"github.com/citizenslab/citizens-chat/internal/domain"
	"github.com/citizenslab/citizens-chat/internal/repository/user"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Logger defines the logging interface used by user services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		logger:       logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if !usernameRegex.MatchString(username) {
		return nil, errors.New("username must be 3-20 characters, alphanumeric or underscore")
	}

	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		s.logger.Warn("registration failed - username already exists",
			"username", maskName(username), "existing_user_id", existing.ID)
		return nil, errors.New("username already taken")
	}

	newUser := &domain.User{Username: username}
	if err := newUser.HashPassword(password); err != nil {
		return nil, fmt.Errorf("password validation failed: %w", err)
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		s.logger.Error("user creation failed", "username", maskName(username), "error", err)
		return nil, errors.New("could not create user")
	}

	s.logger.Info("user registered", "user_id", created.ID, "username", maskName(username))
	return created, nil
}

// Login authenticates a user and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		return nil, "", errors.New("username and password are required")
	}

	account, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed - user not found", "username", maskName(username))
		return nil, "", errors.New("invalid credentials")
	}

	if err := account.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "username", maskName(username), "user_id", account.ID)
		return nil, "", errors.New("invalid credentials")
	}

	token, err := auth.GenerateJWT(account.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("JWT token generation failed", "user_id", account.ID, "error", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "user_id", account.ID, "username", maskName(username))
	return account, token, nil
}

// ValidateJWTToken validates a token string and returns the user ID it carries.
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	return auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
}

// maskName keeps log lines free of full account names.
func maskName(username string) string {
	if len(username) <= 4 {
		return "****"
	}
	return username[:4] + "****"
}
