package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenType is the scheme clients send tokens with.
const TokenType = "bearer"

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Service logs users in and resolves tokens to user ids.
type Service struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewService(users domain.UserRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(user.PasswordHash(), password) {
		s.logger.InfoContext(ctx, "login rejected", observability.UserIDKey, user.ID())
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID(), user.Email().String())
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", observability.UserIDKey, user.ID())

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expires,
		User: UserInfo{
			ID:    user.ID(),
			Name:  user.Name().String(),
			Email: user.Email().String(),
		},
	}, nil
}

// Resolve maps a token to its user id. The user must still exist.
func (s *Service) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.users.FindByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, err
	}
	return claims.Subject, nil
}
