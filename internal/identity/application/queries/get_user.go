// Package queries holds the account read side.
package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// DefaultUserTTL bounds how long a cached profile may lag behind a write
// that failed to invalidate it.
const DefaultUserTTL = 10 * time.Minute

// UserDTO is the public view of an account. The password hash never leaves
// the domain.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name().String(),
		Email:     u.Email().String(),
		CreatedAt: u.CreatedAt(),
	}
}

type GetUserQuery struct {
	UserID uuid.UUID
}

type GetUserHandler struct {
	users domain.UserRepository
}

func NewGetUserHandler(users domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{users: users}
}

func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*UserDTO, error) {
	u, err := h.users.FindByID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

type GetUserByEmailQuery struct {
	Email string
}

// GetUserByEmailHandler resolves an address to a profile through the
// user:{email} cache entry.
type GetUserByEmailHandler struct {
	users  domain.UserRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewGetUserByEmailHandler creates the handler. A nil cache disables caching.
func NewGetUserByEmailHandler(users domain.UserRepository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *GetUserByEmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	return &GetUserByEmailHandler{users: users, cache: c, ttl: ttl, logger: logger}
}

func (h *GetUserByEmailHandler) Handle(ctx context.Context, query GetUserByEmailQuery) (*UserDTO, error) {
	email, err := domain.NewEmail(query.Email)
	if err != nil {
		return nil, err
	}
	key := cache.UserKey(email.String())

	if h.cache != nil {
		var cached UserDTO
		err := cache.GetJSON(ctx, h.cache, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.WarnContext(ctx, "user cache read failed", observability.ErrorKey, err)
		}
	}

	u, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)

	if h.cache != nil {
		if err := cache.SetJSON(ctx, h.cache, key, dto, h.ttl); err != nil {
			h.logger.WarnContext(ctx, "user cache write failed", observability.ErrorKey, err)
		}
	}
	return &dto, nil
}
