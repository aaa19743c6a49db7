package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

type ListDeadlinesQuery struct {
	UserID uuid.UUID
}

// ListDeadlinesHandler returns every deadline of the user ordered by due
// date then title. The list is cached until the next deadline write.
type ListDeadlinesHandler struct {
	deadlines deadline.Repository
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

// NewListDeadlinesHandler creates the handler. A nil cache disables caching.
func NewListDeadlinesHandler(deadlines deadline.Repository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *ListDeadlinesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListDeadlinesHandler{deadlines: deadlines, cache: c, ttl: ttl, logger: logger}
}

func (h *ListDeadlinesHandler) Handle(ctx context.Context, query ListDeadlinesQuery) ([]DeadlineDTO, error) {
	key := cache.DeadlineListKey(query.UserID)

	if h.cache != nil {
		var cached []DeadlineDTO
		err := cache.GetJSON(ctx, h.cache, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.WarnContext(ctx, "deadline list cache read failed", observability.ErrorKey, err)
		}
	}

	deadlines, err := h.deadlines.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	dtos := toDeadlineDTOs(deadlines)

	if h.cache != nil {
		if err := cache.SetJSON(ctx, h.cache, key, dtos, h.ttl); err != nil {
			h.logger.WarnContext(ctx, "deadline list cache write failed", observability.ErrorKey, err)
		}
	}
	return dtos, nil
}

type GetDeadlineQuery struct {
	UserID     uuid.UUID
	DeadlineID uuid.UUID
}

type GetDeadlineHandler struct {
	deadlines deadline.Repository
}

func NewGetDeadlineHandler(deadlines deadline.Repository) *GetDeadlineHandler {
	return &GetDeadlineHandler{deadlines: deadlines}
}

// Handle returns ErrDeadlineNotFound for deadlines owned by someone else.
func (h *GetDeadlineHandler) Handle(ctx context.Context, query GetDeadlineQuery) (*DeadlineDTO, error) {
	d, err := h.deadlines.FindByID(ctx, query.DeadlineID)
	if err != nil {
		return nil, err
	}
	if !d.IsOwnedBy(query.UserID) {
		return nil, deadline.ErrDeadlineNotFound
	}
	dto := toDeadlineDTO(d)
	return &dto, nil
}
