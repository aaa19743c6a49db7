package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	identityDomain "github.com/felixgeelhaar/studyload/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var validationErrors = []error{
	services.ErrInvalidInput,
	deadline.ErrEmptyTitle,
	deadline.ErrTitleTooLong,
	deadline.ErrMissingDueDate,
	deadline.ErrNegativeEffort,
	deadline.ErrEffortTooLarge,
	value_objects.ErrInvalidImportance,
	identityDomain.ErrInvalidEmail,
	identityDomain.ErrEmptyName,
	identityDomain.ErrNameTooLong,
	auth.ErrPasswordTooShort,
	auth.ErrPasswordTooLong,
}

// statusFor maps an application error onto an HTTP status.
func statusFor(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	switch {
	case errors.Is(err, deadline.ErrDeadlineNotFound), errors.Is(err, identityDomain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, identityDomain.ErrEmailTaken), errors.Is(err, sharedDomain.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUpstreamGenerator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with its mapped status. Internal errors are
// logged and replaced by a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: http.StatusText(status), Message: err.Error()}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}

	switch {
	case status == http.StatusInternalServerError:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, observability.ErrorKey, err)
		body.Message = "internal server error"
	case status == http.StatusBadGateway:
		s.logger.WarnContext(r.Context(), "narrative generator failed", "path", r.URL.Path, observability.ErrorKey, err)
		body.Message = "the explanation service is unavailable, try again later"
	}
	writeJSON(w, status, body)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", observability.ErrorKey, err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: http.StatusText(status), Message: message})
}

func slogLevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
