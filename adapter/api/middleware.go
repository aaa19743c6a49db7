package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
)

type ctxKey int

const userIDCtxKey ctxKey = iota

type middleware func(http.Handler) http.Handler

// chain applies mws so that the last one is outermost.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

// withRequestID keeps the caller's request and correlation ids or assigns
// new ones, and echoes the request id back.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), r.Header.Get(headerRequestID))
		ctx = observability.WithCorrelationID(ctx, r.Header.Get(headerCorrelationID))
		w.Header().Set(headerRequestID, observability.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		level := slogLevelFor(rec.status)
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			observability.StatusKey, rec.status,
			"bytes", rec.bytes,
			observability.DurationKey, time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.ErrorContext(r.Context(), "panic serving request",
					"panic", v,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticated resolves the bearer token and stores the user id in the
// request context.
func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="studyload"`)
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if s.tokens == nil {
			writeError(w, http.StatusUnauthorized, "authentication is not configured")
			return
		}
		userID, err := s.tokens.Resolve(r.Context(), token)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDCtxKey, userID)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, auth.TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func userIDFrom(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(userIDCtxKey).(uuid.UUID)
	return id
}
