package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/people"
	"github.com/clintrovert/taskboard/pkg/types"
)

// UserHeader carries the caller's external user id
const UserHeader = "X-User-Id"

type actorKey struct{}

// ActorFrom returns the person resolved for the current request
func ActorFrom(ctx context.Context) types.Person {
	p, _ := ctx.Value(actorKey{}).(types.Person)
	return p
}

// identify resolves the caller named by UserHeader. Requests without the
// header are rejected before reaching a handler.
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:   "Unauthenticated",
				Message: UserHeader + " header is required",
			})
			return
		}
		actor, err := h.app.Engine.ResolveActor(r.Context(), userID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// requireRole admits only callers holding role. It must run after identify.
func (h *Handler) requireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := people.RequireRole(ActorFrom(r.Context()), role); err != nil {
				h.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request once it has been served
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request served",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// NewRouter mounts the API under /api/v1 and the health probe at /health
func NewRouter(h *Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(h.logger))

	router.Get("/health", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Group(func(r chi.Router) {
			r.Use(h.identify)
			h.RegisterRoutes(r)
		})
	})
	return router
}
