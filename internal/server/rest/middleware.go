package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/dmitrijs2005/motek/internal/server/services"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

// UserIDFromContext returns the authenticated user ID attached by the auth
// middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(*services.Identity)
	if !ok || id == nil {
		return "", false
	}
	return id.UserID, true
}

// PlatformFromContext returns the platform claim of the access token.
func PlatformFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(*services.Identity)
	if !ok || id == nil {
		return "", false
	}
	return id.Platform, true
}

func withIdentity(ctx context.Context, id *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// authMiddleware requires "Authorization: Bearer <access token>", verifies
// the token, resolves its subject and attaches the identity to the context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok || token == "" || strings.ContainsAny(token, " \t") {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := s.users.Authenticate(ctx, token)
		if err != nil {
			if !errors.Is(err, common.ErrorUnauthorized) {
				s.fail(w, r, err)
				return
			}
			// Every rejection looks the same to the client; the reason is
			// only logged.
			s.logger.Warn(ctx, "access token rejected", "path", r.URL.Path, "reason", err.Error())
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(ctx, identity)))
	})
}

// requirePlatform rejects authenticated callers whose token was issued for
// another platform.
func requirePlatform(platform string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, _ := PlatformFromContext(r.Context()); p != platform {
				writeError(w, r, http.StatusForbidden, "platform not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
