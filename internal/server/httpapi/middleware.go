package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-auth/gatehouse/internal/server/services"
)

type contextKey int

const actorKey contextKey = 0

// requireBearer authenticates the access token and stashes the resulting
// actor in the request context.
func (h *Handler) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		claims, err := h.signer.Verify(raw)
		if err != nil {
			writeError(w, err)
			return
		}

		actor := services.Actor{
			UserID: claims.Subject,
			Scopes: claims.Scopes(),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(r *http.Request) services.Actor {
	actor, _ := r.Context().Value(actorKey).(services.Actor)
	return actor
}

// logRequests records method, path, status and latency for every request.
// Credentials travel in bodies and headers, never in the path, so the path
// is safe to log.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
