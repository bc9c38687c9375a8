package rest

import (
	"context"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFrom returns the correlation id stored by the logging middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// accessLog assigns a request id and logs every completed request.
func accessLog(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			m := httpsnoop.CaptureMetrics(next, w, r)

			logger.Info(r.Context(), "request completed",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"duration", m.Duration,
			)
		})
	}
}

// guard authenticates the bearer token and checks it against required. A
// public role set lets the request through untouched.
func (h *Handlers) guard(required auth.RoleSet, next http.HandlerFunc) http.HandlerFunc {
	if required.IsPublic() {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.RequireAuthenticated(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if err := h.gate.RequireRole(identity, required); err != nil {
			h.logger.Warn(r.Context(), "access denied", "account_id", identity.ID, "role", identity.Role, "path", r.URL.Path)
			h.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	}
}
