package authz

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Headers set by the fronting gateway after authentication.
const (
	HeaderActorID    = "X-Actor-ID"
	HeaderActorRoles = "X-Actor-Roles"
)

// Middleware resolves the actor for each request.
type Middleware struct {
	Logger *slog.Logger
}

// Resolve parses the gateway identity headers into an Actor and stores it in
// the request context. Requests without identity pass through as anonymous;
// the Require* gates reject them where identity is mandatory.
func (m Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderActorID))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			if m.Logger != nil {
				m.Logger.Warn("authz parse actor id", slog.String("value", raw))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		var roles []Role
		for _, part := range strings.Split(r.Header.Get(HeaderActorRoles), ",") {
			if role := ParseRole(part); role != "" {
				roles = append(roles, role)
			}
		}
		ctx := ContextWithActor(r.Context(), NewActor(id, roles...))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActor rejects requests without a resolved actor.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r.Context()).IsZero() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOrderManager rejects actors outside {staff, moderator, admin}.
func (m Middleware) RequireOrderManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor.IsZero() || !actor.CanManageOrders() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
