package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/domain"
)

type contextKey string

const organizerKey contextKey = "organizer"

// SetOrganizer returns a context carrying the authenticated organizer. Used by auth middleware.
func SetOrganizer(ctx context.Context, org *domain.Organizer) context.Context {
	return context.WithValue(ctx, organizerKey, org)
}

// OrganizerFromContext returns the authenticated organizer from the context, if present.
func OrganizerFromContext(ctx context.Context) (*domain.Organizer, bool) {
	org, ok := ctx.Value(organizerKey).(*domain.Organizer)
	return org, ok && org != nil
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the organizer in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
// A nil verifier disables authentication: every request runs as an anonymous organizer
// with an empty ID, which can only touch events without an owner.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	if verifier == nil {
		logger.Warn("organizer authentication disabled")
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				next(w, r.WithContext(SetOrganizer(r.Context(), &domain.Organizer{})))
			}
		}
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			org, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetOrganizer(r.Context(), org))
			next(w, r)
		}
	}
}
