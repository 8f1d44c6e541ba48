package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/auth"
	"github.com/nexocrm/nexo/internal/cache"
	"github.com/nexocrm/nexo/internal/store"
)

// Auth provides session-based authentication middleware.
type Auth struct {
	store  store.Store
	cache  cache.Cache
	secret []byte
}

// NewAuth creates a new Auth middleware.
func NewAuth(s store.Store, c cache.Cache, secret []byte) *Auth {
	return &Auth{store: s, cache: c, secret: secret}
}

// Authenticate validates the Bearer access token, checks that the session it
// references is still live in Redis, and sets the user in the request context.
// A token whose session has been revoked by logout is rejected even if the
// token itself has not expired.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := extractBearerToken(r)
		if rawToken == "" {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Missing or invalid Authorization header", nil)
			return
		}

		userID, sessionID, err := auth.ParseToken(rawToken, a.secret)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Invalid or expired access token", nil)
			return
		}

		sessionUserID, ok, err := a.cache.GetSession(r.Context(), sessionID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate session", nil)
			return
		}
		if !ok || sessionUserID != userID {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Session is no longer active", nil)
			return
		}

		user, err := a.store.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusUnauthorized,
					"UNAUTHORIZED", "Account no longer exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to load account", nil)
			return
		}

		ctx := SetUser(r.Context(), user)
		ctx = setSessionID(ctx, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperAdmin rejects requests from users without the super admin flag.
func (a *Auth) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r)
		if !ok || !user.IsSuperAdmin {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Super admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
