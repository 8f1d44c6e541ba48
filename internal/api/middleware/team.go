package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/cache"
	"github.com/nexocrm/nexo/internal/store"
)

// TeamHeader carries an explicit team selection; without it the user's
// persisted active team is used.
const TeamHeader = "X-Team-ID"

// Team resolves the tenant for a request and verifies membership.
type Team struct {
	store store.Store
	cache cache.Cache
}

// NewTeam creates a new Team middleware.
func NewTeam(s store.Store, c cache.Cache) *Team {
	return &Team{store: s, cache: c}
}

// Resolve determines the team a request operates in, either from the
// X-Team-ID header or from the user's persisted active team, then verifies
// the user is a member before letting the request through. Requests with no
// resolvable team or no membership never reach tenant-scoped handlers.
func (t *Team) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Authentication required", nil)
			return
		}

		teamID, err := t.resolveTeamID(r)
		if err != nil {
			if errors.Is(err, errBadTeamHeader) {
				response.Error(w, http.StatusBadRequest,
					"VALIDATION_ERROR", "Invalid team ID", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to resolve team", nil)
			return
		}
		if teamID == uuid.Nil {
			response.Error(w, http.StatusBadRequest,
				"NO_TEAM_SELECTED", "No team selected", nil)
			return
		}

		member, err := t.store.GetTeamMember(r.Context(), teamID, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusForbidden,
					"NOT_A_MEMBER", "You are not a member of this team", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to verify team membership", nil)
			return
		}

		ctx := SetTeamID(r.Context(), teamID)
		ctx = setTeamRole(ctx, member.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager rejects requests from members whose role cannot manage the
// team (owners and admins only).
func (t *Team) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetTeamRole(r)
		if !ok || !role.CanManageTeam() {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Team admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errBadTeamHeader = errors.New("malformed team id header")

func (t *Team) resolveTeamID(r *http.Request) (uuid.UUID, error) {
	if header := r.Header.Get(TeamHeader); header != "" {
		teamID, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, errBadTeamHeader
		}
		return teamID, nil
	}

	user, _ := GetUser(r)
	teamID, ok, err := t.cache.GetActiveTeam(r.Context(), user.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("active team lookup: %w", err)
	}
	if !ok {
		return uuid.Nil, nil
	}
	return teamID, nil
}
