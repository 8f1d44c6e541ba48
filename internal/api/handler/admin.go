package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/team"
)

// Admin serves the cross-tenant super admin surface.
type Admin struct {
	svc *team.Service
}

func NewAdmin(svc *team.Service) *Admin {
	return &Admin{svc: svc}
}

// ListTeams handles GET /api/v1/admin/teams.
func (h *Admin) ListTeams(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)

	teams, err := h.svc.ListAllTeams(r.Context(), user)
	if err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, teams)
}

// DeleteTeam handles DELETE /api/v1/admin/teams/{teamID}. Removes the team
// and everything scoped to it.
func (h *Admin) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, ok := pathUUID(w, r, "teamID")
	if !ok {
		return
	}

	if err := h.svc.DeleteTeam(r.Context(), user, teamID); err != nil {
		teamError(w, err)
		return
	}
	response.NoContent(w)
}
