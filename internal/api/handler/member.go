package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/team"
	"github.com/nexocrm/nexo/pkg/models"
)

// Member serves team membership management.
type Member struct {
	svc *team.Service
}

func NewMember(svc *team.Service) *Member {
	return &Member{svc: svc}
}

// List handles GET /api/v1/team/members.
func (h *Member) List(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	members, err := h.svc.ListMembers(r.Context(), user.ID, teamID)
	if err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, members)
}

// UpdateRole handles PUT /api/v1/team/members/{memberID}/role.
func (h *Member) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)
	memberID, ok := pathUUID(w, r, "memberID")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.UpdateMemberRole(r.Context(), user.ID, teamID, memberID, models.Role(req.Role)); err != nil {
		teamError(w, err)
		return
	}
	response.NoContent(w)
}

// Remove handles DELETE /api/v1/team/members/{memberID}.
func (h *Member) Remove(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)
	memberID, ok := pathUUID(w, r, "memberID")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(r.Context(), user.ID, teamID, memberID); err != nil {
		teamError(w, err)
		return
	}
	response.NoContent(w)
}
