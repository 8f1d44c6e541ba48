package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/team"
	"github.com/nexocrm/nexo/pkg/models"
)

// Invitation serves the invitation lifecycle: create, list, withdraw, accept.
type Invitation struct {
	svc *team.Service
}

func NewInvitation(svc *team.Service) *Invitation {
	return &Invitation{svc: svc}
}

// Create handles POST /api/v1/team/invitations. The raw token appears in this
// response only; it is never stored or shown again.
func (h *Invitation) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, rawToken, err := h.svc.InviteMember(r.Context(), user.ID, teamID, req.Email, models.Role(req.Role))
	if err != nil {
		teamError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"invitation": inv,
		"token":      rawToken,
	})
}

// List handles GET /api/v1/team/invitations.
func (h *Invitation) List(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	invitations, err := h.svc.ListInvitations(r.Context(), user.ID, teamID)
	if err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, invitations)
}

// Delete handles DELETE /api/v1/team/invitations/{invitationID}.
func (h *Invitation) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)
	invitationID, ok := pathUUID(w, r, "invitationID")
	if !ok {
		return
	}

	if err := h.svc.DeleteInvitation(r.Context(), user.ID, teamID, invitationID); err != nil {
		teamError(w, err)
		return
	}
	response.NoContent(w)
}

// Accept handles POST /api/v1/invitations/accept. Requires authentication but
// no active team: the caller may have none yet.
func (h *Invitation) Accept(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)

	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "token is required", nil)
		return
	}

	member, err := h.svc.AcceptInvitation(r.Context(), user, req.Token)
	if err != nil {
		teamError(w, err)
		return
	}
	response.Created(w, member)
}
