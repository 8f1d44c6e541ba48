package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/internal/team"
)

// Team serves the team list, the active-team switch, and team CRUD.
type Team struct {
	svc *team.Service
}

func NewTeam(svc *team.Service) *Team {
	return &Team{svc: svc}
}

// List handles GET /api/v1/teams: the teams the caller belongs to.
func (h *Team) List(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teams, err := h.svc.FetchTeams(r.Context(), user.ID)
	if err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, teams)
}

// Create handles POST /api/v1/teams. The caller becomes the team's first
// owner and the new team becomes their active team.
func (h *Team) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.svc.CreateTeam(r.Context(), user.ID, req.Name, req.Slug, req.Description)
	if err != nil {
		teamError(w, err)
		return
	}
	response.Created(w, created)
}

// SetCurrent handles PUT /api/v1/teams/current: switch the active team.
func (h *Team) SetCurrent(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)

	var req struct {
		TeamID string `json:"team_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	teamID, ok := parseUUIDField(w, req.TeamID, "team_id")
	if !ok {
		return
	}

	if err := h.svc.SetCurrentTeam(r.Context(), user.ID, teamID); err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, map[string]string{"team_id": teamID.String()})
}

// GetCurrent handles GET /api/v1/teams/current.
func (h *Team) GetCurrent(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)

	teamID, ok, err := h.svc.ActiveTeam(r.Context(), user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
		return
	}
	if !ok {
		response.Error(w, http.StatusNotFound, "NO_TEAM_SELECTED", "No team selected", nil)
		return
	}
	response.JSON(w, map[string]string{"team_id": teamID.String()})
}

// Update handles PUT /api/v1/teams/{teamID}.
func (h *Team) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, ok := pathUUID(w, r, "teamID")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		LogoURL     *string `json:"logo_url"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateTeam(r.Context(), user.ID, teamID, store.TeamPatch{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		teamError(w, err)
		return
	}
	response.JSON(w, updated)
}
