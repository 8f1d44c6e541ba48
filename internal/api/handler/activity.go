package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

// Activity serves tenant-scoped activities (calls, emails, meetings, tasks).
type Activity struct {
	svc *crm.Service
}

func NewActivity(svc *crm.Service) *Activity {
	return &Activity{svc: svc}
}

// Create handles POST /api/v1/activities.
func (h *Activity) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		Type       string     `json:"type"`
		Title      string     `json:"title"`
		Notes      string     `json:"notes"`
		LeadID     *uuid.UUID `json:"lead_id"`
		DueAt      *time.Time `json:"due_at"`
		AssignedTo *uuid.UUID `json:"assigned_to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.svc.CreateActivity(r.Context(), teamID, user.ID, crm.ActivityInput{
		Type:       models.ActivityType(req.Type),
		Title:      req.Title,
		Notes:      req.Notes,
		LeadID:     req.LeadID,
		DueAt:      req.DueAt,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, activity)
}

// List handles GET /api/v1/activities.
func (h *Activity) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	filter := store.ActivityFilter{
		TeamID: teamID,
		LeadID: queryUUID(r, "lead_id"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	if v := r.URL.Query().Get("due_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"due_before must be a valid RFC3339 timestamp", nil)
			return
		}
		filter.DueBefore = t
	}

	activities, total, err := h.svc.ListActivities(r.Context(), filter)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Collection(w, activities, paginationMeta(filter.Page, filter.Limit, total))
}

// Complete handles POST /api/v1/activities/{activityID}/complete.
func (h *Activity) Complete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	if err := h.svc.CompleteActivity(r.Context(), activityID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/v1/activities/{activityID}.
func (h *Activity) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	if err := h.svc.DeleteActivity(r.Context(), activityID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}
