package handler

import (
	"net/http"

	"github.com/google/uuid"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/internal/store"
)

// Lead serves tenant-scoped lead CRUD.
type Lead struct {
	svc *crm.Service
}

func NewLead(svc *crm.Service) *Lead {
	return &Lead{svc: svc}
}

type leadRequest struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Source       string         `json:"source"`
	Notes        string         `json:"notes"`
	CompanyID    *uuid.UUID     `json:"company_id"`
	StageID      *uuid.UUID     `json:"stage_id"`
	LabelIDs     []uuid.UUID    `json:"label_ids"`
	CustomFields map[string]any `json:"custom_fields"`
}

func (req *leadRequest) input() crm.LeadInput {
	return crm.LeadInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Source:       req.Source,
		Notes:        req.Notes,
		CompanyID:    req.CompanyID,
		StageID:      req.StageID,
		LabelIDs:     req.LabelIDs,
		CustomFields: req.CustomFields,
	}
}

// Create handles POST /api/v1/leads.
func (h *Lead) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.svc.CreateLead(r.Context(), teamID, user.ID, req.input())
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, lead)
}

// Get handles GET /api/v1/leads/{leadID}.
func (h *Lead) Get(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	leadID, ok := pathUUID(w, r, "leadID")
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(r.Context(), leadID, teamID)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, lead)
}

// List handles GET /api/v1/leads with filters and pagination.
func (h *Lead) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	filter := store.LeadFilter{
		TeamID:    teamID,
		CompanyID: queryUUID(r, "company_id"),
		StageID:   queryUUID(r, "stage_id"),
		LabelID:   queryUUID(r, "label_id"),
		Search:    r.URL.Query().Get("search"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	leads, total, err := h.svc.ListLeads(r.Context(), filter)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Collection(w, leads, paginationMeta(filter.Page, filter.Limit, total))
}

// Update handles PUT /api/v1/leads/{leadID}.
func (h *Lead) Update(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	leadID, ok := pathUUID(w, r, "leadID")
	if !ok {
		return
	}

	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.svc.UpdateLead(r.Context(), leadID, teamID, req.input())
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, lead)
}

// Delete handles DELETE /api/v1/leads/{leadID}.
func (h *Lead) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	leadID, ok := pathUUID(w, r, "leadID")
	if !ok {
		return
	}

	if err := h.svc.DeleteLead(r.Context(), leadID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}
