package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/internal/store"
)

// Company serves tenant-scoped company CRUD.
type Company struct {
	svc *crm.Service
}

func NewCompany(svc *crm.Service) *Company {
	return &Company{svc: svc}
}

type companyRequest struct {
	Name         string         `json:"name"`
	Website      string         `json:"website"`
	Phone        string         `json:"phone"`
	Industry     string         `json:"industry"`
	CustomFields map[string]any `json:"custom_fields"`
}

func (req *companyRequest) input() crm.CompanyInput {
	return crm.CompanyInput{
		Name:         req.Name,
		Website:      req.Website,
		Phone:        req.Phone,
		Industry:     req.Industry,
		CustomFields: req.CustomFields,
	}
}

// Create handles POST /api/v1/companies.
func (h *Company) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.GetUser(r)
	teamID, _ := mw.GetTeamID(r)

	var req companyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	company, err := h.svc.CreateCompany(r.Context(), teamID, user.ID, req.input())
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, company)
}

// Get handles GET /api/v1/companies/{companyID}.
func (h *Company) Get(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	companyID, ok := pathUUID(w, r, "companyID")
	if !ok {
		return
	}

	company, err := h.svc.GetCompany(r.Context(), companyID, teamID)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, company)
}

// List handles GET /api/v1/companies.
func (h *Company) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	filter := store.CompanyFilter{
		TeamID: teamID,
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	companies, total, err := h.svc.ListCompanies(r.Context(), filter)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Collection(w, companies, paginationMeta(filter.Page, filter.Limit, total))
}

// Update handles PUT /api/v1/companies/{companyID}.
func (h *Company) Update(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	companyID, ok := pathUUID(w, r, "companyID")
	if !ok {
		return
	}

	var req companyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	company, err := h.svc.UpdateCompany(r.Context(), companyID, teamID, req.input())
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, company)
}

// Delete handles DELETE /api/v1/companies/{companyID}.
func (h *Company) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	companyID, ok := pathUUID(w, r, "companyID")
	if !ok {
		return
	}

	if err := h.svc.DeleteCompany(r.Context(), companyID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}
