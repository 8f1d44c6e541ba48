package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/pkg/models"
)

// CustomField serves per-team custom field definitions.
type CustomField struct {
	svc *crm.Service
}

func NewCustomField(svc *crm.Service) *CustomField {
	return &CustomField{svc: svc}
}

// Create handles POST /api/v1/custom-fields. Team managers only.
func (h *CustomField) Create(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		Entity   string   `json:"entity"`
		Name     string   `json:"name"`
		Type     string   `json:"type"`
		Options  []string `json:"options"`
		Required bool     `json:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	def, err := h.svc.CreateFieldDefinition(r.Context(), teamID,
		models.FieldEntity(req.Entity), req.Name, models.FieldType(req.Type),
		req.Options, req.Required)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, def)
}

// List handles GET /api/v1/custom-fields?entity=lead|company.
func (h *CustomField) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	entity := models.FieldEntity(r.URL.Query().Get("entity"))
	if !entity.Valid() {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"entity must be lead or company", nil)
		return
	}

	defs, err := h.svc.ListFieldDefinitions(r.Context(), teamID, entity)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, defs)
}

// Delete handles DELETE /api/v1/custom-fields/{fieldID}. Team managers only.
func (h *CustomField) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	fieldID, ok := pathUUID(w, r, "fieldID")
	if !ok {
		return
	}

	if err := h.svc.DeleteFieldDefinition(r.Context(), fieldID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}
