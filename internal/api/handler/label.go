package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
)

// Label serves tenant-scoped labels.
type Label struct {
	svc *crm.Service
}

func NewLabel(svc *crm.Service) *Label {
	return &Label{svc: svc}
}

// Create handles POST /api/v1/labels.
func (h *Label) Create(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	label, err := h.svc.CreateLabel(r.Context(), teamID, req.Name, req.Color)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, label)
}

// List handles GET /api/v1/labels.
func (h *Label) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	labels, err := h.svc.ListLabels(r.Context(), teamID)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, labels)
}

// Delete handles DELETE /api/v1/labels/{labelID}.
func (h *Label) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	labelID, ok := pathUUID(w, r, "labelID")
	if !ok {
		return
	}

	if err := h.svc.DeleteLabel(r.Context(), labelID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}
